package routes

import (
	"snaptrack/controllers"
	"snaptrack/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Chat     *controllers.ChatController
	History  *controllers.HistoryController
	Meal     *controllers.MealController
	User     *controllers.UserController
	Realtime *controllers.RealtimeController
}

func SetupRouter(ctl Controllers) *gin.Engine {
	r := gin.Default()
	r.Use(corsMiddleware())

	// Public auth route
	r.POST("/auth/token", controllers.IssueToken)

	// Websocket stream (token is impractical in browser ws headers)
	r.GET("/ws/:user_id", ctl.Realtime.ChatWS)

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.POST("/chat", ctl.Chat.PostChat)
		api.GET("/chat/:user_id", ctl.History.GetChatTranscript)
		api.GET("/history/:user_id", ctl.History.GetDailySummary)

		api.GET("/meal/:meal_id", ctl.Meal.GetMeal)
		api.DELETE("/meal/:meal_id", ctl.Meal.DeleteMeal)
		api.PATCH("/meal/:meal_id/nutrition", ctl.Meal.EditNutrition)

		api.GET("/image/:image_id", controllers.GetImage)

		api.DELETE("/user/:user_id", ctl.User.ResetUser)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
