package main

import (
	"os"
	"strings"

	"snaptrack/config"
	"snaptrack/controllers"
	"snaptrack/routes"
	"snaptrack/services"
	"snaptrack/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()

	vision := services.NewVisionService(services.VisionConfigFromEnv())
	hub := services.NewRealtimeHub()

	orc := services.NewOrchestratorService(config.DB, vision)
	if utils.S3Enabled() {
		orc.Offload = utils.UploadMealImage
	}

	backendEndpoint := strings.TrimRight(os.Getenv("BACKEND_ENDPOINT"), "/")
	if backendEndpoint == "" {
		backendEndpoint = "http://localhost:8080"
	}

	ctl := routes.Controllers{
		Chat:     controllers.NewChatController(orc, hub),
		History:  controllers.NewHistoryController(services.NewHistoryService(config.DB, backendEndpoint)),
		Meal:     controllers.NewMealController(services.NewMealService(config.DB)),
		User:     controllers.NewUserController(services.NewUserService(config.DB)),
		Realtime: controllers.NewRealtimeController(hub),
	}

	r := routes.SetupRouter(ctl)
	r.Run(":8080")
}
