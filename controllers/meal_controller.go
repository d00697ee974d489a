package controllers

import (
	"errors"
	"net/http"

	"snaptrack/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MealController struct {
	Svc *services.MealService
}

func NewMealController(svc *services.MealService) *MealController {
	return &MealController{Svc: svc}
}

func (h *MealController) GetMeal(c *gin.Context) {
	detail, err := h.Svc.GetMeal(c.Param("meal_id"))
	if err != nil {
		respondMealErr(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *MealController) DeleteMeal(c *gin.Context) {
	if err := h.Svc.DeleteMeal(c.Param("meal_id")); err != nil {
		respondMealErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *MealController) EditNutrition(c *gin.Context) {
	var overrides services.MacroOverrides
	if err := c.ShouldBindJSON(&overrides); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	nlog, err := h.Svc.EditNutrition(c.Param("meal_id"), overrides)
	if err != nil {
		respondMealErr(c, err)
		return
	}
	c.JSON(http.StatusOK, nlog)
}

func respondMealErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
