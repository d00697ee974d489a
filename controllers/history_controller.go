package controllers

import (
	"net/http"

	"snaptrack/services"

	"github.com/gin-gonic/gin"
)

type HistoryController struct {
	Svc *services.HistoryService
}

func NewHistoryController(svc *services.HistoryService) *HistoryController {
	return &HistoryController{Svc: svc}
}

func (h *HistoryController) GetChatTranscript(c *gin.Context) {
	entries, err := h.Svc.ChatTranscript(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *HistoryController) GetDailySummary(c *gin.Context) {
	days, err := h.Svc.DailySummary(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, days)
}
