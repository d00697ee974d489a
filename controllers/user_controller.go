package controllers

import (
	"net/http"

	"snaptrack/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	Svc *services.UserService
}

func NewUserController(svc *services.UserService) *UserController {
	return &UserController{Svc: svc}
}

// ResetUser wipes everything for the identifier. Unknown identifiers
// still report success so clients can treat reset as idempotent.
func (h *UserController) ResetUser(c *gin.Context) {
	if err := h.Svc.ResetUser(c.Param("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset_complete"})
}
