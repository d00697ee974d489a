package controllers

import (
	"crypto/subtle"
	"net/http"
	"os"

	"snaptrack/utils"

	"github.com/gin-gonic/gin"
)

type TokenInput struct {
	APIKey string `json:"api_key" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

// IssueToken exchanges the static API key for a short-lived bearer
// token scoped to one user identifier.
func IssueToken(c *gin.Context) {
	var input TokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expected := os.Getenv("API_KEY")
	if expected == "" || subtle.ConstantTimeCompare([]byte(input.APIKey), []byte(expected)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	token, err := utils.GenerateJWT(input.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
