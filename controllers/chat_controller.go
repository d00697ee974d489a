// controllers/chat_controller.go
package controllers

import (
	"io"
	"net/http"

	"snaptrack/services"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	Orc *services.OrchestratorService
	RT  *services.RealtimeHub
}

func NewChatController(orc *services.OrchestratorService, rt *services.RealtimeHub) *ChatController {
	return &ChatController{Orc: orc, RT: rt}
}

// PostChat handles one turn: multipart form with user_id, optional
// text and optional image file.
func (h *ChatController) PostChat(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	text := c.PostForm("text")
	language := c.DefaultPostForm("language", "en")

	var imageBytes []byte
	mimeType := ""
	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
			return
		}
		defer f.Close()
		imageBytes, err = io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
			return
		}
		mimeType = fh.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(imageBytes)
		}
	}

	if text == "" && len(imageBytes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text or image is required"})
		return
	}

	result, err := h.Orc.HandleTurn(c.Request.Context(), userID, text, imageBytes, mimeType, language)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.RT.BroadcastTurn(userID, services.ChatEvent{
		Type:          "bot_reply",
		Reply:         result.Reply,
		TransactionID: result.TransactionID,
		Data:          result.Data,
	})

	c.JSON(http.StatusOK, result)
}
