package handler

import (
	"log"
	"net/http"

	"tutorchat/backend/internal/apperr"
	"tutorchat/backend/internal/messaging"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
	ClientToken    string `json:"clientToken"`
}

// SendMessage handles POST /messages/send.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.InvalidInput("invalid request body"))
		return
	}

	res, err := h.Sender.Send(c.Request.Context(), messaging.SendRequest{
		ConversationID: req.ConversationID,
		SenderID:       currentUser(c),
		Content:        req.Content,
		ClientToken:    req.ClientToken,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// writeError maps an error onto the status and body the API documents.
func writeError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		log.Printf("ERROR: unexpected error on %s: %v", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": "unexpected failure"})
		return
	}

	switch appErr.Code {
	case apperr.CodeInvalidInput:
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message, "reason": "invalid_input"})

	case apperr.CodeInactive:
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message, "reason": "inactive"})

	case apperr.CodeBlocked:
		flags := appErr.Flags
		if flags == nil {
			flags = []string{}
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message, "reason": appErr.Reason, "flags": flags})

	case apperr.CodeUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": appErr.Message})

	case apperr.CodeForbidden:
		body := gin.H{"error": appErr.Message}
		if appErr.Reason != "" {
			body["reason"] = appErr.Reason
		}
		if appErr.Until != nil {
			body["until"] = appErr.Until.UTC()
		}
		c.JSON(http.StatusForbidden, body)

	case apperr.CodeNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": appErr.Message})

	case apperr.CodeConflict:
		c.JSON(http.StatusConflict, gin.H{"error": appErr.Message})

	case apperr.CodeTooManyRequests:
		c.JSON(http.StatusTooManyRequests, gin.H{"error": appErr.Message})

	default:
		log.Printf("ERROR: %s on %s: %v", appErr.Code, c.FullPath(), appErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": appErr.Message})
	}
}
