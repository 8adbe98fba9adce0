package handler

import (
	"context"
	"net/http"

	"tutorchat/backend/internal/auth"
	"tutorchat/backend/internal/hub"
	"tutorchat/backend/internal/messaging"

	"github.com/gin-gonic/gin"
)

// MessageSender admits one message submission.
type MessageSender interface {
	Send(ctx context.Context, req messaging.SendRequest) (*messaging.SendResult, error)
}

// Handler містить залежності HTTP-обробників
type Handler struct {
	Sender     MessageSender
	Hub        *hub.ManagerService
	Tokens     *auth.Tokens
	CookieName string
	// Origins is the CORS allow-list, also applied to websocket upgrades.
	Origins []string
}

func NewHandler(sender MessageSender, h *hub.ManagerService, tokens *auth.Tokens, cookieName string, origins []string) *Handler {
	return &Handler{
		Sender:     sender,
		Hub:        h,
		Tokens:     tokens,
		CookieName: cookieName,
		Origins:    origins,
	}
}

// RegisterRoutes mounts the API. sendLimiter may be nil.
func (h *Handler) RegisterRoutes(r *gin.Engine, sendLimiter gin.HandlerFunc) {
	r.GET("/health", h.Health)

	authed := r.Group("/", h.RequireUser())

	send := []gin.HandlerFunc{}
	if sendLimiter != nil {
		send = append(send, sendLimiter)
	}
	send = append(send, h.SendMessage)
	authed.POST("/messages/send", send...)

	if h.Hub != nil {
		authed.GET("/notifications/ws", h.ServeWebSocket)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
