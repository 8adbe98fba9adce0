package handler

import (
	"log"
	"net/http"

	"tutorchat/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Native clients send no Origin.
			return origin == "" || OriginAllowed(origin, h.Origins)
		},
	}
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket і підписує клієнта на сповіщення
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID := currentUser(c)

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		log.Printf("WARNING: websocket upgrade for %s failed: %v", userID, err)
		return
	}

	client := hub.NewWebSocketClient(userID, conn, h.Hub)
	if !h.Hub.Register(client) {
		log.Printf("WARNING: notification hub is shut down, closing socket of %s", userID)
		client.Close()
		conn.Close()
		return
	}
	client.Run()
}
