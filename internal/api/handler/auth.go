package handler

import (
	"net/http"
	"strings"

	"tutorchat/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// RequireUser resolves the caller from a bearer token (mobile clients), the
// session cookie (web clients) or, for websocket upgrades only, a token query
// parameter. Unresolved callers get 401.
func (h *Handler) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := h.extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}

		userID, err := h.Tokens.Parse(token, auth.PurposeSession)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

func (h *Handler) extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}

	if h.CookieName != "" {
		if cookie, err := c.Cookie(h.CookieName); err == nil && cookie != "" {
			return cookie
		}
	}

	if websocketUpgrade(c.Request) {
		return c.Query("token")
	}
	return ""
}

func websocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// currentUser returns the id stored by RequireUser.
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
