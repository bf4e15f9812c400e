package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/account-api/internal/websocket"
	"github.com/yourusername/account-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения для событий сессии
type WSHandler struct {
	wsHub      *websocket.Hub
	jwtService *auth.JWTService
}

func NewWSHandler(wsHub *websocket.Hub, jwtService *auth.JWTService) *WSHandler {
	return &WSHandler{
		wsHub:      wsHub,
		jwtService: jwtService,
	}
}

// Connect апгрейдит соединение до WebSocket.
// Браузерный WebSocket API не умеет выставлять заголовки,
// поэтому access-токен принимается query-параметром.
func (h *WSHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required", "error_type": "token_missing"})
		return
	}

	claims, err := h.jwtService.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
		return
	}

	if err := websocket.ServeWS(h.wsHub, c.Writer, c.Request, claims.UserID); err != nil {
		log.Printf("[WSHandler] Ошибка апгрейда соединения для user_id=%d: %v", claims.UserID, err)
	}
}
