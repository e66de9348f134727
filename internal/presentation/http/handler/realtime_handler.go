package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/optica-api/internal/infrastructure/realtime"
	"github.com/sangkips/optica-api/internal/presentation/http/dto/response"
)

// RealtimeHandler upgrades authenticated clients to the event websocket
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect blocks for the lifetime of the websocket
func (h *RealtimeHandler) Connect(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	h.hub.ServeWS(c.Writer, c.Request, *userID)
}
