package handlers

import (
	"socialhub/middleware"
	"socialhub/websocket"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	Hub *websocket.Manager
}

// GET /api/ws streams follow, like and comment events for the caller.
func (h *ActivityHandler) Connect(c *gin.Context) {
	h.Hub.Serve(c.Writer, c.Request, middleware.CurrentUserID(c))
}
