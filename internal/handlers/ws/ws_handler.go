// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	"salora-service/internal/middleware"
	"salora-service/internal/notify"
	"salora-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type WSHandler struct {
	hub *notify.Hub
}

func NewWSHandler(hub *notify.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// PaymentEvents upgrades the connection and streams the salon's payment
// events until the dashboard disconnects.
func (h *WSHandler) PaymentEvents(c *gin.Context) {
	salonID := middleware.MustGetSalonID(c)

	if err := h.hub.Subscribe(c.Writer, c.Request, salonID); err != nil {
		response.Error(c, http.StatusBadRequest, "websocket upgrade failed", err)
		return
	}
}
