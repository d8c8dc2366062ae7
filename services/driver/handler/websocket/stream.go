package websocket

import (
	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/ws"
	"github.com/ridewire/ridewire/services/driver"
)

// StreamHandler pushes every projection change out over WebSocket so the
// UI never has to poll the control API for state.
type StreamHandler struct {
	stream *ws.Stream
}

// NewStreamHandler subscribes to the engine and returns the handler
func NewStreamHandler(driverUC driver.DriverUC) *StreamHandler {
	h := &StreamHandler{stream: ws.NewStream()}
	driverUC.Subscribe(func(p models.TripProjection) {
		h.stream.Broadcast(models.EventStateUpdate, p)
	})
	return h
}

// HandleStream upgrades the connection and keeps it until disconnect
func (h *StreamHandler) HandleStream(c echo.Context) error {
	return h.stream.Handle(c)
}
