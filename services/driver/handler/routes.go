package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/services/driver/handler/http"
	"github.com/ridewire/ridewire/services/driver/handler/websocket"
)

// Handler coordinates the protocol handlers for the driver control API
type Handler struct {
	driverHandler *http.DriverHandler
	streamHandler *websocket.StreamHandler
}

// NewHandler creates and initializes all handlers
func NewHandler(
	driverHandler *http.DriverHandler,
	streamHandler *websocket.StreamHandler,
) *Handler {
	return &Handler{
		driverHandler: driverHandler,
		streamHandler: streamHandler,
	}
}

// RegisterRoutes registers the control API routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/status", h.driverHandler.GetStatus)
	e.GET("/stream", h.streamHandler.HandleStream)

	e.POST("/online", h.driverHandler.GoOnline)
	e.POST("/offline", h.driverHandler.GoOffline)
	e.POST("/location", h.driverHandler.UpdateLocation)

	e.POST("/offer/accept", h.driverHandler.AcceptOffer)
	e.POST("/offer/decline", h.driverHandler.DeclineOffer)

	e.POST("/trip/start", h.driverHandler.StartTrip)
	e.POST("/trip/complete", h.driverHandler.CompleteTrip)
	e.POST("/trip/cancel", h.driverHandler.CancelTrip)
}
