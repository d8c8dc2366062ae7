package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/services/rider/handler/http"
	"github.com/ridewire/ridewire/services/rider/handler/websocket"
)

// Handler coordinates the protocol handlers for the rider control API
type Handler struct {
	riderHandler  *http.RiderHandler
	streamHandler *websocket.StreamHandler
}

// NewHandler creates and initializes all handlers
func NewHandler(
	riderHandler *http.RiderHandler,
	streamHandler *websocket.StreamHandler,
) *Handler {
	return &Handler{
		riderHandler:  riderHandler,
		streamHandler: streamHandler,
	}
}

// RegisterRoutes registers the control API routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/status", h.riderHandler.GetStatus)
	e.GET("/stream", h.streamHandler.HandleStream)

	e.POST("/trip", h.riderHandler.RequestTrip)
	e.POST("/trip/confirm-pickup", h.riderHandler.ConfirmPickup)
	e.POST("/trip/confirm-completion", h.riderHandler.ConfirmCompletion)
	e.POST("/trip/cancel", h.riderHandler.CancelTrip)
	e.POST("/trip/rate", h.riderHandler.RateTrip)
}
