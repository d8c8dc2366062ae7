package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/services/trips/handler/http"
)

// Handler coordinates the trip service's HTTP surface
type Handler struct {
	tripHandler *http.TripHandler
}

// NewHandler creates and initializes all handlers
func NewHandler(tripHandler *http.TripHandler) *Handler {
	return &Handler{tripHandler: tripHandler}
}

// RegisterRoutes registers the trip lifecycle routes. Paths mirror what
// the client gateways call.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/trips", h.tripHandler.CreateTrip)
	e.GET("/trips/active", h.tripHandler.GetActiveTrip)

	e.GET("/offers/pending", h.tripHandler.GetPendingOffer)
	e.POST("/offers/:id/accept", h.tripHandler.AcceptOffer)
	e.POST("/offers/:id/decline", h.tripHandler.DeclineOffer)

	e.POST("/trips/:id/status", h.tripHandler.UpdateStatus)
	e.POST("/trips/:id/confirm-pickup", h.tripHandler.ConfirmPickup)
	e.POST("/trips/:id/confirm-completion", h.tripHandler.ConfirmCompletion)
	e.POST("/trips/:id/cancel", h.tripHandler.CancelTrip)
	e.POST("/trips/:id/rating", h.tripHandler.RateTrip)
}
