package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/utils"
	"github.com/ridewire/ridewire/services/rider"
)

// RiderHandler exposes the rider engine over the local control API.
type RiderHandler struct {
	riderUC rider.RiderUC
}

// NewRiderHandler creates a new rider handler
func NewRiderHandler(riderUC rider.RiderUC) *RiderHandler {
	return &RiderHandler{riderUC: riderUC}
}

// GetStatus returns the current trip projection
func (h *RiderHandler) GetStatus(c echo.Context) error {
	return utils.SuccessResponse(c, http.StatusOK, "Current state", h.riderUC.Projection())
}

// RequestTrip creates a new trip
func (h *RiderHandler) RequestTrip(c echo.Context) error {
	var req models.CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.riderUC.RequestTrip(c.Request().Context(), req); err != nil {
		logger.Warn("Trip request failed", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "Trip requested", h.riderUC.Projection())
}

// ConfirmPickup acknowledges the driver's arrival
func (h *RiderHandler) ConfirmPickup(c echo.Context) error {
	if err := h.riderUC.ConfirmPickup(c.Request().Context()); err != nil {
		logger.Warn("Pickup confirmation failed", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Pickup confirmed", h.riderUC.Projection())
}

// ConfirmCompletion acknowledges the driver's completion report
func (h *RiderHandler) ConfirmCompletion(c echo.Context) error {
	if err := h.riderUC.ConfirmCompletion(c.Request().Context()); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Completion confirmed", h.riderUC.Projection())
}

// CancelTrip cancels the active trip
func (h *RiderHandler) CancelTrip(c echo.Context) error {
	var req models.CancelTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.riderUC.CancelTrip(c.Request().Context(), req.Reason); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip cancelled", h.riderUC.Projection())
}

// RateTrip records the post-trip rating
func (h *RiderHandler) RateTrip(c echo.Context) error {
	var req models.RateTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.riderUC.RateTrip(c.Request().Context(), req.Rating, req.Review); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip rated", h.riderUC.Projection())
}
