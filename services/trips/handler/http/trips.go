package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/tripapi"
	"github.com/ridewire/ridewire/internal/utils"
	"github.com/ridewire/ridewire/services/trips"
)

// TripHandler handles HTTP requests for the trip lifecycle
type TripHandler struct {
	tripUC trips.TripUC
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripUC trips.TripUC) *TripHandler {
	return &TripHandler{tripUC: tripUC}
}

// callerID reads the identity the gateway stamped on the request
func callerID(c echo.Context) string {
	return c.Request().Header.Get(tripapi.UserIDHeader)
}

// CreateTrip handles trip creation requests
func (h *TripHandler) CreateTrip(c echo.Context) error {
	var req models.CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	trip, err := h.tripUC.CreateTrip(c.Request().Context(), callerID(c), req)
	if err != nil {
		logger.Warn("Trip creation failed", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "Trip created", trip)
}

// GetActiveTrip returns the caller's active trip or 404
func (h *TripHandler) GetActiveTrip(c echo.Context) error {
	trip, err := h.tripUC.ActiveTrip(c.Request().Context(), callerID(c))
	if err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	if trip == nil {
		return utils.NotFoundResponse(c, "no active trip")
	}
	return utils.SuccessResponse(c, http.StatusOK, "Active trip", trip)
}

// GetPendingOffer returns the driver's pending offer or 404
func (h *TripHandler) GetPendingOffer(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid lat")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid lng")
	}

	loc := models.Location{Latitude: lat, Longitude: lng}
	trip, err := h.tripUC.PendingOffer(c.Request().Context(), callerID(c), loc)
	if err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	if trip == nil {
		return utils.NotFoundResponse(c, "no pending offer")
	}
	return utils.SuccessResponse(c, http.StatusOK, "Pending offer", trip)
}

// AcceptOffer handles the driver's accept call
func (h *TripHandler) AcceptOffer(c echo.Context) error {
	var req models.OfferActionRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	trip, err := h.tripUC.AcceptOffer(c.Request().Context(), callerID(c), c.Param("id"), req.Note)
	if err != nil {
		logger.Warn("Accept failed",
			logger.String("trip_id", c.Param("id")),
			logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offer accepted", trip)
}

// DeclineOffer handles the driver's decline call
func (h *TripHandler) DeclineOffer(c echo.Context) error {
	var req models.OfferActionRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.tripUC.DeclineOffer(c.Request().Context(), callerID(c), c.Param("id"), req.Note); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offer declined", nil)
}

// UpdateStatus handles driver-side status transitions
func (h *TripHandler) UpdateStatus(c echo.Context) error {
	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	trip, err := h.tripUC.UpdateStatus(c.Request().Context(), callerID(c), c.Param("id"), req)
	if err != nil {
		logger.Warn("Status update failed",
			logger.String("trip_id", c.Param("id")),
			logger.String("status", string(req.Status)),
			logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Status updated", trip)
}

// ConfirmPickup handles the rider's pickup confirmation
func (h *TripHandler) ConfirmPickup(c echo.Context) error {
	trip, err := h.tripUC.ConfirmPickup(c.Request().Context(), callerID(c), c.Param("id"))
	if err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Pickup confirmed", trip)
}

// ConfirmCompletion handles the rider's completion confirmation
func (h *TripHandler) ConfirmCompletion(c echo.Context) error {
	if err := h.tripUC.ConfirmCompletion(c.Request().Context(), callerID(c), c.Param("id")); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Completion confirmed", nil)
}

// CancelTrip handles cancellation from either party
func (h *TripHandler) CancelTrip(c echo.Context) error {
	var req models.CancelTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.tripUC.CancelTrip(c.Request().Context(), callerID(c), c.Param("id"), req.Reason); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip cancelled", nil)
}

// RateTrip handles the rider's post-trip rating
func (h *TripHandler) RateTrip(c echo.Context) error {
	var req models.RateTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.tripUC.RateTrip(c.Request().Context(), callerID(c), c.Param("id"), req.Rating, req.Review); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip rated", nil)
}
