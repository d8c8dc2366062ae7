package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/utils"
	"github.com/ridewire/ridewire/services/driver"
)

// DriverHandler exposes the driver engine over the local control API.
type DriverHandler struct {
	driverUC driver.DriverUC
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(driverUC driver.DriverUC) *DriverHandler {
	return &DriverHandler{driverUC: driverUC}
}

// GetStatus returns the current trip projection
func (h *DriverHandler) GetStatus(c echo.Context) error {
	return utils.SuccessResponse(c, http.StatusOK, "Current state", h.driverUC.Projection())
}

// GoOnline puts the driver into discovery
func (h *DriverHandler) GoOnline(c echo.Context) error {
	if err := h.driverUC.GoOnline(c.Request().Context()); err != nil {
		logger.Warn("Failed to go online", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Online", h.driverUC.Projection())
}

// GoOffline stops discovery
func (h *DriverHandler) GoOffline(c echo.Context) error {
	if err := h.driverUC.GoOffline(c.Request().Context()); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offline", h.driverUC.Projection())
}

// UpdateLocation records the driver's current position
func (h *DriverHandler) UpdateLocation(c echo.Context) error {
	var loc models.Location
	if err := c.Bind(&loc); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.driverUC.UpdateLocation(c.Request().Context(), loc); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Location updated", nil)
}

// AcceptOffer accepts the pending offer
func (h *DriverHandler) AcceptOffer(c echo.Context) error {
	if err := h.driverUC.Accept(c.Request().Context()); err != nil {
		logger.Warn("Accept failed", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offer accepted", h.driverUC.Projection())
}

// DeclineOffer declines the pending offer
func (h *DriverHandler) DeclineOffer(c echo.Context) error {
	var req models.OfferActionRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.driverUC.Decline(c.Request().Context(), req.Note); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Offer declined", h.driverUC.Projection())
}

// StartTrip transitions an accepted trip to started
func (h *DriverHandler) StartTrip(c echo.Context) error {
	if err := h.driverUC.StartTrip(c.Request().Context()); err != nil {
		logger.Warn("Start trip failed", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip started", h.driverUC.Projection())
}

// CompleteTrip finishes a started trip with the metered cost
func (h *DriverHandler) CompleteTrip(c echo.Context) error {
	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.driverUC.CompleteTrip(c.Request().Context(), req.MeterCost); err != nil {
		logger.Warn("Complete trip failed", logger.Err(err))
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip completed", h.driverUC.Projection())
}

// CancelTrip cancels whatever non-terminal trip the driver holds
func (h *DriverHandler) CancelTrip(c echo.Context) error {
	var req models.CancelTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}
	if err := h.driverUC.CancelTrip(c.Request().Context(), req.Reason); err != nil {
		return utils.ClassifiedErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Trip cancelled", h.driverUC.Projection())
}
