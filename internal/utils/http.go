package utils

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ridewire/ridewire/internal/pkg/apperrors"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse sends a success response with data
func SuccessResponse(c echo.Context, statusCode int, message string, data interface{}) error {
	return c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponseHandler sends an error response
func ErrorResponseHandler(c echo.Context, statusCode int, errorMessage string) error {
	return c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorMessage,
		Code:    statusCode,
	})
}

// BadRequestResponse sends a 400 Bad Request response
func BadRequestResponse(c echo.Context, errorMessage string) error {
	return ErrorResponseHandler(c, http.StatusBadRequest, errorMessage)
}

// UnauthorizedResponse sends a 401 Unauthorized response
func UnauthorizedResponse(c echo.Context, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "Unauthorized"
	}
	return ErrorResponseHandler(c, http.StatusUnauthorized, errorMessage)
}

// NotFoundResponse sends a 404 Not Found response
func NotFoundResponse(c echo.Context, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "Resource not found"
	}
	return ErrorResponseHandler(c, http.StatusNotFound, errorMessage)
}

// ConflictResponse sends a 409 Conflict response
func ConflictResponse(c echo.Context, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "Conflict"
	}
	return ErrorResponseHandler(c, http.StatusConflict, errorMessage)
}

// InternalServerErrorResponse sends a 500 Internal Server Error response
func InternalServerErrorResponse(c echo.Context, errorMessage string) error {
	if errorMessage == "" {
		errorMessage = "Internal server error"
	}
	return ErrorResponseHandler(c, http.StatusInternalServerError, errorMessage)
}

// ClassifiedErrorResponse maps a classified error to its HTTP status.
// Pending-pickup conflicts get 412 so callers can distinguish them from
// plain 409 arbitration losses.
func ClassifiedErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrPickupNotConfirmed):
		return ErrorResponseHandler(c, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, apperrors.ErrTripNotFound), errors.Is(err, apperrors.ErrNoActiveTrip),
		errors.Is(err, apperrors.ErrNoPendingOffer):
		return NotFoundResponse(c, err.Error())
	}

	switch apperrors.ClassOf(err) {
	case apperrors.ClassValidation:
		return BadRequestResponse(c, err.Error())
	case apperrors.ClassAuth:
		return UnauthorizedResponse(c, err.Error())
	case apperrors.ClassConflict:
		return ConflictResponse(c, err.Error())
	case apperrors.ClassTransient:
		return ErrorResponseHandler(c, http.StatusServiceUnavailable, err.Error())
	default:
		return InternalServerErrorResponse(c, err.Error())
	}
}
