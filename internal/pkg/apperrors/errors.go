package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Class buckets every error the engine can see. Timer loops classify
// internally; only Conflict and exhausted Transient errors reach the UI
// layer.
type Class int

const (
	ClassUnknown Class = iota
	// ClassTransient covers network failures and timeouts. Retried with
	// bounded exponential backoff.
	ClassTransient
	// ClassConflict covers offers already taken and trips already
	// terminal server-side. Never retried; triggers a reconcile.
	ClassConflict
	// ClassValidation covers locally rejected input. Never hits the network.
	ClassValidation
	// ClassAuth covers expired or invalid credentials. Fatal to the session.
	ClassAuth
	// ClassMalformed covers response shapes the client cannot decode.
	// Logged, local state untouched.
	ClassMalformed
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassConflict:
		return "conflict"
	case ClassValidation:
		return "validation"
	case ClassAuth:
		return "auth"
	case ClassMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its class.
type Error struct {
	Class Class
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with the given class
func New(class Class, err error) *Error {
	return &Error{Class: class, Err: err}
}

// Newf wraps a formatted message with the given class
func Newf(class Class, format string, args ...interface{}) *Error {
	return &Error{Class: class, Err: fmt.Errorf(format, args...)}
}

// ClassOf returns the class of err, or ClassUnknown when it carries none
func ClassOf(err error) Class {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Class
	}
	return ClassUnknown
}

// IsTransient reports whether err should be retried
func IsTransient(err error) bool { return ClassOf(err) == ClassTransient }

// IsConflict reports whether err means the server already decided otherwise
func IsConflict(err error) bool { return ClassOf(err) == ClassConflict }

// IsValidation reports whether err was rejected before any network call
func IsValidation(err error) bool { return ClassOf(err) == ClassValidation }

// IsAuth reports whether err is fatal to the current session
func IsAuth(err error) bool { return ClassOf(err) == ClassAuth }

// IsMalformed reports whether the response shape could not be decoded
func IsMalformed(err error) bool { return ClassOf(err) == ClassMalformed }

// FromStatusCode maps an HTTP response status to an error class
func FromStatusCode(status int) Class {
	switch {
	case status == http.StatusConflict:
		return ClassConflict
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ClassAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ClassValidation
	case status == http.StatusNotFound:
		return ClassConflict
	case status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return ClassTransient
	default:
		return ClassUnknown
	}
}

// Sentinel errors shared by the clients and the reference trip service.
var (
	ErrAlreadyHasActiveTrip = errors.New("rider already has an active trip")
	ErrNoActiveTrip         = errors.New("no active trip")
	ErrNoPendingOffer       = errors.New("no pending offer")
	ErrOfferTaken           = errors.New("offer already accepted or withdrawn")
	ErrTripNotFound         = errors.New("trip not found")
	ErrPickupNotConfirmed   = errors.New("rider has not confirmed pickup yet")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrInvalidLocation      = errors.New("invalid location coordinates")
	ErrActionInFlight       = errors.New("another offer action is already in flight")
	ErrOfferResolved        = errors.New("offer already resolved")
)
