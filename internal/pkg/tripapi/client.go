// Package tripapi is the typed HTTP client for the authoritative trip
// service. It classifies every failure into the engine's error taxonomy
// and rejects response shapes it cannot decode without touching local
// state.
package tripapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/circuitbreaker"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

// UserIDHeader carries the caller identity. Session management is the
// auth collaborator's job; the engine only forwards what it was given.
const UserIDHeader = "X-User-ID"

// Config configures a trip service client
type Config struct {
	BaseURL  string
	APIToken string
	UserID   string
	Timeout  time.Duration
}

// Client talks to the trip service. All methods classify their errors;
// none of them retries; retry policy belongs to the idempotency guards.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *logger.ZapLogger
}

// NewClient creates a trip service client
func NewClient(cfg Config, log *logger.ZapLogger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("trip-service"), log),
		logger:  log,
	}
}

// envelope is the trip service response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CreateTrip creates a trip for the configured rider
func (c *Client) CreateTrip(ctx context.Context, req models.CreateTripRequest) (*models.Trip, error) {
	var trip models.Trip
	if err := c.call(ctx, http.MethodPost, "/trips", nil, req, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetPendingOffer polls for an offer assigned to the configured driver.
// Returns (nil, nil) when nothing is pending.
func (c *Client) GetPendingOffer(ctx context.Context, loc models.Location) (*models.Trip, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))

	var trip models.Trip
	err := c.call(ctx, http.MethodGet, "/offers/pending", q, nil, &trip)
	if err != nil {
		if apperrors.ClassOf(err) == apperrors.ClassConflict && errorsIsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// AcceptOffer accepts a pending offer. A 409 means another action won.
func (c *Client) AcceptOffer(ctx context.Context, tripID, note string) (*models.Trip, error) {
	var trip models.Trip
	body := models.OfferActionRequest{Note: note}
	if err := c.call(ctx, http.MethodPost, "/offers/"+tripID+"/accept", nil, body, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// DeclineOffer declines a pending offer
func (c *Client) DeclineOffer(ctx context.Context, tripID, note string) error {
	body := models.OfferActionRequest{Note: note}
	return c.call(ctx, http.MethodPost, "/offers/"+tripID+"/decline", nil, body, nil)
}

// UpdateStatus moves the trip to a new status on the driver's behalf
func (c *Client) UpdateStatus(ctx context.Context, tripID string, req models.UpdateStatusRequest) (*models.Trip, error) {
	var trip models.Trip
	if err := c.call(ctx, http.MethodPost, "/trips/"+tripID+"/status", nil, req, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// GetActiveTrip fetches the caller's active trip. Returns (nil, nil)
// when there is none.
func (c *Client) GetActiveTrip(ctx context.Context) (*models.Trip, error) {
	var trip models.Trip
	err := c.call(ctx, http.MethodGet, "/trips/active", nil, nil, &trip)
	if err != nil {
		if apperrors.ClassOf(err) == apperrors.ClassConflict && errorsIsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &trip, nil
}

// ConfirmPickup sets the rider-side pickup handshake flag
func (c *Client) ConfirmPickup(ctx context.Context, tripID string) (*models.Trip, error) {
	var trip models.Trip
	if err := c.call(ctx, http.MethodPost, "/trips/"+tripID+"/confirm-pickup", nil, nil, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// ConfirmCompletion sets the rider-side completion handshake flag
func (c *Client) ConfirmCompletion(ctx context.Context, tripID string) error {
	return c.call(ctx, http.MethodPost, "/trips/"+tripID+"/confirm-completion", nil, nil, nil)
}

// CancelTrip cancels a non-terminal trip with an optional reason
func (c *Client) CancelTrip(ctx context.Context, tripID, reason string) error {
	body := models.CancelTripRequest{Reason: reason}
	return c.call(ctx, http.MethodPost, "/trips/"+tripID+"/cancel", nil, body, nil)
}

// RateTrip submits the rider's rating for a completed trip
func (c *Client) RateTrip(ctx context.Context, tripID string, rating int, review string) error {
	body := models.RateTripRequest{Rating: rating, Review: review}
	return c.call(ctx, http.MethodPost, "/trips/"+tripID+"/rating", nil, body, nil)
}

// call performs one request through the circuit breaker and decodes the
// envelope into out (when non-nil).
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if err := c.checkToken(); err != nil {
		return err
	}

	return c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.do(ctx, method, path, query, body, out)
	})
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Newf(apperrors.ClassValidation, "encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apperrors.Newf(apperrors.ClassValidation, "build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(UserIDHeader, c.cfg.UserID)
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Newf(apperrors.ClassTransient, "%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apperrors.Newf(apperrors.ClassTransient, "read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(resp.StatusCode, raw, method, path)
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("Malformed response envelope",
			logger.String("path", path),
			logger.Err(err))
		return apperrors.Newf(apperrors.ClassMalformed, "decode envelope for %s: %w", path, err)
	}
	if len(env.Data) == 0 {
		return apperrors.Newf(apperrors.ClassMalformed, "response for %s carried no data", path)
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		c.logger.Warn("Malformed response data",
			logger.String("path", path),
			logger.Err(err))
		return apperrors.Newf(apperrors.ClassMalformed, "decode data for %s: %w", path, err)
	}
	return nil
}

// statusError maps a non-2xx status into the taxonomy. 412 is the
// distinguishable pickup-not-confirmed condition from the start call.
func (c *Client) statusError(status int, raw []byte, method, path string) error {
	var env envelope
	msg := ""
	if err := json.Unmarshal(raw, &env); err == nil {
		msg = env.Error
	}

	if status == http.StatusPreconditionFailed {
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrPickupNotConfirmed)
	}
	if status == http.StatusNotFound {
		return apperrors.Newf(apperrors.ClassConflict, "%s %s: %w", method, path, apperrors.ErrTripNotFound)
	}

	class := apperrors.FromStatusCode(status)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return apperrors.Newf(class, "%s %s: %s (status %d)", method, path, msg, status)
}

// checkToken fails fast when the configured bearer token is already
// expired. Full signature verification is the auth service's business.
func (c *Client) checkToken() error {
	if c.cfg.APIToken == "" {
		return nil
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(c.cfg.APIToken, claims); err != nil {
		// Opaque tokens are passed through untouched
		return nil
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return apperrors.Newf(apperrors.ClassAuth, "api token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}
	return nil
}

// errorsIsNotFound reports whether the classified error wraps the
// trip-not-found sentinel, which discovery and reconcile reads treat as
// an empty result rather than a failure.
func errorsIsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrTripNotFound)
}
