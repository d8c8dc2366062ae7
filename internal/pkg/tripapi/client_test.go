package tripapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL: srv.URL,
		UserID:  "driver-1",
		Timeout: time.Second,
	}, logger.NewNopLogger())
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	payload, _ := json.Marshal(data)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    json.RawMessage(payload),
	})
}

func TestGetActiveTripDecodesEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trips/active", r.URL.Path)
		assert.Equal(t, "driver-1", r.Header.Get(UserIDHeader))
		writeEnvelope(w, http.StatusOK, models.Trip{
			ID:     "trip-1",
			Status: models.TripStatusAccepted,
		})
	})

	trip, err := c.GetActiveTrip(context.Background())
	require.NoError(t, err)
	require.NotNil(t, trip)
	assert.Equal(t, "trip-1", trip.ID)
	assert.Equal(t, models.TripStatusAccepted, trip.Status)
}

func TestNotFoundMeansNone(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	trip, err := c.GetActiveTrip(context.Background())
	require.NoError(t, err)
	assert.Nil(t, trip)

	offer, err := c.GetPendingOffer(context.Background(), models.Location{Latitude: 23.5, Longitude: 58.4})
	require.NoError(t, err)
	assert.Nil(t, offer)
}

func TestConflictClassification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   "offer already accepted",
		})
	})

	_, err := c.AcceptOffer(context.Background(), "trip-1", "")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "offer already accepted")
}

func TestPreconditionFailedIsPickupNotConfirmed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	})

	_, err := c.UpdateStatus(context.Background(), "trip-1", models.UpdateStatusRequest{
		Status: models.TripStatusStarted,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPickupNotConfirmed)
	assert.True(t, apperrors.IsValidation(err))
}

func TestServerErrorIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetActiveTrip(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestNetworkErrorIsTransient(t *testing.T) {
	c := NewClient(Config{
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Timeout: 200 * time.Millisecond,
	}, logger.NewNopLogger())

	_, err := c.GetActiveTrip(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsTransient(err))
}

func TestUnknownFieldsAreMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"id":             "trip-1",
			"status":         "accepted",
			"surprise_field": true,
		})
	})

	_, err := c.GetActiveTrip(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformed(err))
}

func TestGarbageBodyIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.GetActiveTrip(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformed(err))
}

func TestEmptyDataIsMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	_, err := c.GetActiveTrip(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformed(err))
}

func TestExpiredTokenFailsFast(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	// A JWT whose exp is far in the past; signature is irrelevant
	// because the client only inspects the claim.
	expired := unsignedToken(t, time.Now().Add(-time.Hour))
	c := NewClient(Config{
		BaseURL:  srv.URL,
		APIToken: expired,
		Timeout:  time.Second,
	}, logger.NewNopLogger())

	_, err := c.GetActiveTrip(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsAuth(err))
	assert.False(t, called, "expired token must not reach the network")
}

func TestOpaqueTokenPassesThrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer not-a-jwt", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, models.Trip{ID: "trip-1", Status: models.TripStatusStarted})
	})
	c.cfg.APIToken = "not-a-jwt"

	trip, err := c.GetActiveTrip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "trip-1", trip.ID)
}

func TestLiveTokenReachesTheNetwork(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, models.Trip{ID: "trip-1", Status: models.TripStatusStarted})
	})
	c.cfg.APIToken = unsignedToken(t, time.Now().Add(time.Hour))

	trip, err := c.GetActiveTrip(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "trip-1", trip.ID)
}

// unsignedToken builds an unsigned JWT carrying only an exp claim
func unsignedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64JSON(t, map[string]interface{}{"alg": "none", "typ": "JWT"})
	claims := base64JSON(t, map[string]interface{}{"exp": exp.Unix()})
	return header + "." + claims + "."
}

func base64JSON(t *testing.T, v interface{}) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(raw)
}
