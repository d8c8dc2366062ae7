package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/geo"
	"github.com/ridewire/ridewire/internal/pkg/logger"
	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/ridewire/ridewire/internal/pkg/pricing"
	"github.com/ridewire/ridewire/internal/pkg/routing"
	"github.com/ridewire/ridewire/services/trips"
)

// offerCandidates caps how many unassigned trips one poll will try to
// claim before reporting none.
const offerCandidates = 10

// TripService is the authoritative lifecycle implementation backing the
// client engines.
type TripService struct {
	cfg    *models.Config
	repo   trips.TripRepo
	routes routing.Provider
	fares  pricing.Schedule
	log    *logger.ZapLogger
	nowFn  func() time.Time
}

// NewTripService creates the trip usecase
func NewTripService(
	cfg *models.Config,
	repo trips.TripRepo,
	routes routing.Provider,
	log *logger.ZapLogger,
) *TripService {
	return &TripService{
		cfg:    cfg,
		repo:   repo,
		routes: routes,
		fares:  pricing.FromConfig(cfg.Pricing),
		log:    log,
		nowFn:  time.Now,
	}
}

// CreateTrip creates a trip for the rider. One active trip per rider.
func (s *TripService) CreateTrip(ctx context.Context, riderID string, req models.CreateTripRequest) (*models.Trip, error) {
	if riderID == "" {
		return nil, apperrors.Newf(apperrors.ClassAuth, "missing caller identity")
	}
	if !req.Pickup.Valid() || !req.Destination.Valid() {
		return nil, apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidLocation)
	}

	existing, err := s.repo.ActiveByRider(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.New(apperrors.ClassConflict, apperrors.ErrAlreadyHasActiveTrip)
	}

	route, err := s.routes.Route(ctx, req.Pickup, req.Destination)
	if err != nil {
		return nil, err
	}

	trip := &models.Trip{
		ID:            uuid.NewString(),
		RiderID:       riderID,
		Pickup:        req.Pickup,
		Destination:   req.Destination,
		Status:        models.TripStatusRequested,
		RequestedAt:   s.nowFn(),
		EstimatedCost: s.fares.MeterEstimate(route.DistanceKm),
		Notes:         req.Notes,
	}
	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.log.Info("Trip created",
		logger.String("trip_id", trip.ID),
		logger.String("rider_id", riderID),
		logger.Float64("estimated_cost", trip.EstimatedCost))
	return trip, nil
}

// ActiveTrip returns the caller's current trip, or nil when there is
// none. The caller may be on either side of a trip.
func (s *TripService) ActiveTrip(ctx context.Context, userID string) (*models.Trip, error) {
	if userID == "" {
		return nil, apperrors.Newf(apperrors.ClassAuth, "missing caller identity")
	}
	trip, err := s.repo.ActiveByRider(ctx, userID)
	if err != nil || trip != nil {
		return trip, err
	}
	return s.repo.ActiveByDriver(ctx, userID)
}

// PendingOffer returns the driver's pending offer, assigning the oldest
// unclaimed trip when the driver has none. Approach distance and fee are
// stamped from the driver's reported position at assignment time.
func (s *TripService) PendingOffer(ctx context.Context, driverID string, loc models.Location) (*models.Trip, error) {
	if driverID == "" {
		return nil, apperrors.Newf(apperrors.ClassAuth, "missing caller identity")
	}
	if !loc.Valid() {
		return nil, apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidLocation)
	}

	current, err := s.repo.ActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.Status == models.TripStatusAssigned {
			return current, nil
		}
		// Driver is mid-trip; no offer.
		return nil, nil
	}

	ids, err := s.repo.RequestedIDs(ctx, offerCandidates)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	for _, id := range ids {
		assigned, err := s.repo.Mutate(ctx, id, func(t *models.Trip) error {
			if t.Status != models.TripStatusRequested {
				return apperrors.New(apperrors.ClassConflict, apperrors.ErrOfferTaken)
			}
			if err := t.ApplyStatus(models.TripStatusAssigned, now); err != nil {
				return apperrors.New(apperrors.ClassConflict, err)
			}
			t.DriverID = driverID
			t.ApproachDistanceKm = pricing.Round3(geo.DistanceKm(loc, t.Pickup))
			t.ApproachFee = s.fares.ApproachFee(t.ApproachDistanceKm)
			return nil
		})
		if err != nil {
			if apperrors.IsConflict(err) {
				// Lost the race for this one; try the next.
				continue
			}
			return nil, err
		}
		s.log.Info("Offer assigned",
			logger.String("trip_id", assigned.ID),
			logger.String("driver_id", driverID),
			logger.Float64("approach_fee", assigned.ApproachFee))
		return assigned, nil
	}
	return nil, nil
}

// AcceptOffer accepts the driver's pending offer. Exactly one accept
// wins; everyone else gets a conflict.
func (s *TripService) AcceptOffer(ctx context.Context, driverID, tripID, note string) (*models.Trip, error) {
	now := s.nowFn()
	accepted, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.DriverID != driverID || t.Status != models.TripStatusAssigned {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrOfferTaken)
		}
		return wrapTransition(t.ApplyStatus(models.TripStatusAccepted, now))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Offer accepted",
		logger.String("trip_id", tripID),
		logger.String("driver_id", driverID))
	return accepted, nil
}

// DeclineOffer releases the offer back to the unassigned queue. The
// reassignment edge wipes the driver binding and the approach fields.
func (s *TripService) DeclineOffer(ctx context.Context, driverID, tripID, note string) error {
	now := s.nowFn()
	_, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.DriverID != driverID || t.Status != models.TripStatusAssigned {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrOfferTaken)
		}
		return wrapTransition(t.ApplyStatus(models.TripStatusRequested, now))
	})
	if err != nil {
		return err
	}
	s.log.Info("Offer declined",
		logger.String("trip_id", tripID),
		logger.String("driver_id", driverID),
		logger.String("note", note))
	return nil
}

// UpdateStatus moves the trip on the driver's behalf. Only started and
// completed arrive this way; cancellation has its own call.
func (s *TripService) UpdateStatus(ctx context.Context, driverID, tripID string, req models.UpdateStatusRequest) (*models.Trip, error) {
	switch req.Status {
	case models.TripStatusStarted:
		return s.startTrip(ctx, driverID, tripID)
	case models.TripStatusCompleted:
		return s.completeTrip(ctx, driverID, tripID, req)
	default:
		return nil, apperrors.Newf(apperrors.ClassValidation, "status %q cannot be set directly", req.Status)
	}
}

func (s *TripService) startTrip(ctx context.Context, driverID, tripID string) (*models.Trip, error) {
	now := s.nowFn()
	started, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.DriverID != driverID {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if t.Status == models.TripStatusAccepted && !t.RiderConfirmedPickup {
			return apperrors.New(apperrors.ClassValidation, apperrors.ErrPickupNotConfirmed)
		}
		return wrapTransition(t.ApplyStatus(models.TripStatusStarted, now))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Trip started", logger.String("trip_id", tripID))
	return started, nil
}

func (s *TripService) completeTrip(ctx context.Context, driverID, tripID string, req models.UpdateStatusRequest) (*models.Trip, error) {
	if req.MeterCost < 0 {
		return nil, apperrors.Newf(apperrors.ClassValidation, "meter cost must not be negative")
	}
	now := s.nowFn()
	completed, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.DriverID != driverID {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if err := wrapTransition(t.ApplyStatus(models.TripStatusCompleted, now)); err != nil {
			return err
		}
		if req.TripDistanceKm > t.TripDistanceKm {
			t.TripDistanceKm = pricing.Round3(req.TripDistanceKm)
		}
		if req.DurationS > t.DurationS {
			t.DurationS = req.DurationS
		}
		t.MeterCost = pricing.Round3(req.MeterCost)
		t.TotalCost = s.fares.FinalTotal(t.ApproachFee, t.MeterCost)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Trip completed",
		logger.String("trip_id", tripID),
		logger.Float64("total_cost", completed.TotalCost))
	return completed, nil
}

// ConfirmPickup sets the rider-side pickup handshake flag. Idempotent.
func (s *TripService) ConfirmPickup(ctx context.Context, riderID, tripID string) (*models.Trip, error) {
	now := s.nowFn()
	return s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.RiderID != riderID {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if t.RiderConfirmedPickup {
			return nil
		}
		if t.Status != models.TripStatusAccepted {
			return apperrors.Newf(apperrors.ClassValidation, "no driver to confirm yet")
		}
		t.RiderConfirmedPickup = true
		t.RiderConfirmedAt = &now
		return nil
	})
}

// ConfirmCompletion sets the rider-side completion handshake flag and
// releases the rider's active binding. Idempotent.
func (s *TripService) ConfirmCompletion(ctx context.Context, riderID, tripID string) error {
	now := s.nowFn()
	_, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.RiderID != riderID {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if t.RiderConfirmedCompletion {
			return nil
		}
		if t.Status != models.TripStatusCompleted {
			return apperrors.Newf(apperrors.ClassValidation, "trip is not completed yet")
		}
		t.RiderConfirmedCompletion = true
		t.RiderConfirmedCompletionAt = &now
		return nil
	})
	return err
}

// CancelTrip cancels a non-terminal trip. Either party may cancel.
func (s *TripService) CancelTrip(ctx context.Context, userID, tripID, reason string) error {
	now := s.nowFn()
	_, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.RiderID != userID && t.DriverID != userID {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if err := wrapTransition(t.ApplyStatus(models.TripStatusCancelled, now)); err != nil {
			return err
		}
		t.CancellationReason = reason
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Trip cancelled",
		logger.String("trip_id", tripID),
		logger.String("by", userID),
		logger.String("reason", reason))
	return nil
}

// RateTrip records the rider's rating once the completion handshake is
// done. A second rating for the same trip is refused.
func (s *TripService) RateTrip(ctx context.Context, riderID, tripID string, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidRating)
	}
	_, err := s.repo.Mutate(ctx, tripID, func(t *models.Trip) error {
		if t.RiderID != riderID {
			return apperrors.New(apperrors.ClassConflict, apperrors.ErrTripNotFound)
		}
		if t.Status != models.TripStatusCompleted || !t.RiderConfirmedCompletion {
			return apperrors.Newf(apperrors.ClassValidation, "trip must be completed and confirmed before rating")
		}
		if t.Rating != nil {
			return apperrors.Newf(apperrors.ClassConflict, "trip already rated")
		}
		r := rating
		t.Rating = &r
		t.Review = review
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Trip rated", logger.String("trip_id", tripID), logger.Int("rating", rating))
	return nil
}

// wrapTransition classifies lifecycle violations as conflicts so the
// transport maps them to 409.
func wrapTransition(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrTerminalWrite) || errors.Is(err, models.ErrBadTransition) {
		return apperrors.New(apperrors.ClassConflict, err)
	}
	return err
}
