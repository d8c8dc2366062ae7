// Package guard holds the single-flight protection around trip actions.
// One guarded transition function replaces scattered in-progress booleans.
package guard

import (
	"sync"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/models"
)

// OfferGuard serializes accept/decline for a single pending offer.
// Accept and decline are mutually exclusive, single-use actions: once one
// resolves, the offer takes no further action.
type OfferGuard struct {
	mu    sync.Mutex
	state models.OfferState
}

// NewOfferGuard returns a guard in the idle state
func NewOfferGuard() *OfferGuard {
	return &OfferGuard{state: models.OfferIdle}
}

// Begin attempts to move the guard from idle into the given in-flight
// action. A second invocation while one is outstanding is rejected, as is
// any action after the offer resolved.
func (g *OfferGuard) Begin(action models.OfferState) error {
	if action != models.OfferAccepting && action != models.OfferDeclining {
		return apperrors.Newf(apperrors.ClassValidation, "guard: %s is not a beginnable action", action)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case models.OfferIdle:
		g.state = action
		return nil
	case models.OfferResolved:
		return apperrors.New(apperrors.ClassConflict, apperrors.ErrOfferResolved)
	default:
		return apperrors.New(apperrors.ClassConflict, apperrors.ErrActionInFlight)
	}
}

// Resolve marks the in-flight action as done. The guard stays resolved
// until Reset; duplicate triggers after resolution are no-ops.
func (g *OfferGuard) Resolve() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = models.OfferResolved
}

// Fail returns the guard to idle so the action can be retried or the
// countdown resumed.
func (g *OfferGuard) Fail() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == models.OfferAccepting || g.state == models.OfferDeclining {
		g.state = models.OfferIdle
	}
}

// Reset clears the guard for a fresh offer. Called on every navigation
// away from the pending request.
func (g *OfferGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = models.OfferIdle
}

// State returns the current guard state
func (g *OfferGuard) State() models.OfferState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// InFlight reports whether an accept or decline is outstanding
func (g *OfferGuard) InFlight() bool {
	s := g.State()
	return s == models.OfferAccepting || s == models.OfferDeclining
}

// Flag is a plain single-flight latch for actions without the
// accept/decline exclusivity rules (cancel, complete, confirm).
type Flag struct {
	mu   sync.Mutex
	busy bool
}

// TryAcquire takes the flag, reporting false when it is already held
func (f *Flag) TryAcquire() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

// Release frees the flag
func (f *Flag) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
}

// Held reports whether the flag is taken
func (f *Flag) Held() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}
