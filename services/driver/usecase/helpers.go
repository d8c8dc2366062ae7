package usecase

import (
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
	"github.com/ridewire/ridewire/internal/pkg/geo"
)

// Seams for tests; production code never swaps these.
var (
	nowFn      = time.Now
	distanceFn = geo.DistanceKm
)

func invalidLocationErr() error {
	return apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidLocation)
}
