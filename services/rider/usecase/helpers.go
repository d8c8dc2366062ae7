package usecase

import (
	"time"

	"github.com/ridewire/ridewire/internal/pkg/apperrors"
)

// Seam for tests; production code never swaps it.
var nowFn = time.Now

func invalidLocationErr() error {
	return apperrors.New(apperrors.ClassValidation, apperrors.ErrInvalidLocation)
}
