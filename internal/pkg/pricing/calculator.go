// Package pricing is the fixed-rate fare calculator. Pure functions only:
// no clocks, no networking, no state.
package pricing

import (
	"math"

	"github.com/ridewire/ridewire/internal/pkg/models"
)

// Schedule is the fixed-rate fare schedule. There is no surge component.
type Schedule struct {
	ApproachRatePerKm float64
	BaseFare          float64
	RatePerKm         float64
	Currency          string
}

// FromConfig builds a schedule from application configuration
func FromConfig(pc models.PricingConfig) Schedule {
	return Schedule{
		ApproachRatePerKm: pc.ApproachRatePerKm,
		BaseFare:          pc.BaseFare,
		RatePerKm:         pc.RatePerKm,
		Currency:          pc.Currency,
	}
}

// Quote is a pre-trip estimate. Every component is rounded to three
// decimals at the point of computation, not after summation.
type Quote struct {
	ApproachFee   float64
	MeterEstimate float64
	TotalEstimate float64
}

// Round3 rounds a currency amount to three decimal places
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ApproachFee prices the driver's empty travel to the pickup point
func (s Schedule) ApproachFee(approachDistanceKm float64) float64 {
	return Round3(approachDistanceKm * s.ApproachRatePerKm)
}

// MeterEstimate prices the pickup-to-destination leg before the trip runs
func (s Schedule) MeterEstimate(tripDistanceKm float64) float64 {
	return Round3(s.BaseFare + tripDistanceKm*s.RatePerKm)
}

// Estimate produces the full pre-trip quote
func (s Schedule) Estimate(approachDistanceKm, tripDistanceKm float64) Quote {
	approach := s.ApproachFee(approachDistanceKm)
	meter := s.MeterEstimate(tripDistanceKm)
	return Quote{
		ApproachFee:   approach,
		MeterEstimate: meter,
		TotalEstimate: Round3(approach + meter),
	}
}

// FinalTotal combines the approach fee with the driver-entered physical
// meter reading. The meter reading replaces the estimate entirely.
func (s Schedule) FinalTotal(approachFee, meterCost float64) float64 {
	return Round3(approachFee + Round3(meterCost))
}
