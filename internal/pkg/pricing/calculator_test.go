package pricing

import (
	"testing"

	"github.com/ridewire/ridewire/internal/pkg/models"
	"github.com/stretchr/testify/assert"
)

func testSchedule() Schedule {
	return FromConfig(models.PricingConfig{
		ApproachRatePerKm: 0.500,
		BaseFare:          5.000,
		RatePerKm:         2.500,
		Currency:          "OMR",
	})
}

func TestEstimate(t *testing.T) {
	s := testSchedule()

	q := s.Estimate(2.4, 10)
	assert.Equal(t, 1.200, q.ApproachFee)
	assert.Equal(t, 30.000, q.MeterEstimate)
	assert.Equal(t, 31.200, q.TotalEstimate)
}

func TestApproachFeeRounding(t *testing.T) {
	s := testSchedule()

	assert.Equal(t, 1.667, s.ApproachFee(3.334))
	assert.Equal(t, 0.0, s.ApproachFee(0))
}

func TestMeterEstimate(t *testing.T) {
	s := testSchedule()

	assert.Equal(t, 5.000, s.MeterEstimate(0))
	assert.Equal(t, 5.003, s.MeterEstimate(0.0011))
}

func TestFinalTotalReplacesEstimate(t *testing.T) {
	s := testSchedule()

	// The driver-entered meter reading wins regardless of what the
	// estimate said.
	assert.Equal(t, 13.545, s.FinalTotal(1.200, 12.345))
	assert.Equal(t, 1.200, s.FinalTotal(1.200, 0))
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 1.234, Round3(1.2344))
	assert.Equal(t, 1.239, Round3(1.2386))
	assert.Equal(t, -1.239, Round3(-1.2386))
	assert.Equal(t, 0.0, Round3(0))
}
