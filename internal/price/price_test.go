package price

import (
	"errors"
	"testing"
	"time"

	"battery-arbitrage/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedSource_Deterministic(t *testing.T) {
	s := NewSimulatedSource(24)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	p1, a1, err := s.GetPrices(date)
	require.NoError(t, err)
	p2, a2, err := s.GetPrices(date)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, a1, a2)
	assert.Len(t, p1, 24)
	assert.Len(t, a1, 24)
}

func TestSimulatedSource_DiffersAcrossDates(t *testing.T) {
	s := NewSimulatedSource(24)
	p1, _, _ := s.GetPrices(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	p2, _, _ := s.GetPrices(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, p1, p2)
}

func TestSimulatedSource_FiniteAndInRange(t *testing.T) {
	s := NewSimulatedSource(24)
	_, actual, err := s.GetPrices(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	for _, v := range actual {
		assert.False(t, isNaNOrInf(v))
	}
}

func isNaNOrInf(v float64) bool {
	return v != v || v > 1e300 || v < -1e300
}

func TestHistoricalAverageSource_UnavailableWhenEmpty(t *testing.T) {
	s := NewHistoricalAverageSource(nil, 7)
	_, _, err := s.GetPrices(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	var unavailable *errs.PriceDataUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

func TestHistoricalAverageSource_AveragesByHourOfDay(t *testing.T) {
	base := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	var records []Record
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			records = append(records, Record{
				Timestamp: base.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour),
				Price:     float64(h), // constant by hour across days
			})
		}
	}
	s := NewHistoricalAverageSource(records, 7)
	planning, actual, err := s.GetPrices(base.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, planning, 24)
	for h, v := range planning {
		assert.InDelta(t, float64(h), v, 1e-9)
	}
	assert.Equal(t, planning, actual)
}

func TestForecastSource_WrapsCallbacks(t *testing.T) {
	s := &ForecastSource{
		Forecast: func(time.Time) ([]float64, error) { return []float64{1, 2, 3}, nil },
		Actual:   func(time.Time) ([]float64, error) { return []float64{1.1, 2.1, 3.1}, nil },
	}
	planning, actual, err := s.GetPrices(time.Now())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, planning)
	assert.Equal(t, []float64{1.1, 2.1, 3.1}, actual)
}

func TestForecastSource_MissingCallbacksIsInvalidConfig(t *testing.T) {
	s := &ForecastSource{}
	_, _, err := s.GetPrices(time.Now())
	require.Error(t, err)
	var invalid *errs.InvalidConfig
	assert.True(t, errors.As(err, &invalid))
}
