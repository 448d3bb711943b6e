// Package price supplies the closed set of PriceSource variants: simulated,
// historical-average, and forecast-wrapped. Each yields a pair of length-N
// planning and actual price vectors for a given date.
package price

import (
	"math"
	"math/rand"
	"time"

	"battery-arbitrage/internal/errs"
)

// Source is the minimal contract every price variant implements, per
// SPEC_FULL §4.2 and §9's "collapse to a closed set of tagged variants"
// design note.
type Source interface {
	GetPrices(date time.Time) (planning []float64, actual []float64, err error)
}

// --- SimulatedSource -------------------------------------------------------

// SimulatedSource generates a deterministic sinusoidal peak/off-peak price
// envelope for the planning series, then derives the actual series by adding
// uniform noise and occasional multiplicative spikes. Ported from
// original_source/scripts/prices/simulated_price.py.
type SimulatedSource struct {
	Intervals        int     // N, intervals per day
	MinPrice         float64
	MaxPrice         float64
	PeakHourStart    int // inclusive, hour of day
	PeakHourEnd      int // exclusive
	NoiseLevel       float64 // fraction of price, additive uniform noise half-width
	SpikeChance      float64 // probability per interval of a price spike
	SpikeMultiplier  float64
}

// NewSimulatedSource returns a SimulatedSource with the defaults used by the
// Python original.
func NewSimulatedSource(intervals int) *SimulatedSource {
	return &SimulatedSource{
		Intervals:       intervals,
		MinPrice:        5,
		MaxPrice:        100,
		PeakHourStart:   16,
		PeakHourEnd:     21,
		NoiseLevel:      0.1,
		SpikeChance:     0.02,
		SpikeMultiplier: 3.0,
	}
}

func (s *SimulatedSource) GetPrices(date time.Time) ([]float64, []float64, error) {
	if s.Intervals <= 0 {
		return nil, nil, &errs.InvalidConfig{Field: "intervals", Reason: "must be > 0"}
	}

	// Deterministic per-date seeding, mirroring Python's
	// random.seed(date.toordinal()); a local *rand.Rand is used so no
	// package-level RNG state leaks across calls (SPEC_FULL §9).
	seed := date.Unix()
	rng := rand.New(rand.NewSource(seed))

	planning := make([]float64, s.Intervals)
	hoursPerInterval := 24.0 / float64(s.Intervals)
	mid := (s.MaxPrice + s.MinPrice) / 2
	amp := (s.MaxPrice - s.MinPrice) / 2

	for t := 0; t < s.Intervals; t++ {
		hour := float64(t) * hoursPerInterval
		// Smooth 24-hour envelope peaking at the midpoint of
		// [PeakHourStart, PeakHourEnd).
		peakCenter := float64(s.PeakHourStart+s.PeakHourEnd) / 2
		phase := (hour - peakCenter) / 24.0 * 2 * math.Pi
		envelope := mid + amp*math.Cos(phase)
		adjust := rng.Float64()*2 - 1 // U(-1, 1)
		v := envelope + adjust*amp*0.1
		planning[t] = clampPrice(v, s.MinPrice, s.MaxPrice)
	}

	actual := make([]float64, s.Intervals)
	for t, p := range planning {
		noise := (rng.Float64()*2 - 1) * s.NoiseLevel * p
		v := p + noise
		if rng.Float64() < s.SpikeChance {
			v *= s.SpikeMultiplier
		}
		actual[t] = v
	}

	return planning, actual, nil
}

func clampPrice(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- HistoricalAverageSource ------------------------------------------------

// HistoricalAverageSource averages a prior window of recorded actual prices,
// grouped by hour-of-day, to produce both the planning and actual series for
// a requested date. Ported from
// original_source/scripts/prices/average_price.py, which uses a pandas
// groupby over a 7-day trailing window; here the window is an immutable,
// pre-loaded slice of (timestamp, price) pairs (see internal/backtest's CSV
// loader), cached once at construction per SPEC_FULL §5. The series always
// has 24 values, one per hour of day, whatever the optimizer horizon is.
type HistoricalAverageSource struct {
	WindowDays int
	records    []Record
}

// Record is one (timestamp, price) observation.
type Record struct {
	Timestamp time.Time
	Price     float64
}

// NewHistoricalAverageSource constructs a source from pre-loaded records.
// windowDays defaults to 7 if <= 0.
func NewHistoricalAverageSource(records []Record, windowDays int) *HistoricalAverageSource {
	if windowDays <= 0 {
		windowDays = 7
	}
	return &HistoricalAverageSource{WindowDays: windowDays, records: records}
}

func (s *HistoricalAverageSource) GetPrices(date time.Time) ([]float64, []float64, error) {
	windowStart := date.AddDate(0, 0, -s.WindowDays)

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range s.records {
		if r.Timestamp.Before(windowStart) || !r.Timestamp.Before(date) {
			continue
		}
		h := r.Timestamp.Hour()
		sums[h] += r.Price
		counts[h]++
	}

	if len(counts) == 0 {
		return nil, nil, &errs.PriceDataUnavailable{
			Date:   date.Format("2006-01-02"),
			Reason: "no historical records within the trailing window",
		}
	}

	series := make([]float64, 24)
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			return nil, nil, &errs.PriceDataUnavailable{
				Date:   date.Format("2006-01-02"),
				Reason: "incomplete hour-of-day coverage in trailing window",
			}
		}
		series[h] = sums[h] / float64(counts[h])
	}

	planning := series
	actual := append([]float64(nil), series...)
	return planning, actual, nil
}

// --- ForecastSource -----------------------------------------------------

// ForecastSource wraps a caller-supplied forecasting function, representing
// the ML-based price forecaster boundary named in SPEC_FULL §1: the core
// sees only GetPrices, never the model internals. Ported in spirit from
// original_source/scripts/prices/forecasted_price.py's ForecastPriceModel,
// minus the XGBoost internals (explicitly out of scope).
type ForecastSource struct {
	// Forecast returns the planning price vector for a date; the actual
	// series is supplied separately since a forecaster by definition does
	// not know the realized outcome.
	Forecast func(date time.Time) ([]float64, error)
	// Actual supplies the realized price vector used for P&L; typically a
	// historical lookup.
	Actual func(date time.Time) ([]float64, error)
}

func (s *ForecastSource) GetPrices(date time.Time) ([]float64, []float64, error) {
	if s.Forecast == nil || s.Actual == nil {
		return nil, nil, &errs.InvalidConfig{Field: "forecast_source", Reason: "Forecast and Actual functions are required"}
	}
	planning, err := s.Forecast(date)
	if err != nil {
		return nil, nil, &errs.PriceDataUnavailable{Date: date.Format("2006-01-02"), Reason: err.Error()}
	}
	actual, err := s.Actual(date)
	if err != nil {
		return nil, nil, &errs.PriceDataUnavailable{Date: date.Format("2006-01-02"), Reason: err.Error()}
	}
	if len(planning) != len(actual) {
		return nil, nil, &errs.PriceDataUnavailable{Date: date.Format("2006-01-02"), Reason: "planning/actual length mismatch"}
	}
	return planning, actual, nil
}
