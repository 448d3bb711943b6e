// Package analysis ranks candidate price series by arbitrage potential
// ahead of a full backtest run, per SPEC_FULL §2.3's supplemented "ranking
// tool" feature. Adapted from the donor's internal/analysis/potential.go
// and internal/strategy/oracle.go, re-scoped from model.LMPInterval
// (Grid-Status nodal LMPs) to a plain per-interval []float64 price series
// plus an explicit interval duration, since this domain has no notion of a
// grid node or market.
package analysis

import (
	"math"
	"sort"
)

// SeriesPotential is a price-series-level summary usable for ranking
// candidate series (e.g. different days, nodes, or historical windows)
// without running the full LP-based simulator. It reports raw price
// statistics plus an "oracle" profit for a canonical 1MW/1MWh battery with
// no efficiency losses and no degradation.
type SeriesPotential struct {
	Label string

	Count int

	MinPrice  float64
	MaxPrice  float64
	MeanPrice float64
	P05Price  float64
	P95Price  float64

	SpreadP95P05 float64

	// OracleProfit is the profit ($) from a canonical battery:
	// - 1 MW power, 1 MWh energy
	// - 100% efficiency, no degradation
	// - SOC bounds [0,1], initial SOC 0.5 rounded down onto the SOC grid
	//   (0 when intervals are one hour long)
	// - dispatch choices {-1, 0, +1} MW each interval
	OracleProfit float64
}

// ComputePotential summarizes one price series. deltaHours is the duration
// of one interval in hours.
func ComputePotential(label string, prices []float64, deltaHours float64) SeriesPotential {
	p := SeriesPotential{Label: label}
	if len(prices) == 0 {
		return p
	}
	p.Count = len(prices)

	sum := 0.0
	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(prices))
	for _, v := range prices {
		vals = append(vals, v)
		sum += v
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
	}
	sort.Float64s(vals)
	p.MinPrice = minv
	p.MaxPrice = maxv
	p.MeanPrice = sum / float64(len(vals))
	p.P05Price = percentileSorted(vals, 0.05)
	p.P95Price = percentileSorted(vals, 0.95)
	p.SpreadP95P05 = p.P95Price - p.P05Price

	p.OracleProfit = oracleProfitCanonical(prices, deltaHours)
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// oracleProfitCanonical computes a best-effort "upper bound" using a simple
// DP: SOC discretized into steps of deltaHours (since P=1MW, E=1MWh).
func oracleProfitCanonical(prices []float64, deltaHours float64) float64 {
	if len(prices) == 0 || deltaHours <= 0 {
		return 0
	}
	stepSOC := deltaHours // with 1MW, 1MWh => deltaHours MWh per step => deltaHours SOC
	steps := int(math.Round(1.0 / stepSOC))
	if steps < 1 {
		steps = 1
	}
	// SOC grid: 0..steps (inclusive) maps to soc = i/steps.
	nStates := steps + 1
	negInf := -1e100
	dp := make([]float64, nStates)
	next := make([]float64, nStates)
	for i := range dp {
		dp[i] = negInf
	}
	// initial SOC 0.5 snapped down to the nearest state at or below it
	init := int(math.Floor(0.5 * float64(steps)))
	if init < 0 {
		init = 0
	}
	if init > steps {
		init = steps
	}
	dp[init] = 0

	for _, price := range prices {
		for i := range next {
			next[i] = negInf
		}

		for socIdx := 0; socIdx <= steps; socIdx++ {
			if dp[socIdx] <= negInf/2 {
				continue
			}

			// Idle
			if dp[socIdx] > next[socIdx] {
				next[socIdx] = dp[socIdx]
			}

			// Charge: -1MW for deltaHours => buy deltaHours MWh, SOC increases.
			if socIdx < steps {
				gain := -(price * deltaHours)
				if dp[socIdx]+gain > next[socIdx+1] {
					next[socIdx+1] = dp[socIdx] + gain
				}
			}

			// Discharge: +1MW for deltaHours => sell deltaHours MWh, SOC decreases.
			if socIdx > 0 {
				gain := price * deltaHours
				if dp[socIdx]+gain > next[socIdx-1] {
					next[socIdx-1] = dp[socIdx] + gain
				}
			}
		}
		dp, next = next, dp
	}

	best := negInf
	for _, v := range dp {
		if v > best {
			best = v
		}
	}
	if best <= negInf/2 {
		return 0
	}
	return best
}
