// Package pnl computes the realized profit and loss for a schedule executed
// against an actual price series.
//
// Unit convention (SPEC_FULL §9 open question): the optimizer's objective
// weights by 1/Δh while this calculator weights by Δh. This is
// self-consistent only because prices are $/MWh and the schedule's
// charge/discharge values are MWh, not MW; see
// internal/optimizer/optimizer.go's objective construction for the other
// half of this convention. Deviating from either side silently changes the
// P&L scale without producing a visible error.
package pnl

import "battery-arbitrage/internal/optimizer"

// Calculate applies the independent-branch rule from SPEC_FULL §4.4:
// charge cost and discharge revenue are each checked independently (not as
// an if/elif), deliberately diverging from
// original_source/scripts/market_simulator/pnl_calculator.py's if/elif
// structure, which the spec identifies as an inconsistency in the original.
func Calculate(rows []optimizer.Row, actualPrices []float64, chargeEfficiency, dischargeEfficiency, deltaHours float64) float64 {
	total := 0.0
	for t, r := range rows {
		if t >= len(actualPrices) {
			break
		}
		p := actualPrices[t]
		if r.ChargeMWh > 0 {
			total -= r.ChargeMWh * p * deltaHours / chargeEfficiency
		}
		if r.DischargeMWh > 0 {
			total += r.DischargeMWh * p * deltaHours * dischargeEfficiency
		}
	}
	return total
}
