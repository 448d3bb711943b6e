package analysis

import "sort"

// RankedPotential is a SeriesPotential placed in a ranked set.
type RankedPotential struct {
	SeriesPotential
}

// Candidate is one named price series to rank, e.g. a historical window
// keyed by date or a candidate node's series.
type Candidate struct {
	Label  string
	Prices []float64
}

// RankByOracleProfit computes potentials per candidate and sorts descending
// by OracleProfit, so the highest-opportunity series sort first.
func RankByOracleProfit(candidates []Candidate, deltaHours float64) []RankedPotential {
	out := make([]RankedPotential, 0, len(candidates))
	for _, c := range candidates {
		p := ComputePotential(c.Label, c.Prices, deltaHours)
		out = append(out, RankedPotential{SeriesPotential: p})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OracleProfit > out[j].OracleProfit
	})
	return out
}
