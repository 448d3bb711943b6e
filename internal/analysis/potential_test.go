package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePotential_EmptySeriesIsZeroValue(t *testing.T) {
	p := ComputePotential("empty", nil, 1.0)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 0.0, p.OracleProfit)
}

func TestComputePotential_FlatPriceHasZeroSpreadAndOracleProfit(t *testing.T) {
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = 50.0
	}
	p := ComputePotential("flat", prices, 1.0)
	assert.Equal(t, 0.0, p.SpreadP95P05)
	assert.Equal(t, 0.0, p.OracleProfit)
}

func TestComputePotential_TwoStepArbitrageFindsTheSpread(t *testing.T) {
	// Cheap then expensive: a 1MW/1MWh battery can buy 1 MWh at 10 and sell
	// it at 100 for a $90 oracle profit.
	prices := []float64{10, 100}
	p := ComputePotential("two-step", prices, 1.0)
	assert.InDelta(t, 90.0, p.OracleProfit, 1e-6)
	assert.Equal(t, 10.0, p.MinPrice)
	assert.Equal(t, 100.0, p.MaxPrice)
}

func TestRankByOracleProfit_SortsDescending(t *testing.T) {
	candidates := []Candidate{
		{Label: "low", Prices: []float64{50, 51}},
		{Label: "high", Prices: []float64{10, 100}},
		{Label: "mid", Prices: []float64{20, 60}},
	}
	ranked := RankByOracleProfit(candidates, 1.0)
	if assert.Len(t, ranked, 3) {
		assert.Equal(t, "high", ranked[0].Label)
		assert.GreaterOrEqual(t, ranked[0].OracleProfit, ranked[1].OracleProfit)
		assert.GreaterOrEqual(t, ranked[1].OracleProfit, ranked[2].OracleProfit)
	}
}
