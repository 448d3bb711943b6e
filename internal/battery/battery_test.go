package battery

import (
	"testing"

	"battery-arbitrage/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultParams() Params {
	return Params{
		CapacityMWh:        1.0,
		ChargeEfficiency:    0.9,
		DischargeEfficiency: 0.9,
		MaxChargeRateMW:     1.0,
		MaxDischargeRateMW:  1.0,
		DurationHours:       1.0,
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		soc    float64
		soh    float64
	}{
		{"zero capacity", func() Params { p := defaultParams(); p.CapacityMWh = 0; return p }(), 0.5, 1.0},
		{"soc out of range", defaultParams(), 1.5, 1.0},
		{"soh out of range", defaultParams(), 0.5, -0.1},
		{"low charge efficiency", func() Params { p := defaultParams(); p.ChargeEfficiency = 0.1; return p }(), 0.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params, tt.soc, tt.soh, 25)
			require.Error(t, err)
			var invalid *errs.InvalidConfig
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestCharge_ClampsToSOCCeiling(t *testing.T) {
	b, err := New(defaultParams(), 0.95, 1.0, 25)
	require.NoError(t, err)

	b.Charge(1.0)
	assert.LessOrEqual(t, b.State.SOC, 1.0)
	assert.GreaterOrEqual(t, b.State.SOC, 0.95)
}

func TestDischarge_ClampsToSOCFloor(t *testing.T) {
	b, err := New(defaultParams(), 0.05, 1.0, 25)
	require.NoError(t, err)

	b.Discharge(1.0)
	assert.GreaterOrEqual(t, b.State.SOC, 0.0)
}

func TestSOH_StrictlyNonIncreasingUnderNonZeroOps(t *testing.T) {
	b, err := New(defaultParams(), 0.5, 1.0, 25)
	require.NoError(t, err)

	prev := b.State.SOH
	for i := 0; i < 5; i++ {
		b.Charge(0.1)
		assert.Less(t, b.State.SOH, prev)
		prev = b.State.SOH
	}
}

func TestSOH_HighDoDDegradesFaster(t *testing.T) {
	shallow, err := New(defaultParams(), 0.9, 1.0, 25)
	require.NoError(t, err)
	shallow.Discharge(0.05) // ends near soc=0.85, dod~0.15, low factor

	deep, err := New(defaultParams(), 0.9, 1.0, 25)
	require.NoError(t, err)
	deep.Discharge(0.5) // ends near soc=0.45, dod~0.55, high factor

	shallowLoss := 1.0 - shallow.State.SOH
	deepLoss := 1.0 - deep.State.SOH
	// Deep discharge cycles more energy AND hits the high-DoD factor, so its
	// degradation per unit of energy interacted with is strictly larger.
	assert.Greater(t, deepLoss/0.5, shallowLoss/0.05)
}

func TestCycleAccounting_ContinuousAccumulator(t *testing.T) {
	b, err := New(defaultParams(), 0.5, 1.0, 25)
	require.NoError(t, err)

	b.Charge(1.0) // full capacity throughput once
	b.Discharge(1.0)

	// cycles_delta = energy/(2*capacity); two 1.0 MWh operations on a 1.0 MWh
	// battery sum to 1.0 cycle.
	assert.InDelta(t, 1.0, b.State.CycleCount, 1e-9)
}

func TestTemperatureAdjustedEfficiency_ClampedToRange(t *testing.T) {
	b, err := New(defaultParams(), 0.5, 1.0, 100) // far from 25C reference
	require.NoError(t, err)

	chargeEff, dischargeEff := b.adjustedEfficiencies()
	assert.GreaterOrEqual(t, chargeEff, minEfficiency)
	assert.GreaterOrEqual(t, dischargeEff, minEfficiency)
	assert.Less(t, chargeEff, b.Params.ChargeEfficiency)
}

func TestChargeDischarge_NeverFail(t *testing.T) {
	b, err := New(defaultParams(), 0.5, 1.0, 25)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		b.Charge(-5)
		b.Discharge(-5)
		b.Charge(1e9)
		b.Discharge(1e9)
	})
	assert.GreaterOrEqual(t, b.State.SOC, 0.0)
	assert.LessOrEqual(t, b.State.SOC, 1.0)
}
