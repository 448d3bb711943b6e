// Package battery models a single grid-connected storage asset: capacity,
// temperature-adjusted efficiencies, state of charge, state of health, and
// continuous cycle accounting.
package battery

import (
	"math"

	"battery-arbitrage/internal/errs"
)

const (
	// baseDegradation is the SOH degradation coefficient per MWh cycled,
	// ported from original_source/scripts/assets/battery.py BasicSOHCalculator.
	baseDegradation = 5e-6
	// highDoDThreshold marks the depth-of-discharge above which degradation
	// accelerates.
	highDoDThreshold = 0.5
	highDoDFactor    = 2.0
	lowDoDFactor     = 1.0

	minEfficiency        = 0.5
	maxEfficiency         = 1.0
	temperatureReferenceC = 25.0
	temperatureCoeff      = 0.01
)

// Params are the fixed physical characteristics of a battery asset.
type Params struct {
	CapacityMWh         float64
	ChargeEfficiency     float64 // nominal (pre-temperature-adjustment) η_c, in [0.5, 1.0]
	DischargeEfficiency  float64 // nominal η_d, in [0.5, 1.0]
	MaxChargeRateMW      float64
	MaxDischargeRateMW   float64
	DurationHours        float64 // length of one control interval
}

// State is the mutable condition of the asset.
type State struct {
	SOC             float64 // fraction of capacity, [0,1]
	SOH             float64 // fractional health retention, [0,1]
	TemperatureC    float64
	CycleCount      float64 // continuous cycle accumulator
	EnergyCycledMWh float64 // cumulative MWh cycled (charge+discharge)
}

// Battery bundles fixed parameters with current state.
type Battery struct {
	Params Params
	State  State
}

// New constructs a Battery, validating initial conditions per SPEC_FULL §4.1.
func New(params Params, initialSOC, initialSOH, temperatureC float64) (*Battery, error) {
	b := &Battery{
		Params: params,
		State: State{
			SOC:          initialSOC,
			SOH:          initialSOH,
			TemperatureC: temperatureC,
		},
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) validate() error {
	p := b.Params
	if p.CapacityMWh <= 0 {
		return &errs.InvalidConfig{Field: "capacity_mwh", Reason: "must be > 0"}
	}
	if p.ChargeEfficiency < minEfficiency || p.ChargeEfficiency > maxEfficiency {
		return &errs.InvalidConfig{Field: "charge_efficiency", Reason: "must be in [0.5, 1.0]"}
	}
	if p.DischargeEfficiency < minEfficiency || p.DischargeEfficiency > maxEfficiency {
		return &errs.InvalidConfig{Field: "discharge_efficiency", Reason: "must be in [0.5, 1.0]"}
	}
	if p.MaxChargeRateMW <= 0 || p.MaxDischargeRateMW <= 0 {
		return &errs.InvalidConfig{Field: "max_rate_mw", Reason: "must be > 0"}
	}
	if p.DurationHours <= 0 {
		return &errs.InvalidConfig{Field: "duration_hours", Reason: "must be > 0"}
	}
	if b.State.SOC < 0 || b.State.SOC > 1 {
		return &errs.InvalidConfig{Field: "initial_soc", Reason: "must be in [0, 1]"}
	}
	if b.State.SOH < 0 || b.State.SOH > 1 {
		return &errs.InvalidConfig{Field: "initial_soh", Reason: "must be in [0, 1]"}
	}
	return nil
}

// adjustedEfficiencies applies the temperature derating rule from SPEC_FULL
// §4.1: η' = clamp(η - |T-25|*0.01, 0.5, 1.0).
func (b *Battery) adjustedEfficiencies() (chargeEff, dischargeEff float64) {
	delta := math.Abs(b.State.TemperatureC-temperatureReferenceC) * temperatureCoeff
	chargeEff = clamp(b.Params.ChargeEfficiency-delta, minEfficiency, maxEfficiency)
	dischargeEff = clamp(b.Params.DischargeEfficiency-delta, minEfficiency, maxEfficiency)
	return chargeEff, dischargeEff
}

// Charge stores energyMWh (requested, pre-efficiency, from the grid side),
// clamped to the power limit for one interval. Never fails.
func (b *Battery) Charge(energyMWh float64) {
	if energyMWh < 0 {
		energyMWh = 0
	}
	chargeEff, _ := b.adjustedEfficiencies()

	limit := b.Params.MaxChargeRateMW * b.Params.DurationHours
	if energyMWh > limit {
		energyMWh = limit
	}

	storedMWh := energyMWh * chargeEff
	b.State.SOC = clamp(b.State.SOC+storedMWh/b.Params.CapacityMWh, 0, 1)
	b.updateSOHAndCycles(energyMWh)
}

// Discharge requests energyMWh from the battery side and delivers
// energyMWh*η_d to the grid; the stored energy removed is the delivered
// amount, matching original_source/scripts/assets/battery.py's
// actual_energy_mwh accounting. Never fails.
func (b *Battery) Discharge(energyMWh float64) {
	if energyMWh < 0 {
		energyMWh = 0
	}
	_, dischargeEff := b.adjustedEfficiencies()

	limit := b.Params.MaxDischargeRateMW * b.Params.DurationHours
	if energyMWh > limit {
		energyMWh = limit
	}

	withdrawnMWh := energyMWh * dischargeEff
	b.State.SOC = clamp(b.State.SOC-withdrawnMWh/b.Params.CapacityMWh, 0, 1)
	b.updateSOHAndCycles(energyMWh)
}

// updateSOHAndCycles applies the degradation rule and continuous cycle
// accumulator from SPEC_FULL §4.1, ported from
// original_source/scripts/assets/battery.py update_soh_and_cycles.
func (b *Battery) updateSOHAndCycles(energyMWh float64) {
	if energyMWh == 0 {
		return
	}
	b.State.EnergyCycledMWh += energyMWh

	dod := 1.0 - b.State.SOC
	dodFactor := lowDoDFactor
	if dod > highDoDThreshold {
		dodFactor = highDoDFactor
	}
	deltaSOH := baseDegradation * energyMWh * dodFactor
	b.State.SOH *= 1 - deltaSOH

	b.State.CycleCount += energyMWh / (2 * b.Params.CapacityMWh)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
