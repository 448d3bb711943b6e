// Package optimizer builds and solves the single-day arbitrage LP described
// in SPEC_FULL §4.3: given a battery snapshot and a price vector, produce a
// per-interval (charge, discharge, soc) schedule that maximizes revenue
// under SOC, per-interval capacity, and cycle-life constraints. Each
// interval's charge and discharge are bounded by the battery capacity; the
// battery's power rate limits are not part of the LP.
//
// The model is built as an explicit dense constraint matrix (never by
// threading callbacks through a modeling language) and solved with gonum's
// simplex implementation, mirroring
// original_source/scripts/optimizer/model.py's PyomoOptimizationModelBuilder
// but without an intermediate modeling layer.
package optimizer

import (
	"battery-arbitrage/internal/battery"
	"battery-arbitrage/internal/errs"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	socMin = 0.05
	socMax = 0.95

	// numericTolerance absorbs solver-level noise: tiny negative charge or
	// discharge values, or SOC overshoots at the 1e-9 scale (SPEC_FULL §7).
	numericTolerance = 1e-9
)

// Row is one interval of the produced schedule.
type Row struct {
	Interval   int
	ChargeMWh  float64
	DischargeMWh float64
	SOC        float64
}

// Snapshot is the read-only battery view the optimizer plans against. The
// simulator owns the actual *battery.Battery; only these fields are copied
// in for planning (SPEC_FULL §3 ownership rule: optimizer never aliases the
// live battery).
type Snapshot struct {
	CapacityMWh         float64
	ChargeEfficiency    float64 // η_c used by the LP, already temperature-adjusted
	DischargeEfficiency float64 // η_d used by the LP, already temperature-adjusted
	SOC                 float64
	MaxCycles           float64
}

// SnapshotFrom copies the fields of b relevant to planning, applying the
// same temperature adjustment the battery itself would apply on its next
// charge/discharge call, so the LP's efficiency assumptions match execution.
func SnapshotFrom(b *battery.Battery, maxCycles float64) Snapshot {
	chargeEff, dischargeEff := adjustedEfficiencies(b)
	return Snapshot{
		CapacityMWh:         b.Params.CapacityMWh,
		ChargeEfficiency:    chargeEff,
		DischargeEfficiency: dischargeEff,
		SOC:                 b.State.SOC,
		MaxCycles:           maxCycles,
	}
}

func adjustedEfficiencies(b *battery.Battery) (float64, float64) {
	// Battery does not export its temperature-adjustment helper, so the
	// optimizer recomputes the same clamp here using the public state; this
	// keeps the optimizer's assumed efficiency identical to what the
	// battery will actually apply when the schedule is executed.
	delta := absf(b.State.TemperatureC - 25.0)
	adj := delta * 0.01
	return clamp(b.Params.ChargeEfficiency-adj, 0.5, 1.0), clamp(b.Params.DischargeEfficiency-adj, 0.5, 1.0)
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
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

// Optimizer produces one day's schedule.
type Optimizer struct{}

// New returns an Optimizer. There is no configuration beyond the snapshot
// and price vector passed to CreateSchedule.
func New() *Optimizer { return &Optimizer{} }

// CreateSchedule builds and solves the LP for a single day. deltaHours is
// the length of one interval in hours (Δh); prices must have length N
// matching the planning horizon.
func (o *Optimizer) CreateSchedule(prices []float64, snap Snapshot, deltaHours float64) ([]Row, error) {
	n := len(prices)
	if n == 0 {
		return nil, &errs.InvalidConfig{Field: "prices", Reason: "must have at least one interval"}
	}
	if deltaHours <= 0 {
		return nil, &errs.InvalidConfig{Field: "delta_hours", Reason: "must be > 0"}
	}
	if snap.CapacityMWh <= 0 {
		return nil, &errs.InvalidConfig{Field: "capacity_mwh", Reason: "must be > 0"}
	}

	// Variable layout: c[0..n-1] and d[0..n-1] are the n per-interval actions;
	// soc[0..n] and cyc[0..n] are the n+1 states those actions walk between,
	// so the action of the last interval (c/d[n-1]) drives a transition into
	// soc[n]/cyc[n] exactly like every other interval. A layout with only n
	// states (soc[0..n-1]) leaves the final action bound solely by its own
	// box constraints, free of any SOC or cycle bookkeeping.
	nVars := 4*n + 2
	idxC := func(t int) int { return t }
	idxD := func(t int) int { return n + t }
	idxSOC := func(t int) int { return 2*n + t }
	idxCyc := func(t int) int { return 3*n + t + 1 }

	cap := snap.CapacityMWh
	etaC := snap.ChargeEfficiency
	etaD := snap.DischargeEfficiency
	cycleCap := snap.MaxCycles * cap * 2

	// --- Objective: minimize the negation of the maximize-objective in §4.3.
	objective := make([]float64, nVars)
	for t := 0; t < n; t++ {
		objective[idxC(t)] = prices[t] / (etaC * deltaHours)
		objective[idxD(t)] = -prices[t] * etaD / deltaHours
	}

	// --- Equality constraints: initial SOC, cyc[0]=0, and one SOC/cycle
	// dynamics pair per interval (t=1..n), each driven by that interval's
	// own action (t-1).
	nEq := 2 + 2*n
	aData := make([]float64, 0, nEq*nVars)
	bEq := make([]float64, 0, nEq)

	addEqRow := func(coeffs map[int]float64, rhs float64) {
		row := make([]float64, nVars)
		for idx, v := range coeffs {
			row[idx] = v
		}
		aData = append(aData, row...)
		bEq = append(bEq, rhs)
	}

	addEqRow(map[int]float64{idxSOC(0): 1}, snap.SOC)
	addEqRow(map[int]float64{idxCyc(0): 1}, 0)
	for t := 1; t <= n; t++ {
		addEqRow(map[int]float64{
			idxSOC(t):   1,
			idxSOC(t-1): -1,
			idxC(t-1):   -etaC / cap,
			idxD(t-1):   1 / etaD / cap,
		}, 0)
		addEqRow(map[int]float64{
			idxCyc(t):   1,
			idxCyc(t-1): -1,
			idxC(t-1):   -etaC,
			idxD(t-1):   -1 / etaD,
		}, 0)
	}

	// --- Inequality constraints: per-interval upper bounds, mutual capacity
	// bound, SOC band on every state reached after an action, and the
	// horizon cycle cap on the terminal state (which now reflects all n
	// actions, including the last).
	var gData []float64
	var hIneq []float64
	addIneqRow := func(coeffs map[int]float64, rhs float64) {
		row := make([]float64, nVars)
		for idx, v := range coeffs {
			row[idx] = v
		}
		gData = append(gData, row...)
		hIneq = append(hIneq, rhs)
	}
	for t := 0; t < n; t++ {
		addIneqRow(map[int]float64{idxC(t): 1}, cap)             // c[t] <= capacity
		addIneqRow(map[int]float64{idxD(t): 1}, cap)             // d[t] <= capacity
		addIneqRow(map[int]float64{idxC(t): 1, idxD(t): 1}, cap) // c[t]+d[t] <= capacity
	}
	for t := 1; t <= n; t++ {
		addIneqRow(map[int]float64{idxSOC(t): 1}, socMax)   // soc[t] <= SOC_MAX
		addIneqRow(map[int]float64{idxSOC(t): -1}, -socMin) // soc[t] >= SOC_MIN
	}
	addIneqRow(map[int]float64{idxCyc(n): 1}, cycleCap) // cyc[n] <= max_cycles*capacity*2

	aEq := mat.NewDense(len(bEq), nVars, aData)
	gIneq := mat.NewDense(len(hIneq), nVars, gData)

	stdC, stdA, stdB := lp.Convert(objective, gIneq, hIneq, aEq, bEq)

	optF, optX, err := lp.Simplex(stdC, stdA, stdB, numericTolerance, nil)
	if err != nil {
		return nil, &errs.OptimizationFailed{Status: err.Error(), Condition: classifyFailure(err)}
	}
	_ = optF // objective value is available to callers that want it; schedule extraction is the primary output here

	rows := make([]Row, n)
	for t := 0; t < n; t++ {
		rows[t] = Row{
			Interval:     t,
			ChargeMWh:    clampSchedule(optX[idxC(t)], 0, cap),
			DischargeMWh: clampSchedule(optX[idxD(t)], 0, cap),
			SOC:          clampSchedule(optX[idxSOC(t)], socMin, socMax),
		}
	}
	return rows, nil
}

// classifyFailure maps a gonum lp error into the coarse condition buckets
// named in SPEC_FULL §4.3's termination table.
func classifyFailure(err error) string {
	msg := err.Error()
	switch {
	case contains(msg, "infeasible"):
		return "infeasible"
	case contains(msg, "unbounded"):
		return "unbounded"
	case contains(msg, "iterations"):
		return "max_iterations"
	default:
		return "error"
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

// clampSchedule recovers from the numeric noise SPEC_FULL §7 describes:
// solver tolerance can return tiny negatives or mild overshoots.
func clampSchedule(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
