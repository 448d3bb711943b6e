// Package simulator drives the rolling multi-day horizon: for each date it
// pulls prices, plans a schedule, applies it to the battery, and accounts
// P&L, carrying battery state across days. Grounded in the donor's
// internal/backtest/engine.go (single-day engine shape) generalized to a
// date range, and in
// original_source/scripts/market_simulator/energy_market_simulator.py's
// EnergyMarketSimulator.simulate/run_daily_operation/process_daily_schedule.
package simulator

import (
	"context"
	"fmt"
	"time"

	"battery-arbitrage/internal/battery"
	"battery-arbitrage/internal/errs"
	"battery-arbitrage/internal/optimizer"
	"battery-arbitrage/internal/pnl"
	"battery-arbitrage/internal/price"

	"github.com/sirupsen/logrus"
)

// DayResult is one day's outcome, per SPEC_FULL §3.
type DayResult struct {
	Date     time.Time
	Schedule []optimizer.Row
	DailyPNL float64
}

// Result is the full run log plus the running total.
type Result struct {
	Days     []DayResult
	TotalPNL float64
	FinalSOC float64
}

// Config wires together the four core collaborators plus the run's fixed
// parameters. The Battery is owned exclusively by Run for the lifetime of
// the call, per SPEC_FULL §3.
type Config struct {
	StartDate time.Time
	EndDate   time.Time
	Battery   *battery.Battery
	Prices    price.Source
	Optimizer *optimizer.Optimizer
	MaxCycles float64
	// DayTimeout bounds how long a single day's solve may run before the
	// day fails as OptimizationFailed{Condition: "timeout"} (SPEC_FULL
	// §5). Zero disables the bound. lp.Simplex has no built-in deadline,
	// so this is enforced at the call boundary with context.WithTimeout;
	// a timed-out solve keeps running in its goroutine but its result is
	// discarded.
	DayTimeout time.Duration
	// Log receives one structured entry per day at Debug level and a
	// summary at Info level on completion. Never ambient package state
	// (SPEC_FULL §9); pass logrus.NewEntry(logrus.StandardLogger()) for a
	// default sink, or nil to disable logging entirely.
	Log *logrus.Entry
}

// Run executes the rolling simulation described in SPEC_FULL §4.5.
// PriceDataUnavailable and OptimizationFailed both abort the run (policy
// chosen in SPEC_FULL §7): a back-test favors deterministic failure over
// silently corrupting the aggregate P&L.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Battery == nil {
		return nil, &errs.InvalidConfig{Field: "battery", Reason: "must not be nil"}
	}
	if cfg.Prices == nil {
		return nil, &errs.InvalidConfig{Field: "prices", Reason: "must not be nil"}
	}
	if cfg.Optimizer == nil {
		cfg.Optimizer = optimizer.New()
	}
	if cfg.EndDate.Before(cfg.StartDate) {
		return nil, &errs.InvalidConfig{Field: "end_date", Reason: "must not be before start_date"}
	}

	b := cfg.Battery
	deltaHours := b.Params.DurationHours

	result := &Result{}
	total := 0.0

	for d := cfg.StartDate; !d.After(cfg.EndDate); d = d.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		planning, actual, err := cfg.Prices.GetPrices(d)
		if err != nil {
			return result, fmt.Errorf("day %s: %w", d.Format("2006-01-02"), err)
		}

		snap := optimizer.SnapshotFrom(b, cfg.MaxCycles)
		schedule, err := solveWithTimeout(ctx, cfg.DayTimeout, cfg.Optimizer, planning, snap, deltaHours)
		if err != nil {
			return result, fmt.Errorf("day %s: %w", d.Format("2006-01-02"), err)
		}

		applySchedule(b, schedule)

		dailyPNL := pnl.Calculate(schedule, actual, snap.ChargeEfficiency, snap.DischargeEfficiency, deltaHours)
		total += dailyPNL

		result.Days = append(result.Days, DayResult{Date: d, Schedule: schedule, DailyPNL: dailyPNL})

		if cfg.Log != nil {
			cfg.Log.WithFields(logrus.Fields{
				"date":      d.Format("2006-01-02"),
				"daily_pnl": dailyPNL,
				"soc_end":   b.State.SOC,
			}).Debug("day complete")
		}
	}

	result.TotalPNL = total
	result.FinalSOC = b.State.SOC

	if cfg.Log != nil {
		cfg.Log.WithFields(logrus.Fields{
			"start_date": cfg.StartDate.Format("2006-01-02"),
			"end_date":   cfg.EndDate.Format("2006-01-02"),
			"total_pnl":  total,
			"days":       len(result.Days),
		}).Info("run complete")
	}

	return result, nil
}

// solveWithTimeout runs CreateSchedule, bounding it by timeout if positive.
// The solve itself is not cancelled mid-computation (SPEC_FULL §5); a
// timeout only stops Run from waiting on it past the deadline.
func solveWithTimeout(ctx context.Context, timeout time.Duration, opt *optimizer.Optimizer, prices []float64, snap optimizer.Snapshot, deltaHours float64) ([]optimizer.Row, error) {
	if timeout <= 0 {
		return opt.CreateSchedule(prices, snap, deltaHours)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		rows []optimizer.Row
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		rows, err := opt.CreateSchedule(prices, snap, deltaHours)
		done <- outcome{rows, err}
	}()

	select {
	case <-ctx.Done():
		return nil, &errs.OptimizationFailed{Status: ctx.Err().Error(), Condition: "timeout"}
	case o := <-done:
		return o.rows, o.err
	}
}

// applySchedule executes one day's plan against the live battery, applying
// charge xor discharge per interval in strict interval order. A row where
// both legs are zero is a charge(0) no-op, matching
// EnergyMarketSimulator.process_daily_schedule's elif chain.
func applySchedule(b *battery.Battery, schedule []optimizer.Row) {
	for _, row := range schedule {
		switch {
		case row.ChargeMWh > 0:
			b.Charge(row.ChargeMWh)
		case row.DischargeMWh > 0:
			b.Discharge(row.DischargeMWh)
		default:
			b.Charge(0)
		}
	}
}
