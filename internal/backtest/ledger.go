// Package backtest holds the flattened, CSV-friendly view of a simulator
// run: one ledger row per schedule interval across every day, plus the
// loader for historical price CSVs. Adapted from the donor's
// internal/backtest/ledger.go and csv.go, with the row shape re-scoped from
// Grid-Status LMP fields to the arbitrage schedule fields named in
// SPEC_FULL §6.
package backtest

import "battery-arbitrage/internal/simulator"

// LedgerRow is one row of per-interval output across the whole run.
type LedgerRow struct {
	Date     string
	Interval int

	ChargeMWh    float64
	DischargeMWh float64
	SOC          float64

	DailyPNL float64
}

// FlattenLedger turns a simulator.Result into a flat row sequence suitable
// for CSV export.
func FlattenLedger(result *simulator.Result) []LedgerRow {
	var rows []LedgerRow
	for _, day := range result.Days {
		dateStr := day.Date.Format(dateLayout)
		for _, r := range day.Schedule {
			rows = append(rows, LedgerRow{
				Date:         dateStr,
				Interval:     r.Interval,
				ChargeMWh:    r.ChargeMWh,
				DischargeMWh: r.DischargeMWh,
				SOC:          r.SOC,
				DailyPNL:     day.DailyPNL,
			})
		}
	}
	return rows
}
