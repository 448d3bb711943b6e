// Command demo runs a single simulated day end-to-end and prints the
// resulting schedule and P&L, to show how the core collaborators fit
// together without needing a config file or price CSV.
package main

import (
	"fmt"
	"time"

	"battery-arbitrage/internal/battery"
	"battery-arbitrage/internal/optimizer"
	"battery-arbitrage/internal/pnl"
	"battery-arbitrage/internal/price"
)

func main() {
	intervals := 24
	params := battery.Params{
		CapacityMWh:         100,
		ChargeEfficiency:    0.95,
		DischargeEfficiency: 0.95,
		MaxChargeRateMW:     50,
		MaxDischargeRateMW:  50,
		DurationHours:       1.0,
	}

	batt, err := battery.New(params, 0.5, 1.0, 25.0)
	if err != nil {
		panic(err)
	}

	date, err := time.Parse("2006-01-02", "2026-01-01")
	if err != nil {
		panic(err)
	}

	source := price.NewSimulatedSource(intervals)
	planning, actual, err := source.GetPrices(date)
	if err != nil {
		panic(err)
	}

	snap := optimizer.SnapshotFrom(batt, 1.0)
	opt := optimizer.New()
	schedule, err := opt.CreateSchedule(planning, snap, params.DurationHours)
	if err != nil {
		panic(err)
	}

	dailyPNL := pnl.Calculate(schedule, actual, snap.ChargeEfficiency, snap.DischargeEfficiency, params.DurationHours)

	fmt.Printf("Simulated day, %d intervals, starting SOC=%.2f\n\n", intervals, batt.State.SOC)
	fmt.Printf("%-4s %-10s %-10s %-8s %-10s %-10s\n", "hr", "price", "charge", "discharge", "soc", "")
	for i, row := range schedule {
		fmt.Printf("%-4d %-10.2f %-10.2f %-8.2f %-10.3f\n", i, planning[i], row.ChargeMWh, row.DischargeMWh, row.SOC)
	}

	fmt.Printf("\nDaily P&L: $%.2f\n", dailyPNL)
}
