// Command cli is the operator entrypoint for running and ranking the
// rolling battery arbitrage backtest described in SPEC_FULL §6, adapted
// from the donor's cmd/cli/main.go subcommand shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"battery-arbitrage/internal/analysis"
	"battery-arbitrage/internal/backtest"
	"battery-arbitrage/internal/battery"
	"battery-arbitrage/internal/config"
	"battery-arbitrage/internal/optimizer"
	"battery-arbitrage/internal/price"
	"battery-arbitrage/internal/simulator"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --config config.yaml --out results/ledger.csv")
	fmt.Println("  cli rank --prices prices.csv --timestamp-col utc_timestamp --price-col price --window-days 1")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML run config")
	outPath := fs.String("out", "results/ledger.csv", "Output ledger CSV path")
	verbose := fs.Bool("v", false, "Log one entry per simulated day")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Println("--config is required")
		os.Exit(2)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	entry := logrus.NewEntry(log)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		entry.WithError(err).Fatal("invalid config")
	}

	batt, err := battery.New(
		cfg.Battery.ToParams(cfg.DurationHours),
		cfg.Battery.InitialSOC,
		cfg.Battery.InitialSOH,
		cfg.Battery.TemperatureC,
	)
	if err != nil {
		entry.WithError(err).Fatal("invalid battery config")
	}

	source, err := buildPriceSource(cfg)
	if err != nil {
		entry.WithError(err).Fatal("invalid price source config")
	}

	startDate, err := cfg.ParseStartDate()
	if err != nil {
		entry.WithError(err).Fatal("invalid start_date")
	}
	endDate, err := cfg.ParseEndDate()
	if err != nil {
		entry.WithError(err).Fatal("invalid end_date")
	}

	result, err := simulator.Run(context.Background(), simulator.Config{
		StartDate: startDate,
		EndDate:   endDate,
		Battery:   batt,
		Prices:    source,
		Optimizer: optimizer.New(),
		MaxCycles: cfg.MaxCycles,
		Log:       entry,
	})
	if err != nil {
		entry.WithError(err).Fatal("run failed")
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		entry.WithError(err).Fatal("could not create output directory")
	}
	ledger := backtest.FlattenLedger(result)
	if err := backtest.WriteLedgerCSV(*outPath, ledger); err != nil {
		entry.WithError(err).Fatal("could not write ledger CSV")
	}

	fmt.Printf("Wrote %d rows to %s\n", len(ledger), *outPath)
	fmt.Printf("Total PnL=$%.2f Final SOC=%.3f\n", result.TotalPNL, result.FinalSOC)
}

func buildPriceSource(cfg *config.Config) (price.Source, error) {
	switch cfg.PriceSource.Kind {
	case "simulated":
		return price.NewSimulatedSource(cfg.HorizonIntervals), nil
	case "historical_average":
		records, err := backtest.ReadPriceCSV(cfg.PriceSource.CSVPath, "utc_timestamp", "price")
		if err != nil {
			return nil, err
		}
		return price.NewHistoricalAverageSource(records, cfg.PriceSource.WindowDays), nil
	default:
		return nil, fmt.Errorf("unsupported price source kind for cli run: %q (use a custom ForecastSource in code)", cfg.PriceSource.Kind)
	}
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	csvPath := fs.String("prices", "", "Path to a price CSV")
	tsCol := fs.String("timestamp-col", "utc_timestamp", "Timestamp column name")
	priceCol := fs.String("price-col", "price", "Price column name")
	windowDays := fs.Int("window-days", 1, "Number of calendar days per ranked candidate")
	deltaHours := fs.Float64("delta-hours", 1.0, "Interval duration in hours")
	_ = fs.Parse(args)

	if *csvPath == "" {
		fmt.Println("--prices is required")
		os.Exit(2)
	}

	records, err := backtest.ReadPriceCSV(*csvPath, *tsCol, *priceCol)
	if err != nil {
		panic(err)
	}

	candidates := groupByWindow(records, *windowDays)
	ranked := analysis.RankByOracleProfit(candidates, *deltaHours)

	fmt.Printf("%-4s %-14s %-8s %-10s %-14s %-12s\n", "rank", "label", "count", "p95-p05", "min/max", "oracle$")
	for i, r := range ranked {
		fmt.Printf(
			"%-4d %-14s %-8d %-10.2f %-6.1f/%-6.1f %-12.2f\n",
			i+1, r.Label, r.Count, r.SpreadP95P05, r.MinPrice, r.MaxPrice, r.OracleProfit,
		)
	}
}

// groupByWindow buckets sorted price records into consecutive windows of
// windowDays*24h, each starting at the first record the previous window did
// not cover and becoming one ranking candidate labeled by its start date.
func groupByWindow(records []price.Record, windowDays int) []analysis.Candidate {
	if windowDays <= 0 {
		windowDays = 1
	}
	var out []analysis.Candidate
	var cur analysis.Candidate
	var windowStart time.Time

	for _, r := range records {
		if cur.Label == "" || r.Timestamp.Sub(windowStart) >= time.Duration(windowDays)*24*time.Hour {
			if cur.Label != "" {
				out = append(out, cur)
			}
			windowStart = r.Timestamp
			cur = analysis.Candidate{Label: windowStart.Format("2006-01-02")}
		}
		cur.Prices = append(cur.Prices, r.Price)
	}
	if cur.Label != "" {
		out = append(out, cur)
	}
	return out
}
