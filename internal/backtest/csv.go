package backtest

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"battery-arbitrage/internal/price"
)

const dateLayout = "2006-01-02"

// WriteLedgerCSV writes the flattened run ledger, per SPEC_FULL §6's
// "Schedule output" contract.
func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"date", "interval", "charge_mwh", "discharge_mwh", "soc", "daily_pnl"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			r.Date,
			strconv.Itoa(r.Interval),
			fmtFloat(r.ChargeMWh),
			fmtFloat(r.DischargeMWh),
			fmtFloat(r.SOC),
			fmtFloat(r.DailyPNL),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

// ReadPriceCSV loads a timestamp-indexed price CSV per SPEC_FULL §6's "Price
// data file" contract: a utc_timestamp column (RFC3339) and a named price
// column. Ported from original_source/scripts/shared/csv_data_provider.py's
// parameterized (timestamp_column, price_column) loader, using
// encoding/csv + time.Parse in place of pandas. Missing numeric cells are
// linearly interpolated against their neighbors.
func ReadPriceCSV(path, timestampColumn, priceColumn string) ([]price.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	tsIdx, priceIdx := -1, -1
	for i, h := range header {
		switch h {
		case timestampColumn:
			tsIdx = i
		case priceColumn:
			priceIdx = i
		}
	}
	if tsIdx == -1 || priceIdx == -1 {
		return nil, fmt.Errorf("csv %s: missing required columns %q/%q", path, timestampColumn, priceColumn)
	}

	type rawRecord struct {
		price.Record
		missing bool
	}
	var raw []rawRecord
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		ts, err := time.Parse(time.RFC3339, row[tsIdx])
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(row[priceIdx], 64)
		if err != nil {
			raw = append(raw, rawRecord{Record: price.Record{Timestamp: ts}, missing: true})
			continue
		}
		raw = append(raw, rawRecord{Record: price.Record{Timestamp: ts, Price: v}})
	}

	sort.Slice(raw, func(i, j int) bool { return raw[i].Timestamp.Before(raw[j].Timestamp) })

	records := make([]price.Record, len(raw))
	missing := make(map[int]bool)
	for i, rr := range raw {
		records[i] = rr.Record
		if rr.missing {
			missing[i] = true
		}
	}
	interpolateMissing(records, missing)
	return records, nil
}

// interpolateMissing fills gaps left by unparsable price cells by linear
// interpolation between the nearest valid neighbors, per SPEC_FULL §6.
func interpolateMissing(records []price.Record, missing map[int]bool) {
	for i := range records {
		if !missing[i] {
			continue
		}
		prevIdx, nextIdx := -1, -1
		for j := i - 1; j >= 0; j-- {
			if !missing[j] {
				prevIdx = j
				break
			}
		}
		for j := i + 1; j < len(records); j++ {
			if !missing[j] {
				nextIdx = j
				break
			}
		}
		switch {
		case prevIdx >= 0 && nextIdx >= 0:
			frac := float64(i-prevIdx) / float64(nextIdx-prevIdx)
			records[i].Price = records[prevIdx].Price + frac*(records[nextIdx].Price-records[prevIdx].Price)
		case prevIdx >= 0:
			records[i].Price = records[prevIdx].Price
		case nextIdx >= 0:
			records[i].Price = records[nextIdx].Price
		}
	}
}
