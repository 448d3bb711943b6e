package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validConfig = `
battery:
  capacity_mwh: 1.0
  charge_efficiency: 0.9
  discharge_efficiency: 0.9
  max_charge_rate_mw: 1.0
  max_discharge_rate_mw: 1.0
  initial_soc: 0.5
  initial_soh: 1.0
  temperature_c: 25
price_source:
  kind: simulated
duration_hours: 1.0
horizon_intervals: 24
max_cycles: 5
start_date: "2026-01-01"
end_date: "2026-01-05"
`

func TestLoad_Valid(t *testing.T) {
	path := writeTempConfig(t, validConfig)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 24, cfg.HorizonIntervals)
	assert.Equal(t, "simulated", cfg.PriceSource.Kind)
}

func TestLoad_InvalidBattery(t *testing.T) {
	path := writeTempConfig(t, `
battery:
  capacity_mwh: 0
  charge_efficiency: 0.9
  discharge_efficiency: 0.9
  max_charge_rate_mw: 1.0
  max_discharge_rate_mw: 1.0
  initial_soc: 0.5
  initial_soh: 1.0
price_source:
  kind: simulated
start_date: "2026-01-01"
end_date: "2026-01-05"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_InvalidPriceSourceKind(t *testing.T) {
	path := writeTempConfig(t, `
battery:
  capacity_mwh: 1.0
  charge_efficiency: 0.9
  discharge_efficiency: 0.9
  max_charge_rate_mw: 1.0
  max_discharge_rate_mw: 1.0
  initial_soc: 0.5
  initial_soh: 1.0
price_source:
  kind: magic
start_date: "2026-01-01"
end_date: "2026-01-05"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_BadDateFormat(t *testing.T) {
	path := writeTempConfig(t, `
battery:
  capacity_mwh: 1.0
  charge_efficiency: 0.9
  discharge_efficiency: 0.9
  max_charge_rate_mw: 1.0
  max_discharge_rate_mw: 1.0
  initial_soc: 0.5
  initial_soh: 1.0
price_source:
  kind: simulated
start_date: "01/01/2026"
end_date: "2026-01-05"
`)
	_, err := Load(path)
	require.Error(t, err)
}
