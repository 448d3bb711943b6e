// Package config loads the YAML run configuration described in SPEC_FULL
// §6, following the donor's internal/config/config.go Load/Validate shape.
package config

import (
	"fmt"
	"os"
	"time"

	"battery-arbitrage/internal/battery"
	"battery-arbitrage/internal/errs"

	"gopkg.in/yaml.v3"
)

// BatteryConfig mirrors battery.Params plus the initial-condition fields the
// constructor needs.
type BatteryConfig struct {
	CapacityMWh         float64 `yaml:"capacity_mwh"`
	ChargeEfficiency    float64 `yaml:"charge_efficiency"`
	DischargeEfficiency float64 `yaml:"discharge_efficiency"`
	MaxChargeRateMW     float64 `yaml:"max_charge_rate_mw"`
	MaxDischargeRateMW  float64 `yaml:"max_discharge_rate_mw"`
	InitialSOC          float64 `yaml:"initial_soc"`
	InitialSOH          float64 `yaml:"initial_soh"`
	TemperatureC        float64 `yaml:"temperature_c"`
}

// PriceSourceConfig selects and configures one of the three price variants.
type PriceSourceConfig struct {
	Kind       string `yaml:"kind"` // simulated | historical_average | forecast
	WindowDays int    `yaml:"window_days"`
	CSVPath    string `yaml:"csv_path"` // source records for historical_average
}

// Config is the on-disk run configuration shape.
type Config struct {
	Battery          BatteryConfig     `yaml:"battery"`
	PriceSource      PriceSourceConfig `yaml:"price_source"`
	DurationHours    float64           `yaml:"duration_hours"`
	HorizonIntervals int               `yaml:"horizon_intervals"`
	MaxCycles        float64           `yaml:"max_cycles"`
	StartDate        string            `yaml:"start_date"` // YYYY-MM-DD
	EndDate          string            `yaml:"end_date"`   // YYYY-MM-DD
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked reads a YAML config without validating it, useful for
// debugging partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := defaultConfig()
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func defaultConfig() Config {
	return Config{
		DurationHours:    1.0,
		HorizonIntervals: 24,
		MaxCycles:        5.0,
		PriceSource:      PriceSourceConfig{Kind: "simulated", WindowDays: 7},
	}
}

// Validate checks the configuration against the invariants constructors
// enforce, surfacing failures as errs.InvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return &errs.InvalidConfig{Field: "config", Reason: "must not be nil"}
	}
	if c.HorizonIntervals <= 0 {
		return &errs.InvalidConfig{Field: "horizon_intervals", Reason: "must be > 0"}
	}
	if c.DurationHours <= 0 {
		return &errs.InvalidConfig{Field: "duration_hours", Reason: "must be > 0"}
	}
	if c.MaxCycles < 0 {
		return &errs.InvalidConfig{Field: "max_cycles", Reason: "must be >= 0"}
	}
	switch c.PriceSource.Kind {
	case "simulated", "historical_average", "forecast":
	default:
		return &errs.InvalidConfig{Field: "price_source.kind", Reason: "must be one of simulated, historical_average, forecast"}
	}
	if _, err := c.ParseStartDate(); err != nil {
		return err
	}
	if _, err := c.ParseEndDate(); err != nil {
		return err
	}
	// Constructing the battery validates its own invariants.
	_, err := battery.New(c.Battery.ToParams(c.DurationHours), c.Battery.InitialSOC, c.Battery.InitialSOH, c.Battery.TemperatureC)
	if err != nil {
		return fmt.Errorf("battery config invalid: %w", err)
	}
	return nil
}

// ToParams converts the YAML battery fields into battery.Params.
func (b BatteryConfig) ToParams(durationHours float64) battery.Params {
	return battery.Params{
		CapacityMWh:         b.CapacityMWh,
		ChargeEfficiency:    b.ChargeEfficiency,
		DischargeEfficiency: b.DischargeEfficiency,
		MaxChargeRateMW:     b.MaxChargeRateMW,
		MaxDischargeRateMW:  b.MaxDischargeRateMW,
		DurationHours:       durationHours,
	}
}

const dateLayout = "2006-01-02"

// ParseStartDate parses StartDate as a UTC calendar date.
func (c *Config) ParseStartDate() (time.Time, error) {
	return parseDate(c.StartDate, "start_date")
}

// ParseEndDate parses EndDate as a UTC calendar date.
func (c *Config) ParseEndDate() (time.Time, error) {
	return parseDate(c.EndDate, "end_date")
}

func parseDate(s, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, &errs.InvalidConfig{Field: field, Reason: "must be formatted as YYYY-MM-DD"}
	}
	return t, nil
}
