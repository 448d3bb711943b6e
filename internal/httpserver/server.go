package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"battery-arbitrage/internal/backtest"
	"battery-arbitrage/internal/battery"
	"battery-arbitrage/internal/errs"
	"battery-arbitrage/internal/optimizer"
	"battery-arbitrage/internal/price"
	"battery-arbitrage/internal/simulator"
)

// RunRequest is the JSON body for POST /v1/runs: a flattened subset of
// config.Config that is convenient to send over HTTP. Only the simulated
// price source is supported here; historical/forecast sources need a data
// file and are reached through the CLI instead.
type RunRequest struct {
	Battery struct {
		CapacityMWh         float64 `json:"capacity_mwh"`
		ChargeEfficiency    float64 `json:"charge_efficiency"`
		DischargeEfficiency float64 `json:"discharge_efficiency"`
		MaxChargeRateMW     float64 `json:"max_charge_rate_mw"`
		MaxDischargeRateMW  float64 `json:"max_discharge_rate_mw"`
		InitialSOC          float64 `json:"initial_soc"`
		InitialSOH          float64 `json:"initial_soh"`
		TemperatureC        float64 `json:"temperature_c"`
	} `json:"battery"`
	DurationHours    float64 `json:"duration_hours"`
	HorizonIntervals int     `json:"horizon_intervals"`
	MaxCycles        float64 `json:"max_cycles"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
}

// RunResponse summarizes a completed run and carries its flattened
// per-interval ledger, the same rows the CLI writes to CSV.
type RunResponse struct {
	TotalPNL float64              `json:"total_pnl"`
	FinalSOC float64              `json:"final_soc"`
	Days     int                  `json:"days"`
	Ledger   []backtest.LedgerRow `json:"ledger"`
}

// New builds the gin engine serving the arbitrage API, wiring the recovery
// middleware and a single run endpoint. log receives one entry per
// simulated day at debug level, same as the CLI.
func New(log *logrus.Entry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), recoveryHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/v1/runs", func(c *gin.Context) {
		handleRun(c, log)
	})

	return router
}

func handleRun(c *gin.Context, log *logrus.Entry) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeInvalidConfig(c, &errs.InvalidConfig{Field: "start_date", Reason: "must be formatted as YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeInvalidConfig(c, &errs.InvalidConfig{Field: "end_date", Reason: "must be formatted as YYYY-MM-DD"})
		return
	}

	params := battery.Params{
		CapacityMWh:         req.Battery.CapacityMWh,
		ChargeEfficiency:    req.Battery.ChargeEfficiency,
		DischargeEfficiency: req.Battery.DischargeEfficiency,
		MaxChargeRateMW:     req.Battery.MaxChargeRateMW,
		MaxDischargeRateMW:  req.Battery.MaxDischargeRateMW,
		DurationHours:       req.DurationHours,
	}
	batt, err := battery.New(params, req.Battery.InitialSOC, req.Battery.InitialSOH, req.Battery.TemperatureC)
	if err != nil {
		writeInvalidConfig(c, err)
		return
	}

	source := price.NewSimulatedSource(req.HorizonIntervals)

	result, err := simulator.Run(context.Background(), simulator.Config{
		StartDate: startDate,
		EndDate:   endDate,
		Battery:   batt,
		Prices:    source,
		Optimizer: optimizer.New(),
		MaxCycles: req.MaxCycles,
		Log:       log,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, RunResponse{
		TotalPNL: result.TotalPNL,
		FinalSOC: result.FinalSOC,
		Days:     len(result.Days),
		Ledger:   backtest.FlattenLedger(result),
	})
}

func writeInvalidConfig(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
