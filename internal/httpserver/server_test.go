package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return logrus.NewEntry(log)
}

func TestHealth_ReturnsOK(t *testing.T) {
	router := New(testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func validRunRequestBody() []byte {
	body := map[string]any{
		"battery": map[string]any{
			"capacity_mwh":          1.0,
			"charge_efficiency":     0.9,
			"discharge_efficiency":  0.9,
			"max_charge_rate_mw":    1.0,
			"max_discharge_rate_mw": 1.0,
			"initial_soc":           0.5,
			"initial_soh":           1.0,
			"temperature_c":         25.0,
		},
		"duration_hours":    1.0,
		"horizon_intervals": 4,
		"max_cycles":        5.0,
		"start_date":        "2026-01-01",
		"end_date":          "2026-01-01",
	}
	raw, _ := json.Marshal(body)
	return raw
}

func TestRuns_ValidRequest_ReturnsSummary(t *testing.T) {
	router := New(testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(validRunRequestBody()))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Days)
	assert.Len(t, resp.Ledger, 4)
}

func TestRuns_BadDate_Returns400(t *testing.T) {
	router := New(testLogger())

	body := map[string]any{
		"battery": map[string]any{
			"capacity_mwh":          1.0,
			"charge_efficiency":     0.9,
			"discharge_efficiency":  0.9,
			"max_charge_rate_mw":    1.0,
			"max_discharge_rate_mw": 1.0,
			"initial_soc":           0.5,
			"initial_soh":           1.0,
		},
		"duration_hours":    1.0,
		"horizon_intervals": 4,
		"start_date":        "01/01/2026",
		"end_date":          "2026-01-01",
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRuns_InvalidBattery_Returns400(t *testing.T) {
	router := New(testLogger())

	body := map[string]any{
		"battery": map[string]any{
			"capacity_mwh": 0.0,
		},
		"duration_hours":    1.0,
		"horizon_intervals": 4,
		"start_date":        "2026-01-01",
		"end_date":          "2026-01-01",
	}
	raw, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/v1/runs", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
