package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
	"github.com/aqstack/air-quality-aggregation/internal/store"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	memStore := store.NewMemoryStore(10, 0)
	svc := aqi.NewService(aqi.DefaultRegistry(), memStore, nil, nil)
	RegisterRoutes(app, svc)
	return app
}

func TestCalculateEndpoint(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"pm25": 45, "source": "sensor-7"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var payload struct {
		AQI      int      `json:"aqi"`
		Category string   `json:"category"`
		Dominant string   `json:"dominantPollutant"`
		Source   string   `json:"source"`
		PM25Raw  *float64 `json:"pm25_raw"`
		PBRaw    *float64 `json:"pb_raw"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.AQI != 75 || payload.Category != "Satisfactory" || payload.Dominant != "pm25" {
		t.Fatalf("payload = %+v, want aqi=75 Satisfactory pm25", payload)
	}
	if payload.Source != "sensor-7" {
		t.Fatalf("source = %q, want sensor-7", payload.Source)
	}
	if payload.PM25Raw == nil || *payload.PM25Raw != 45 {
		t.Fatalf("pm25_raw = %v, want 45", payload.PM25Raw)
	}
	if payload.PBRaw != nil {
		t.Fatalf("pb_raw = %v, want null for unmeasured pollutant", *payload.PBRaw)
	}
}

func TestCalculateEndpointRejectsBadBody(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRecordsEndpoint(t *testing.T) {
	app := newTestApp()

	for _, body := range []string{`{"pm25": 45}`, `{"pm10": 80}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if _, err := app.Test(req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records?limit=1", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var records []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	// Newest first: the pm10 submission came last.
	if dom := records[0]["dominantPollutant"]; dom != "pm10" {
		t.Fatalf("dominantPollutant = %v, want pm10", dom)
	}
	if _, ok := records[0]["id"]; ok {
		t.Fatal("internal id field must be stripped from responses")
	}
}

func TestRecordsEndpointLimitValidation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records?limit=5000", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for out-of-range limit", resp.StatusCode)
	}
}

func TestFetchEndpointRequiresCity(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fetch", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestFetchEndpointWithoutAdapter(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/fetch?city=Delhi", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 when no fetch adapter is configured", resp.StatusCode)
	}
}
