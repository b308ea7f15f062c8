package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

// WAQIAdapter fetches city feeds from the World Air Quality Index project
// (aqicn.org). WAQI supplies an already-computed index on the US EPA scale,
// so the adapter carries that index through instead of recomputing; the iaqi
// per-pollutant values are themselves sub-indices, not concentrations, and
// are kept unconverted as the record's raw readings.
type WAQIAdapter struct {
	name    string
	token   string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWAQIAdapter(client *http.Client, token string, minInterval time.Duration) *WAQIAdapter {
	return &WAQIAdapter{
		name:    "waqi",
		token:   token,
		baseURL: "https://api.waqi.info",
		httpCfg: defaultHTTPConfig(client, minInterval),
		circuit: newCircuitBreaker("waqi"),
	}
}

func (p *WAQIAdapter) Name() string { return p.name }

func (p *WAQIAdapter) Taxonomy() aqi.Taxonomy { return aqi.TaxonomyEPA }

func (p *WAQIAdapter) Fetch(ctx context.Context, t aqi.Target) (aqi.SourceReading, error) {
	if p.token == "" {
		return aqi.SourceReading{}, &aqi.ConfigError{Adapter: p.name, Reason: "AQICN_TOKEN is not set"}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("token", p.token)
		u := fmt.Sprintf("%s/feed/%s/?%s", p.baseURL, url.PathEscape(t.City), values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return aqi.SourceReading{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}
	defer resp.Body.Close()

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return aqi.SourceReading{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}
	if envelope.Status != "ok" {
		return aqi.SourceReading{}, &aqi.UpstreamError{
			Adapter: p.name,
			Err:     fmt.Errorf("api status %q for %s", envelope.Status, t.City),
		}
	}

	var data struct {
		// WAQI reports "-" instead of a number when no index is available.
		AQI  json.RawMessage `json:"aqi"`
		IAQI map[string]struct {
			V float64 `json:"v"`
		} `json:"iaqi"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return aqi.SourceReading{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}

	var aqiValue float64
	if err := json.Unmarshal(data.AQI, &aqiValue); err != nil {
		return aqi.SourceReading{}, aqi.ErrNoData
	}
	index := int(math.Round(aqiValue))

	readings := make(aqi.Readings, len(aqi.PriorityOrder))
	for _, pollutant := range aqi.PriorityOrder {
		// WAQI keys match our canonical ids; whatever is missing stays
		// absent, never zero.
		if entry, ok := data.IAQI[string(pollutant)]; ok {
			v := entry.V
			readings[pollutant] = &v
		} else {
			readings[pollutant] = nil
		}
	}

	return aqi.SourceReading{
		Source:      fmt.Sprintf("WAQI:%s", t.City),
		Timestamp:   time.Now().UTC(),
		Readings:    readings,
		ProviderAQI: &index,
	}, nil
}
