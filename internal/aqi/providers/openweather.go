package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/aqstack/air-quality-aggregation/internal/aqi"
)

// OpenWeatherAdapter fetches current pollutant concentrations from the
// OpenWeatherMap air_pollution API. OWM reports all components in µg/m³;
// CO is converted to the canonical mg/m³ at this boundary. The adapter also
// implements aqi.Resolver via OWM's direct-geocoding API.
type OpenWeatherAdapter struct {
	name    string
	apiKey  string
	airURL  string
	geoURL  string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherAdapter(client *http.Client, apiKey string, minInterval time.Duration) *OpenWeatherAdapter {
	return &OpenWeatherAdapter{
		name:    "openweathermap",
		apiKey:  apiKey,
		airURL:  "https://api.openweathermap.org/data/2.5/air_pollution",
		geoURL:  "https://api.openweathermap.org/geo/1.0/direct",
		httpCfg: defaultHTTPConfig(client, minInterval),
		circuit: newCircuitBreaker("openweathermap"),
	}
}

func (p *OpenWeatherAdapter) Name() string { return p.name }

func (p *OpenWeatherAdapter) Taxonomy() aqi.Taxonomy { return aqi.TaxonomyCPCB }

// Resolve geocodes a city name through OWM's direct-geocoding endpoint.
func (p *OpenWeatherAdapter) Resolve(ctx context.Context, city string) (aqi.Target, error) {
	if p.apiKey == "" {
		return aqi.Target{}, &aqi.ConfigError{Adapter: p.name, Reason: "OWM_API_KEY is not set"}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("limit", "1")
		values.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.geoURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return aqi.Target{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return aqi.Target{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}
	if len(payload) == 0 {
		return aqi.Target{}, aqi.ErrTargetNotFound
	}

	lat, lon := payload[0].Lat, payload[0].Lon
	return aqi.Target{City: city, Lat: &lat, Lon: &lon}, nil
}

func (p *OpenWeatherAdapter) Fetch(ctx context.Context, t aqi.Target) (aqi.SourceReading, error) {
	if p.apiKey == "" {
		return aqi.SourceReading{}, &aqi.ConfigError{Adapter: p.name, Reason: "OWM_API_KEY is not set"}
	}

	if !t.HasCoords() {
		resolved, err := p.Resolve(ctx, t.City)
		if err != nil {
			return aqi.SourceReading{}, err
		}
		t = resolved
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", *t.Lat))
		values.Set("lon", fmt.Sprintf("%f", *t.Lon))
		values.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", p.airURL, values.Encode()), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return aqi.SourceReading{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt         int64 `json:"dt"`
			Components struct {
				PM25 *float64 `json:"pm2_5"` // OWM uses pm2_5
				PM10 *float64 `json:"pm10"`
				CO   *float64 `json:"co"`
				NO2  *float64 `json:"no2"`
				SO2  *float64 `json:"so2"`
				O3   *float64 `json:"o3"`
				NH3  *float64 `json:"nh3"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return aqi.SourceReading{}, &aqi.UpstreamError{Adapter: p.name, Err: err}
	}
	if len(payload.List) == 0 {
		return aqi.SourceReading{}, aqi.ErrNoData
	}

	entry := payload.List[0]

	// OWM reports CO in µg/m³; the CPCB tables expect mg/m³.
	var co *float64
	if entry.Components.CO != nil {
		v := aqi.MicrogramsToMilligrams(*entry.Components.CO)
		co = &v
	}

	readings := aqi.Readings{
		aqi.PM25: entry.Components.PM25,
		aqi.PM10: entry.Components.PM10,
		aqi.CO:   co,
		aqi.NO2:  entry.Components.NO2,
		aqi.SO2:  entry.Components.SO2,
		aqi.O3:   entry.Components.O3,
		aqi.NH3:  entry.Components.NH3,
		aqi.PB:   nil, // OWM does not report lead
	}

	ts := time.Unix(entry.Dt, 0).UTC()
	if entry.Dt == 0 {
		ts = time.Now().UTC()
	}

	return aqi.SourceReading{
		Source:    fmt.Sprintf("OpenWeatherMap:%s", t.City),
		Timestamp: ts,
		Readings:  readings,
	}, nil
}
