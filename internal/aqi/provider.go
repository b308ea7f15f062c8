package aqi

import (
	"context"
	"time"
)

// Target identifies a place an adapter can fetch data for. Lat/Lon are
// optional; adapters that need coordinates resolve them on demand.
type Target struct {
	City string   `json:"city"`
	Lat  *float64 `json:"lat,omitempty"`
	Lon  *float64 `json:"lon,omitempty"`
}

// HasCoords reports whether the target carries resolved coordinates.
func (t Target) HasCoords() bool {
	return t.Lat != nil && t.Lon != nil
}

// SourceReading is one adapter's normalized fetch result: canonical-unit
// readings keyed by canonical pollutant ids, with provider field names and
// units already mapped away at the adapter boundary.
type SourceReading struct {
	Source    string
	Timestamp time.Time
	Readings  Readings

	// ProviderAQI is set when the provider supplies an already-computed
	// index; in that case the service classifies it under the adapter's
	// taxonomy instead of recomputing from concentrations.
	ProviderAQI *int
}

// Adapter abstracts one external air-quality data source.
type Adapter interface {
	Name() string
	Taxonomy() Taxonomy
	Fetch(ctx context.Context, t Target) (SourceReading, error)
}

// Resolver turns a city name into a fetchable target.
type Resolver interface {
	Resolve(ctx context.Context, city string) (Target, error)
}

// Filter narrows a record query. An empty Source matches every source.
type Filter struct {
	Source string
	Limit  int
}

// Store is the contract every record store must satisfy. Query returns
// records newest first. Put need not be idempotent; duplicates under retry
// are acceptable.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Query(ctx context.Context, f Filter) ([]Record, error)
}
