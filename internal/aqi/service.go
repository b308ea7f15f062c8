package aqi

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	defaultQueryLimit = 100
	maxQueryLimit     = 1000

	// SourceManual labels records created by direct caller submission.
	SourceManual = "manual_entry"
)

// Service is the ingestion core: it turns pollutant readings from any path
// (manual submission, on-demand city fetch, scheduled poll) into persisted
// records.
type Service struct {
	registry *Registry
	store    Store
	resolver Resolver
	primary  Adapter // adapter used for on-demand city fetches
}

// NewService creates a Service. resolver and primary may be nil when the
// corresponding configuration is absent; only the on-demand fetch path
// degrades in that case.
func NewService(reg *Registry, store Store, resolver Resolver, primary Adapter) *Service {
	return &Service{
		registry: reg,
		store:    store,
		resolver: resolver,
		primary:  primary,
	}
}

// CalculateManual aggregates caller-supplied readings under the CPCB scale,
// persists the record, and returns it. Out-of-domain values (negative, NaN)
// are treated as absent for the computation rather than failing the call.
func (s *Service) CalculateManual(ctx context.Context, readings Readings, source string) (Record, error) {
	if source == "" {
		source = SourceManual
	}

	clean := sanitizeReadings(readings)
	res := Aggregate(s.registry, clean, TaxonomyCPCB)

	rec := s.newRecord(source, time.Now().UTC(), clean, res)
	if err := s.store.Put(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("store record: %w", err)
	}
	return rec, nil
}

// FetchCity resolves a city, fetches current data from the primary adapter,
// aggregates, persists, and returns the record.
func (s *Service) FetchCity(ctx context.Context, city string) (Record, error) {
	if s.primary == nil {
		return Record{}, &ConfigError{Adapter: "primary", Reason: "no fetch adapter configured"}
	}

	target := Target{City: city}
	if s.resolver != nil {
		t, err := s.resolver.Resolve(ctx, city)
		if err != nil {
			return Record{}, err
		}
		target = t
	}

	sr, err := s.primary.Fetch(ctx, target)
	if err != nil {
		return Record{}, err
	}

	rec := s.recordFrom(s.primary, sr)
	if err := s.store.Put(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("store record: %w", err)
	}
	return rec, nil
}

// IngestScheduled runs one (adapter, target) poll: fetch, aggregate, store.
// The scheduler owns the error policy; this method just reports the failure.
func (s *Service) IngestScheduled(ctx context.Context, adapter Adapter, target Target) error {
	sr, err := adapter.Fetch(ctx, target)
	if err != nil {
		return err
	}

	rec := s.recordFrom(adapter, sr)
	if err := s.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	return nil
}

// Records returns stored records newest first. A zero or negative limit
// falls back to the default; limits above the cap are clamped.
func (s *Service) Records(ctx context.Context, f Filter) ([]Record, error) {
	if f.Limit <= 0 {
		f.Limit = defaultQueryLimit
	}
	if f.Limit > maxQueryLimit {
		f.Limit = maxQueryLimit
	}
	return s.store.Query(ctx, f)
}

func (s *Service) recordFrom(a Adapter, sr SourceReading) Record {
	clean := sanitizeReadings(sr.Readings)

	var res Result
	if sr.ProviderAQI != nil {
		// The provider already computed the index; classify it under the
		// adapter's taxonomy and derive the dominant pollutant from the raw
		// values.
		v := *sr.ProviderAQI
		res = Result{AQI: v, Category: Classify(v, a.Taxonomy()), Dominant: DominantOf(clean)}
	} else {
		res = Aggregate(s.registry, clean, a.Taxonomy())
	}

	ts := sr.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return s.newRecord(sr.Source, ts, clean, res)
}

func (s *Service) newRecord(source string, ts time.Time, raw Readings, res Result) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: ts.UTC(),
		Source:    source,
		AQI:       res.AQI,
		Category:  res.Category,
		Dominant:  res.Dominant,
		Raw:       raw,
	}
}

// sanitizeReadings drops values outside the computable domain, keeping the
// rest. A dropped reading becomes absent, never zero.
func sanitizeReadings(readings Readings) Readings {
	clean := make(Readings, len(readings))
	for p, v := range readings {
		if v == nil {
			clean[p] = nil
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			log.Printf("aqi: dropping invalid %s reading %v", p, *v)
			clean[p] = nil
			continue
		}
		c := *v
		clean[p] = &c
	}
	return clean
}
