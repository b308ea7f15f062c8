package aqi

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeStore struct {
	mu      sync.Mutex
	records []Record
	putErr  error
}

func (s *fakeStore) Put(_ context.Context, rec Record) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) Query(_ context.Context, f Filter) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for i := len(s.records) - 1; i >= 0; i-- {
		if f.Source != "" && s.records[i].Source != f.Source {
			continue
		}
		out = append(out, s.records[i])
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

type fakeAdapter struct {
	name     string
	taxonomy Taxonomy
	reading  SourceReading
	err      error
	calls    int
}

func (a *fakeAdapter) Name() string       { return a.name }
func (a *fakeAdapter) Taxonomy() Taxonomy { return a.taxonomy }

func (a *fakeAdapter) Fetch(_ context.Context, _ Target) (SourceReading, error) {
	a.calls++
	return a.reading, a.err
}

type fakeResolver struct {
	target Target
	err    error
}

func (r *fakeResolver) Resolve(_ context.Context, _ string) (Target, error) {
	return r.target, r.err
}

func TestCalculateManual(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(DefaultRegistry(), st, nil, nil)

	rec, err := svc.CalculateManual(context.Background(), Readings{PM25: f(45)}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.AQI != 75 || rec.Category != "Satisfactory" || rec.Dominant != "pm25" {
		t.Fatalf("record = %+v, want aqi=75 Satisfactory pm25", rec)
	}
	if rec.Source != SourceManual {
		t.Fatalf("Source = %q, want %q", rec.Source, SourceManual)
	}
	if rec.ID == "" || rec.Timestamp.IsZero() {
		t.Fatal("record must carry an id and a timestamp")
	}
	if len(st.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(st.records))
	}
}

func TestCalculateManualSanitizesInvalidReadings(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(DefaultRegistry(), st, nil, nil)

	// A negative concentration is treated as absent, not as an error.
	rec, err := svc.CalculateManual(context.Background(), Readings{PM25: f(-10)}, "lab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Category != CategoryNoData {
		t.Fatalf("Category = %q, want No Data after sanitizing", rec.Category)
	}
	if rec.Raw[PM25] != nil {
		t.Fatal("sanitized reading must be stored as absent")
	}
}

func TestCalculateManualSurfacesStoreError(t *testing.T) {
	st := &fakeStore{putErr: errors.New("db down")}
	svc := NewService(DefaultRegistry(), st, nil, nil)

	if _, err := svc.CalculateManual(context.Background(), Readings{PM25: f(45)}, ""); err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestFetchCityWithoutAdapter(t *testing.T) {
	svc := NewService(DefaultRegistry(), &fakeStore{}, nil, nil)

	_, err := svc.FetchCity(context.Background(), "Delhi")
	if !IsConfigError(err) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestFetchCityAggregatesAndStores(t *testing.T) {
	st := &fakeStore{}
	lat, lon := 28.6, 77.2
	adapter := &fakeAdapter{
		name:     "fakeprovider",
		taxonomy: TaxonomyCPCB,
		reading: SourceReading{
			Source:    "fakeprovider:Delhi",
			Timestamp: time.Now().UTC(),
			Readings:  Readings{PM25: f(45)},
		},
	}
	resolver := &fakeResolver{target: Target{City: "Delhi", Lat: &lat, Lon: &lon}}
	svc := NewService(DefaultRegistry(), st, resolver, adapter)

	rec, err := svc.FetchCity(context.Background(), "Delhi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.AQI != 75 || rec.Source != "fakeprovider:Delhi" {
		t.Fatalf("record = %+v, want aqi=75 from fakeprovider:Delhi", rec)
	}
	if len(st.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(st.records))
	}
}

func TestFetchCityResolverMiss(t *testing.T) {
	adapter := &fakeAdapter{name: "fakeprovider", taxonomy: TaxonomyCPCB}
	resolver := &fakeResolver{err: ErrTargetNotFound}
	svc := NewService(DefaultRegistry(), &fakeStore{}, resolver, adapter)

	if _, err := svc.FetchCity(context.Background(), "Nowhere"); !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("expected ErrTargetNotFound, got %v", err)
	}
	if adapter.calls != 0 {
		t.Fatal("adapter must not be called when resolution fails")
	}
}

func TestIngestScheduledProviderAQIPath(t *testing.T) {
	st := &fakeStore{}
	index := 120
	adapter := &fakeAdapter{
		name:     "waqi",
		taxonomy: TaxonomyEPA,
		reading: SourceReading{
			Source:      "WAQI:Beijing",
			Readings:    Readings{PM25: f(110), O3: f(40)},
			ProviderAQI: &index,
		},
	}
	svc := NewService(DefaultRegistry(), st, nil, nil)

	if err := svc.IngestScheduled(context.Background(), adapter, Target{City: "Beijing"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := st.records[0]
	if rec.AQI != 120 {
		t.Fatalf("AQI = %d, want provider-supplied 120", rec.AQI)
	}
	if rec.Category != "Unhealthy (Sensitive)" {
		t.Fatalf("Category = %q, want EPA Unhealthy (Sensitive)", rec.Category)
	}
	if rec.Dominant != "pm25" {
		t.Fatalf("Dominant = %q, want pm25 (highest raw value)", rec.Dominant)
	}
}

func TestRecordsLimitClamped(t *testing.T) {
	st := &fakeStore{}
	svc := NewService(DefaultRegistry(), st, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.CalculateManual(context.Background(), Readings{PM25: f(10)}, "a"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	recs, err := svc.Records(context.Background(), Filter{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
}
