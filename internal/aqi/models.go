package aqi

import (
	"encoding/json"
	"time"
)

// Pollutant identifies one of the recognized pollutants by its canonical id.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	PM10 Pollutant = "pm10"
	CO   Pollutant = "co"
	NO2  Pollutant = "no2"
	SO2  Pollutant = "so2"
	O3   Pollutant = "o3"
	NH3  Pollutant = "nh3"
	PB   Pollutant = "pb"
)

// PriorityOrder is the fixed tie-break order used when selecting the dominant
// pollutant among equal sub-indices. It also enumerates every pollutant the
// service recognizes.
var PriorityOrder = []Pollutant{PM25, PM10, CO, NO2, SO2, O3, NH3, PB}

// Taxonomy selects one of the severity-category scales. Each ingestion path
// uses exactly one; the two are never merged.
type Taxonomy string

const (
	TaxonomyCPCB Taxonomy = "cpcb"
	TaxonomyEPA  Taxonomy = "epa"
)

// Readings maps canonical pollutant ids to measured concentrations in the
// canonical unit for that pollutant. A nil value means "not measured", which
// is distinct from a measured zero and stays distinct through aggregation.
type Readings map[Pollutant]*float64

// Breakpoint is one ordered segment of a pollutant's interpolation table,
// mapping a concentration range onto an index range.
type Breakpoint struct {
	IndexLow  int
	IndexHigh int
	ConcLow   float64
	ConcHigh  float64
}

// Result holds the outcome of a single aggregation.
type Result struct {
	AQI      int
	Category string
	Dominant string
}

// Record is one immutable, time-stamped ingestion outcome. Records are
// created once per ingestion event and never mutated afterwards.
type Record struct {
	ID        string
	Timestamp time.Time // always UTC
	Source    string
	AQI       int
	Category  string
	Dominant  string
	Raw       Readings
}

// recordJSON is the wire shape of a Record: internal fields (ID) are
// stripped and raw readings are flattened into <pollutant>_raw keys.
type recordJSON struct {
	AQI       int       `json:"aqi"`
	Category  string    `json:"category"`
	Dominant  string    `json:"dominantPollutant"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	PM25Raw   *float64  `json:"pm25_raw"`
	PM10Raw   *float64  `json:"pm10_raw"`
	CORaw     *float64  `json:"co_raw"`
	NO2Raw    *float64  `json:"no2_raw"`
	SO2Raw    *float64  `json:"so2_raw"`
	O3Raw     *float64  `json:"o3_raw"`
	NH3Raw    *float64  `json:"nh3_raw"`
	PBRaw     *float64  `json:"pb_raw"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		AQI:       r.AQI,
		Category:  r.Category,
		Dominant:  r.Dominant,
		Source:    r.Source,
		Timestamp: r.Timestamp,
		PM25Raw:   r.Raw[PM25],
		PM10Raw:   r.Raw[PM10],
		CORaw:     r.Raw[CO],
		NO2Raw:    r.Raw[NO2],
		SO2Raw:    r.Raw[SO2],
		O3Raw:     r.Raw[O3],
		NH3Raw:    r.Raw[NH3],
		PBRaw:     r.Raw[PB],
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	r.AQI = w.AQI
	r.Category = w.Category
	r.Dominant = w.Dominant
	r.Source = w.Source
	r.Timestamp = w.Timestamp
	r.Raw = Readings{
		PM25: w.PM25Raw,
		PM10: w.PM10Raw,
		CO:   w.CORaw,
		NO2:  w.NO2Raw,
		SO2:  w.SO2Raw,
		O3:   w.O3Raw,
		NH3:  w.NH3Raw,
		PB:   w.PBRaw,
	}
	return nil
}
