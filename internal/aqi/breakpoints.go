package aqi

// Registry holds one ordered interpolation table per recognized pollutant.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	tables map[Pollutant][]Breakpoint
}

// Lookup returns the breakpoint table for a pollutant, if one is registered.
func (r *Registry) Lookup(p Pollutant) ([]Breakpoint, bool) {
	t, ok := r.tables[p]
	return t, ok
}

// DefaultRegistry builds the CPCB breakpoint tables. Concentrations are in
// µg/m³ for every pollutant except CO, which is in mg/m³.
func DefaultRegistry() *Registry {
	return &Registry{tables: map[Pollutant][]Breakpoint{
		PM25: {
			{0, 50, 0, 30},
			{51, 100, 31, 60},
			{101, 200, 61, 90},
			{201, 300, 91, 120},
			{301, 400, 121, 250},
			{401, 500, 251, 1000},
		},
		PM10: {
			{0, 50, 0, 50},
			{51, 100, 51, 100},
			{101, 200, 101, 250},
			{201, 300, 251, 350},
			{301, 400, 351, 430},
			{401, 500, 431, 2000},
		},
		CO: {
			{0, 50, 0, 1.0},
			{51, 100, 1.1, 2.0},
			{101, 200, 2.1, 10.0},
			{201, 300, 10.1, 17.0},
			{301, 400, 17.1, 34.0},
			{401, 500, 34.1, 100.0},
		},
		O3: {
			{0, 50, 0, 50},
			{51, 100, 51, 100},
			{101, 200, 101, 168},
			{201, 300, 169, 208},
			{301, 400, 209, 748},
			{401, 500, 749, 2000},
		},
		NO2: {
			{0, 50, 0, 40},
			{51, 100, 41, 80},
			{101, 200, 81, 180},
			{201, 300, 181, 280},
			{301, 400, 281, 400},
			{401, 500, 401, 2000},
		},
		SO2: {
			{0, 50, 0, 40},
			{51, 100, 41, 80},
			{101, 200, 81, 380},
			{201, 300, 381, 800},
			{301, 400, 801, 1600},
			{401, 500, 1601, 3000},
		},
		NH3: {
			{0, 50, 0, 200},
			{51, 100, 201, 400},
			{101, 200, 401, 800},
			{201, 300, 801, 1200},
			{301, 400, 1201, 1800},
			{401, 500, 1801, 5000},
		},
		PB: {
			{0, 50, 0, 0.5},
			{51, 100, 0.6, 1.0},
			{101, 200, 1.1, 2.0},
			{201, 300, 2.1, 3.0},
			{301, 400, 3.1, 3.5},
			{401, 500, 3.6, 10.0},
		},
	}}
}
