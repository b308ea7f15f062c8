package aqi

import "testing"

func pm25Table(t *testing.T) []Breakpoint {
	t.Helper()
	table, ok := DefaultRegistry().Lookup(PM25)
	if !ok {
		t.Fatal("expected pm25 table in default registry")
	}
	return table
}

func TestComputeSubIndexInterpolation(t *testing.T) {
	table := pm25Table(t)

	// 45 µg/m³ falls in segment (51,100,31,60):
	// round(49/29*(45-31)+51) = round(74.655...) = 75.
	if got := ComputeSubIndex(45, table); got != 75 {
		t.Fatalf("ComputeSubIndex(45) = %d, want 75", got)
	}
}

func TestComputeSubIndexSegmentBoundaries(t *testing.T) {
	table := pm25Table(t)

	tests := []struct {
		conc float64
		want int
	}{
		{0, 0},    // first segment lower bound
		{30, 50},  // first segment upper bound
		{31, 51},  // second segment lower bound
		{60, 100}, // second segment upper bound
		{1000, 500},
	}
	for _, tt := range tests {
		if got := ComputeSubIndex(tt.conc, table); got != tt.want {
			t.Errorf("ComputeSubIndex(%v) = %d, want %d", tt.conc, got, tt.want)
		}
	}
}

func TestComputeSubIndexAboveTopClamps(t *testing.T) {
	table := pm25Table(t)
	if got := ComputeSubIndex(5000, table); got != 500 {
		t.Fatalf("ComputeSubIndex(5000) = %d, want clamp to 500", got)
	}
}

func TestComputeSubIndexNoMatchPolicy(t *testing.T) {
	// Negative values and undefined gaps both yield 0. This conflates
	// "below range" with "invalid", but it is the pinned policy.
	table := pm25Table(t)
	if got := ComputeSubIndex(-5, table); got != 0 {
		t.Fatalf("ComputeSubIndex(-5) = %d, want 0", got)
	}

	coTable, ok := DefaultRegistry().Lookup(CO)
	if !ok {
		t.Fatal("expected co table in default registry")
	}
	// 1.05 mg/m³ sits in the gap between segments (…,1.0) and (1.1,…).
	if got := ComputeSubIndex(1.05, coTable); got != 0 {
		t.Fatalf("ComputeSubIndex(1.05) = %d, want 0 for gap", got)
	}
}

func TestComputeSubIndexMonotonic(t *testing.T) {
	reg := DefaultRegistry()
	for _, p := range PriorityOrder {
		table, ok := reg.Lookup(p)
		if !ok {
			t.Fatalf("missing table for %s", p)
		}

		// Sample inside each segment; gaps between segments are outside the
		// covered domain and excluded from the invariant.
		prev := -1
		for _, seg := range table {
			step := (seg.ConcHigh - seg.ConcLow) / 50
			for c := seg.ConcLow; c <= seg.ConcHigh; c += step {
				cur := ComputeSubIndex(c, table)
				if cur < prev {
					t.Fatalf("%s: sub-index decreased from %d to %d at conc %v", p, prev, cur, c)
				}
				prev = cur
			}
		}
	}
}
