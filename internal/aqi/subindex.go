package aqi

import "math"

// ComputeSubIndex converts a concentration into its sub-index by linear
// interpolation over the pollutant's breakpoint table. Rounding is
// half-away-from-zero (math.Round).
//
// Edge policy: concentrations above the top segment clamp to the top index;
// concentrations matching no segment (negative values, or values falling in
// an undefined gap between segments) yield 0.
func ComputeSubIndex(conc float64, table []Breakpoint) int {
	for _, bp := range table {
		if bp.ConcLow <= conc && conc <= bp.ConcHigh {
			slope := float64(bp.IndexHigh-bp.IndexLow) / (bp.ConcHigh - bp.ConcLow)
			return int(math.Round(slope*(conc-bp.ConcLow) + float64(bp.IndexLow)))
		}
	}

	if n := len(table); n > 0 && conc > table[n-1].ConcHigh {
		return table[n-1].IndexHigh
	}
	return 0
}
