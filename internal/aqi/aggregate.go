package aqi

// Aggregate combines the available pollutant readings into a final index,
// dominant pollutant, and category under the given taxonomy.
//
// Pollutants with a nil reading, or without a table in the registry, are
// skipped rather than zero-filled. When nothing at all could be computed the
// sentinel result {0, "No Data", "N/A"} is returned.
//
// Ties between equal sub-indices resolve to the pollutant that appears first
// in PriorityOrder, so the dominant pollutant is reproducible across runs.
func Aggregate(reg *Registry, readings Readings, tax Taxonomy) Result {
	best := -1
	dominant := DominantNone

	for _, p := range PriorityOrder {
		conc := readings[p]
		if conc == nil {
			continue
		}
		table, ok := reg.Lookup(p)
		if !ok {
			continue
		}
		if sub := ComputeSubIndex(*conc, table); sub > best {
			best = sub
			dominant = string(p)
		}
	}

	if best < 0 {
		return Result{AQI: 0, Category: CategoryNoData, Dominant: DominantNone}
	}
	return Result{AQI: best, Category: Classify(best, tax), Dominant: dominant}
}

// DominantOf returns the pollutant with the highest present raw value,
// breaking ties by PriorityOrder. It serves the ingestion path where the
// provider supplies a pre-computed index but no dominant pollutant.
func DominantOf(readings Readings) string {
	best := DominantNone
	var bestVal float64
	found := false

	for _, p := range PriorityOrder {
		v := readings[p]
		if v == nil {
			continue
		}
		if !found || *v > bestVal {
			found = true
			bestVal = *v
			best = string(p)
		}
	}
	return best
}
