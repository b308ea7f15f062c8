package aqi

// Sentinel values used when no sub-index could be computed.
const (
	CategoryNoData = "No Data"
	DominantNone   = "N/A"
)

// band is one tier of a taxonomy: index values up to and including Max
// belong to it.
type band struct {
	Max  int
	Name string
}

// Category tables for the two supported taxonomies. The final entry of each
// scale (beyond the last band) is the open-ended top tier.
var (
	cpcbBands = []band{
		{50, "Good"},
		{100, "Satisfactory"},
		{200, "Moderate"},
		{300, "Poor"},
		{400, "Very Poor"},
	}
	cpcbTop = "Severe"

	epaBands = []band{
		{50, "Good"},
		{100, "Moderate"},
		{150, "Unhealthy (Sensitive)"},
		{200, "Unhealthy"},
		{300, "Very Unhealthy"},
	}
	epaTop = "Hazardous"
)

// Classify maps an index value to its severity tier under the given
// taxonomy. Tier upper bounds are inclusive: an index of exactly 50 lands in
// the lower tier.
func Classify(index int, tax Taxonomy) string {
	bands, top := cpcbBands, cpcbTop
	if tax == TaxonomyEPA {
		bands, top = epaBands, epaTop
	}
	for _, b := range bands {
		if index <= b.Max {
			return b.Name
		}
	}
	return top
}
