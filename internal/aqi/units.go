package aqi

// Unit conversions used by source adapters to bring provider-native units
// into the canonical units the breakpoint tables expect (µg/m³ everywhere
// except CO, which is mg/m³). All conversions are pure functions.

// MicrogramsToMilligrams converts µg/m³ to mg/m³.
func MicrogramsToMilligrams(ug float64) float64 {
	return ug / 1000.0
}

// PPMToMilligrams converts a mixing ratio in ppm to mg/m³ for a gas with the
// given molar mass (g/mol), assuming 25°C and 1 atm (molar volume 24.45
// L/mol). There is no universal ppm↔mass factor; each adapter supplies the
// molar mass of the gas its provider reports in ppm.
func PPMToMilligrams(ppm, molarMass float64) float64 {
	return ppm * molarMass / 24.45
}

// PPBToMicrograms converts a mixing ratio in ppb to µg/m³ under the same
// reference conditions as PPMToMilligrams.
func PPBToMicrograms(ppb, molarMass float64) float64 {
	return ppb * molarMass / 24.45
}
