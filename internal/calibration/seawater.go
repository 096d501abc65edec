package calibration

import "math"

// Veizer is the Phanerozoic seawater δ¹⁸O trend of Veizer and Prokoph (2015),
// age in Ma.
func Veizer(age float64) float64 {
	return -0.00003*age*age + 0.0046*age
}

// Zachos is the latitudinal seawater δ¹⁸O relationship of Zachos et al. (1994).
func Zachos(lat float64) float64 {
	a := math.Abs(lat)
	return 0.576 + 0.041*a - 0.0017*a*a + 1.35e-5*a*a*a
}

// hollisBands are median modern upper-50 m seawater δ¹⁸O values in 10° bands
// from 90°S northwards.
var hollisBands = [...]float64{
	-0.26, -0.28, -0.32, -0.31, -0.03, 0.47, 0.59, 0.47, 0.43,
	0.28, 0.27, 0.38, 0.19, -0.47, -0.65, -0.11, -1.78, -1.75,
}

// Hollis returns the band value for the 10° latitude band containing lat,
// after Hollis et al. (2019). Latitudes outside the table are NaN.
func Hollis(lat float64) float64 {
	if math.IsNaN(lat) {
		return math.NaN()
	}
	i := int(math.Floor(lat/10)) + 9
	if i < 0 || i >= len(hollisBands) {
		return math.NaN()
	}
	return hollisBands[i]
}

// GaskellPoly is Eq. S9 of Gaskell et al. (2022): local seawater δ¹⁸O from
// benthic temperature t (°C) and paleolatitude lat.
func GaskellPoly(t, lat float64) float64 {
	return 0.0105*t - 0.000531*t*t + 0.00139*lat - 0.000143*lat*lat -
		0.000439*t*lat + 2.79e-5*t*t*lat - 8.35e-6*t*lat*lat +
		1.78e-7*t*t*lat*lat + 0.415
}

// MillerBenthic converts benthic foraminiferal δ¹⁸O and seawater δ¹⁸O into
// bottom-water temperature with the calibration Miller et al. (2020) used.
func MillerBenthic(d18O, d18Osw float64) float64 {
	return 16.1 - 4.76*(d18O-(d18Osw-0.27))
}
