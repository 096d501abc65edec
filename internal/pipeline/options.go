package pipeline

import "math"

// Options selects the corrections and calibration for one run. Empty
// selection keys mean "none". Pointer fields are optional numbers; nil reads
// as NaN.
type Options struct {
	Calibration string `json:"calibration"`
	Timescale   string `json:"timescale,omitempty"`

	// Constant coordinates for sheets without age, lat or long columns.
	Age  *float64 `json:"age,omitempty"`
	Lat  *float64 `json:"lat,omitempty"`
	Long *float64 `json:"long,omitempty"`

	LatLong string `json:"latlong,omitempty"`

	Ice    string   `json:"ice,omitempty"`
	D18Osw *float64 `json:"d18Osw,omitempty"`

	Spatial    string   `json:"spatial,omitempty"`
	Benthic    string   `json:"benthic,omitempty"`
	BenthicRaw *float64 `json:"benthicraw,omitempty"`
	GCM        string   `json:"gcm,omitempty"`
	// Neighborhood is the patch half-width in degrees, or radius in km for
	// the radius metric. Zero selects the nearest grid point.
	Neighborhood float64 `json:"neighborhood,omitempty"`
	Metric       string  `json:"metric,omitempty"`

	CO3       string   `json:"co3,omitempty"`
	CO3Record string   `json:"co3record,omitempty"`
	CO3Raw    *float64 `json:"co3raw,omitempty"`
}

// Float returns a pointer to v, for filling optional numbers.
func Float(v float64) *float64 { return &v }

func value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func orNone(key string) string {
	if key == "" {
		return "none"
	}
	return key
}
