// Package geo averages or nearest-matches scattered (lat, lon, value)
// observations around a query point.
package geo

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// EarthRadiusKm is the sphere radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Sample is one gridded or scattered observation.
type Sample struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"long"`
	Value float64 `json:"value"`
}

// Dataset is an immutable set of samples.
type Dataset struct {
	Name    string
	Samples []Sample
}

// Metric selects how a patch neighbourhood is measured.
type Metric int

const (
	// Degrees includes samples within ±size degrees of latitude and longitude.
	Degrees Metric = iota
	// Radius includes samples within size km great-circle distance.
	Radius
)

func (m Metric) String() string {
	if m == Radius {
		return "radius"
	}
	return "degrees"
}

// ParseMetric accepts "degrees" (or empty) and "radius".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "degrees", "degree", "square":
		return Degrees, nil
	case "radius", "km":
		return Radius, nil
	default:
		return Degrees, fmt.Errorf("unknown averaging metric %q", s)
	}
}

// Neighborhood is the patch size. A zero or NaN Size selects nearest-point mode.
type Neighborhood struct {
	Size   float64
	Metric Metric
}

// Nearest is the nearest-point neighbourhood.
var Nearest = Neighborhood{}

// Aggregate is the outcome of a spatial lookup.
type Aggregate struct {
	Value  float64
	Count  int
	StdDev float64
}

func emptyAggregate() Aggregate {
	return Aggregate{Value: math.NaN(), StdDev: math.NaN()}
}

// Haversine returns the great-circle distance in km between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Aggregate looks up the dataset around (lat, lon). A NaN coordinate yields
// an empty aggregate.
func (d Dataset) Aggregate(lat, lon float64, n Neighborhood) Aggregate {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return emptyAggregate()
	}
	if math.IsNaN(n.Size) || n.Size <= 0 {
		return d.nearest(lat, lon)
	}
	return d.patch(lat, lon, n)
}

// nearest returns the closest sample; ties go to the first one encountered.
func (d Dataset) nearest(lat, lon float64) Aggregate {
	best := -1
	bestDist := math.Inf(1)
	for i, s := range d.Samples {
		dist := Haversine(lat, lon, s.Lat, s.Lon)
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return emptyAggregate()
	}
	return Aggregate{Value: d.Samples[best].Value, Count: 1, StdDev: math.NaN()}
}

func (d Dataset) patch(lat, lon float64, n Neighborhood) Aggregate {
	var vals []float64
	for _, s := range d.Samples {
		if math.IsNaN(s.Value) || !n.contains(lat, lon, s) {
			continue
		}
		vals = append(vals, s.Value)
	}
	if len(vals) == 0 {
		return emptyAggregate()
	}
	mean, std := stat.PopMeanStdDev(vals, nil)
	return Aggregate{Value: mean, Count: len(vals), StdDev: std}
}

func (n Neighborhood) contains(lat, lon float64, s Sample) bool {
	if n.Metric == Radius {
		return Haversine(lat, lon, s.Lat, s.Lon) <= n.Size
	}
	if math.Abs(lat-s.Lat) > n.Size {
		return false
	}
	d := lon - s.Lon
	return math.Abs(d) <= n.Size || math.Abs(d+360) <= n.Size || math.Abs(d-360) <= n.Size
}
