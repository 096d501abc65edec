// Package interp implements the two interpolators used by the correction
// pipeline: piecewise-linear lookup over sparse reference records and a
// natural cubic spline through a handful of model states.
package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

var (
	// ErrOutOfDomain is returned when a lookup would have to extrapolate.
	ErrOutOfDomain = errors.New("query outside series domain")
	// ErrGap is returned when a neighbour of the query has no value.
	ErrGap = errors.New("query falls on a gap in the series")
)

// Point is one (x, y) sample of a reference record.
type Point struct {
	X float64
	Y float64
}

// Series is an immutable reference record such as age against seawater δ¹⁸O.
// Points need not be sorted; a NaN Y marks a gap in the source data.
type Series struct {
	Name   string
	Points []Point
}

// NewSeries pairs xs with ys.
func NewSeries(name string, xs, ys []float64) (Series, error) {
	if len(xs) != len(ys) {
		return Series{}, fmt.Errorf("series %s: %d x values but %d y values", name, len(xs), len(ys))
	}
	pts := make([]Point, len(xs))
	for i := range xs {
		pts[i] = Point{X: xs[i], Y: ys[i]}
	}
	return Series{Name: name, Points: pts}, nil
}

// Lookup linearly interpolates y at x.
//
// The floor neighbour is the largest x ≤ the query and the ceiling neighbour
// the smallest x ≥ the query; on duplicate x values the first point wins.
// When either neighbour is missing the result is NaN and ErrOutOfDomain. When
// either neighbour's y is NaN the result is NaN and ErrGap. A NaN query is
// NaN with no error: the row is missing data, not extrapolating.
func (s Series) Lookup(x float64) (float64, error) {
	if math.IsNaN(x) {
		return math.NaN(), nil
	}

	lo, hi := -1, -1
	for i, p := range s.Points {
		if math.IsNaN(p.X) {
			continue
		}
		if p.X <= x && (lo < 0 || p.X > s.Points[lo].X) {
			lo = i
		}
		if p.X >= x && (hi < 0 || p.X < s.Points[hi].X) {
			hi = i
		}
	}
	if lo < 0 || hi < 0 {
		return math.NaN(), fmt.Errorf("%s at %g: %w", s.Name, x, ErrOutOfDomain)
	}

	floor, ceil := s.Points[lo], s.Points[hi]
	if math.IsNaN(floor.Y) || math.IsNaN(ceil.Y) {
		return math.NaN(), fmt.Errorf("%s at %g: %w", s.Name, x, ErrGap)
	}
	if floor.X == ceil.X {
		return floor.Y, nil
	}
	return floor.Y + (ceil.Y-floor.Y)*(x-floor.X)/(ceil.X-floor.X), nil
}

// Domain returns [min x, max x] over the defined x values.
func (s Series) Domain() domain.Range {
	r := domain.Range{Low: math.Inf(1), High: math.Inf(-1)}
	for _, p := range s.Points {
		if math.IsNaN(p.X) {
			continue
		}
		r.Low = math.Min(r.Low, p.X)
		r.High = math.Max(r.High, p.X)
	}
	return r
}
