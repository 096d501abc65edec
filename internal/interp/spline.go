package interp

import (
	"errors"
	"fmt"
	"math"
)

// ErrKnots is returned for knot sets a spline cannot be fitted through.
var ErrKnots = errors.New("invalid spline knots")

// Spline is a fitted natural cubic spline.
type Spline struct {
	xs []float64
	ys []float64
	// Per-segment Hermite shape coefficients.
	a []float64
	b []float64
}

// NewNaturalSpline fits a natural cubic spline (zero second derivative at
// both ends) through the knots. xs must hold at least two strictly increasing
// values; NaN ys are allowed and propagate to every evaluation.
func NewNaturalSpline(xs, ys []float64) (*Spline, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, fmt.Errorf("%w: %d x values but %d y values", ErrKnots, n, len(ys))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: need at least 2 knots, got %d", ErrKnots, n)
	}
	for i := 1; i < n; i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("%w: x values must be strictly increasing at index %d", ErrKnots, i)
		}
	}

	k := knotSlopes(xs, ys)

	s := &Spline{
		xs: append([]float64(nil), xs...),
		ys: append([]float64(nil), ys...),
		a:  make([]float64, n-1),
		b:  make([]float64, n-1),
	}
	for i := 1; i < n; i++ {
		dx := xs[i] - xs[i-1]
		dy := ys[i] - ys[i-1]
		s.a[i-1] = k[i-1]*dx - dy
		s.b[i-1] = -k[i]*dx + dy
	}
	return s, nil
}

// knotSlopes solves the tridiagonal system for the first derivative at every
// knot with the Thomas algorithm. Row i is sub[i]·k[i-1] + diag[i]·k[i] +
// sup[i]·k[i+1] = rhs[i]; the first and last rows carry the natural boundary.
func knotSlopes(xs, ys []float64) []float64 {
	n := len(xs)
	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	rhs := make([]float64, n)

	dx := xs[1] - xs[0]
	sup[0] = 1 / dx
	diag[0] = 2 * sup[0]
	rhs[0] = 3 * (ys[1] - ys[0]) / (dx * dx)

	for i := 1; i < n-1; i++ {
		dx1 := xs[i] - xs[i-1]
		dx2 := xs[i+1] - xs[i]
		sub[i] = 1 / dx1
		sup[i] = 1 / dx2
		diag[i] = 2 * (sub[i] + sup[i])
		dy1 := ys[i] - ys[i-1]
		dy2 := ys[i+1] - ys[i]
		rhs[i] = 3 * (dy1/(dx1*dx1) + dy2/(dx2*dx2))
	}

	dx = xs[n-1] - xs[n-2]
	sub[n-1] = 1 / dx
	diag[n-1] = 2 * sub[n-1]
	rhs[n-1] = 3 * (ys[n-1] - ys[n-2]) / (dx * dx)

	// Forward elimination.
	c := make([]float64, n)
	d := make([]float64, n)
	c[0] = sup[0] / diag[0]
	d[0] = rhs[0] / diag[0]
	for i := 1; i < n; i++ {
		m := diag[i] - c[i-1]*sub[i]
		c[i] = sup[i] / m
		d[i] = (rhs[i] - d[i-1]*sub[i]) / m
	}

	// Back substitution.
	k := make([]float64, n)
	k[n-1] = d[n-1]
	for i := n - 2; i >= 0; i-- {
		k[i] = d[i] - c[i]*k[i+1]
	}
	return k
}

// At evaluates the spline at x. Queries outside the knots extrapolate with
// the cubic of the nearest segment.
func (s *Spline) At(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	n := len(s.xs)
	j := 0
	for ; j < n-2; j++ {
		if x <= s.xs[j+1] {
			break
		}
	}
	t := (x - s.xs[j]) / (s.xs[j+1] - s.xs[j])
	u := 1 - t
	return u*s.ys[j] + t*s.ys[j+1] + t*u*(s.a[j]*u+s.b[j]*t)
}

// FitAndEvaluate fits a natural spline through (xs, ys) and evaluates it at
// every query.
func FitAndEvaluate(xs, ys, queries []float64) ([]float64, error) {
	s, err := NewNaturalSpline(xs, ys)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(queries))
	for i, q := range queries {
		out[i] = s.At(q)
	}
	return out, nil
}
