// Package calibration holds the published equations the pipeline can apply:
// temperature calibrations, carbonate-ion effects, and closed-form seawater
// δ¹⁸O models. Each entry is data plus a pure function; the pipeline looks
// entries up by key.
package calibration

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// ErrUnknown is returned for a key that is not registered.
var ErrUnknown = errors.New("unknown calibration")

// Equation converts carbonate δ¹⁸O (‰ VPDB, already CO₃-corrected) and the
// global and local seawater terms (‰ VSMOW) into temperature (°C).
type Equation func(d18Oc, swGlobal, swSpatial float64) float64

// Band is an extra output column, such as a credible-interval bound.
type Band struct {
	Column   string
	Equation Equation
}

// Calibration is one registry entry.
type Calibration struct {
	Key        string
	Name       string
	References []string
	Equation   Equation
	// Range is the temperature span the calibration was fitted over.
	Range domain.Range
	Bands []Band
}

// Registry maps selection keys to calibrations, preserving insertion order.
type Registry struct {
	byKey map[string]Calibration
	order []string
}

// NewRegistry builds a registry. Duplicate keys are an error.
func NewRegistry(cals ...Calibration) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Calibration, len(cals))}
	for _, c := range cals {
		if _, dup := r.byKey[c.Key]; dup {
			return nil, fmt.Errorf("duplicate calibration key %q", c.Key)
		}
		r.byKey[c.Key] = c
		r.order = append(r.order, c.Key)
	}
	return r, nil
}

// Lookup returns the calibration registered under key.
func (r *Registry) Lookup(key string) (Calibration, error) {
	c, ok := r.byKey[key]
	if !ok {
		return Calibration{}, fmt.Errorf("%w %q", ErrUnknown, key)
	}
	return c, nil
}

// Keys lists registered keys in insertion order.
func (r *Registry) Keys() []string { return slices.Clone(r.order) }

// All lists the calibrations in insertion order.
func (r *Registry) All() []Calibration {
	out := make([]Calibration, len(r.order))
	for i, k := range r.order {
		out[i] = r.byKey[k]
	}
	return out
}

// delta is carbonate minus seawater, with the seawater value moved from VSMOW
// to VPDB by subtracting offset.
func delta(d18Oc, swGlobal, swSpatial, offset float64) float64 {
	return d18Oc - (swGlobal + swSpatial - offset)
}

// Linear is T = a − b·Δ.
func Linear(a, b, offset float64) Equation {
	return func(c, g, s float64) float64 {
		return a - b*delta(c, g, s, offset)
	}
}

// Quadratic is T = a − b·Δ + c·Δ².
func Quadratic(a, b, c2, offset float64) Equation {
	return func(c, g, s float64) float64 {
		d := delta(c, g, s, offset)
		return a - b*d + c2*d*d
	}
}

// vpdbToVsmow converts a calcite δ¹⁸O on the VPDB scale to VSMOW.
func vpdbToVsmow(v float64) float64 { return 1.03092*v + 30.92 }

// Fractionation is the 1000·ln(α) form used for biogenic calcite/aragonite
// calibrations: T = a·1000/(b + 1000·ln α) − 273.15, with α built from the
// carbonate value and the seawater value moved to the VPDB scale.
func Fractionation(a, b float64) Equation {
	return func(c, g, s float64) float64 {
		sw := 0.97001*(g+s) - 29.99
		lnAlpha := math.Log((1000 + c) / (1000 + sw))
		return a*1000/(b+1000*lnAlpha) - 273.15
	}
}

// Aragonite is the 1000·ln(α) form with α computed on the VSMOW scale.
func Aragonite(a, b float64) Equation {
	return func(c, g, s float64) float64 {
		lnAlpha := math.Log((1000 + vpdbToVsmow(c)) / (1000 + (g + s)))
		return a*1000/(b+1000*lnAlpha) - 273.15
	}
}
