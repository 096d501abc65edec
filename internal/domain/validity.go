package domain

import (
	"fmt"
	"math"
)

// Range is a closed interval [Low, High]. Infinite bounds are allowed.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// NewRange builds a Range.
func NewRange(low, high float64) Range { return Range{Low: low, High: high} }

// Unbounded is the range that excludes nothing.
func Unbounded() Range { return Range{Low: math.Inf(-1), High: math.Inf(1)} }

// AtMost is (-Inf, high].
func AtMost(high float64) Range { return Range{Low: math.Inf(-1), High: high} }

// Intersect returns the overlap of r and o. It never widens either operand.
func (r Range) Intersect(o Range) Range {
	return Range{Low: math.Max(r.Low, o.Low), High: math.Min(r.High, o.High)}
}

// Outside reports whether v falls outside the interval. NaN is never
// outside; missing values are classified separately.
func (r Range) Outside(v float64) bool {
	return v < r.Low || v > r.High
}

// Within reports whether r is a subset of o.
func (r Range) Within(o Range) bool {
	return r.Low >= o.Low && r.High <= o.High
}

// Empty reports whether no value can satisfy the range.
func (r Range) Empty() bool { return r.Low > r.High }

// Finite clamps infinite bounds to the largest float, for encodings such as
// JSON that cannot represent infinity.
func (r Range) Finite() Range {
	clamp := func(v float64) float64 {
		switch {
		case math.IsInf(v, 1):
			return math.MaxFloat64
		case math.IsInf(v, -1):
			return -math.MaxFloat64
		}
		return v
	}
	return Range{Low: clamp(r.Low), High: clamp(r.High)}
}

func (r Range) String() string { return fmt.Sprintf("[%g, %g]", r.Low, r.High) }

// Quantity identifies one of the tracked validity ranges.
type Quantity int

const (
	Age Quantity = iota
	Latitude
	Temperature
)

func (q Quantity) String() string {
	switch q {
	case Age:
		return "age"
	case Latitude:
		return "latitude"
	case Temperature:
		return "temperature"
	default:
		return fmt.Sprintf("quantity(%d)", int(q))
	}
}

// Narrowing is a stage's restriction on one quantity.
type Narrowing struct {
	Quantity Quantity
	Range    Range
}

// Narrow is shorthand for building a Narrowing.
func Narrow(q Quantity, low, high float64) Narrowing {
	return Narrowing{Quantity: q, Range: NewRange(low, high)}
}

// Ranges holds the run-wide validity ranges.
type Ranges struct {
	Age         Range `json:"age"`
	Latitude    Range `json:"latitude"`
	Temperature Range `json:"temperature"`
}

// DefaultRanges are the widest physically meaningful bounds: ages from the
// present backwards, the whole globe, and anything above absolute zero.
func DefaultRanges() Ranges {
	return Ranges{
		Age:         NewRange(0, math.Inf(1)),
		Latitude:    NewRange(-90, 90),
		Temperature: NewRange(-273.15, math.Inf(1)),
	}
}

// Apply intersects the matching range with n.
func (rs *Ranges) Apply(n Narrowing) {
	switch n.Quantity {
	case Age:
		rs.Age = rs.Age.Intersect(n.Range)
	case Latitude:
		rs.Latitude = rs.Latitude.Intersect(n.Range)
	case Temperature:
		rs.Temperature = rs.Temperature.Intersect(n.Range)
	}
}

// Get returns the range for q.
func (rs Ranges) Get(q Quantity) Range {
	switch q {
	case Latitude:
		return rs.Latitude
	case Temperature:
		return rs.Temperature
	default:
		return rs.Age
	}
}
