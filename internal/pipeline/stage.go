package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/interp"
)

// Stage names, in the order the builder emits them.
const (
	StageCarbonate      = "carbonate"
	StagePaleoposition  = "paleoposition"
	StageGlobalSeawater = "global_seawater"
	StageBenthic        = "benthic_temperature"
	StageSpatial        = "spatial_seawater"
	StageCalibration    = "calibration"
)

// Stage is one step of a conversion run.
type Stage interface {
	Name() string
	// Requires lists stages whose columns this stage reads.
	Requires() []string
	// Produces lists the columns the stage writes. When Run fails these are
	// filled with NaN so later stages still see a consistent schema.
	Produces() []string
	// Run adds the stage's columns to t. A returned error is a stage failure:
	// it becomes a run warning, not an aborted run. The Output is honoured
	// either way.
	Run(ctx context.Context, t *domain.Table, rc *RunContext) (Output, error)
}

// RunContext is what a stage can see of the run so far.
type RunContext struct {
	Logger *slog.Logger
	// Completed names the stages that already ran, in order.
	Completed []string
}

// Output is what a stage declares besides its columns.
type Output struct {
	Narrowings []domain.Narrowing
	// Required columns must be numeric for a row to pass validation, and are
	// the ones shown in the report.
	Required   []string
	Digits     map[string]int
	References []string
	Warnings   []string
}

func (o *Output) require(cols ...string) { o.Required = append(o.Required, cols...) }

func (o *Output) narrow(q domain.Quantity, lo, hi float64) {
	o.Narrowings = append(o.Narrowings, domain.Narrow(q, lo, hi))
}

func (o *Output) digits(col string, n int) {
	if o.Digits == nil {
		o.Digits = map[string]int{}
	}
	o.Digits[col] = n
}

func (o *Output) cite(refs ...string) { o.References = append(o.References, refs...) }

func (o *Output) warn(format string, args ...any) {
	o.Warnings = append(o.Warnings, fmt.Sprintf(format, args...))
}

// rowFunc computes one cell. An error marks a lookup outside a record's
// span or on a gap in it; the cell becomes NaN.
type rowFunc func(r *domain.Row) (float64, error)

func closedForm(col string, fn func(float64) float64) rowFunc {
	return func(r *domain.Row) (float64, error) { return fn(r.Get(col)), nil }
}

func lookup(s interp.Series, col string) rowFunc {
	return func(r *domain.Row) (float64, error) { return s.Lookup(r.Get(col)) }
}

// fill writes fn into col and counts rows whose lookup fell outside the
// record and rows whose lookup hit a gap in it.
func fill(t *domain.Table, col string, fn rowFunc) (outside, gaps int) {
	t.Mutate(col, func(r *domain.Row) float64 {
		v, err := fn(r)
		if err != nil {
			switch {
			case errors.Is(err, interp.ErrOutOfDomain):
				outside++
			case errors.Is(err, interp.ErrGap):
				gaps++
			}
			return math.NaN()
		}
		return v
	})
	return outside, gaps
}

// fillWarn is fill plus run warnings for lookups outside or on a gap in the
// record.
func fillWarn(t *domain.Table, col string, fn rowFunc, key string, out *Output) {
	outside, gaps := fill(t, col, fn)
	if outside > 0 {
		out.warn("%s: %d row(s) outside the span of the %s record", col, outside, key)
	}
	if gaps > 0 {
		out.warn("%s: %d row(s) fall on a gap in the %s record", col, gaps, key)
	}
}
