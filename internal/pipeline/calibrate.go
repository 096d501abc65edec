package pipeline

import (
	"context"

	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// calibrationStage converts corrected δ¹⁸O to temperature.
type calibrationStage struct {
	cal calibration.Calibration
}

func (s *calibrationStage) Name() string { return StageCalibration }

func (s *calibrationStage) Requires() []string {
	return []string{StageCarbonate, StageGlobalSeawater, StageSpatial}
}

func (s *calibrationStage) Produces() []string {
	cols := []string{domain.ColTemp}
	for _, b := range s.cal.Bands {
		cols = append(cols, b.Column)
	}
	return cols
}

func (s *calibrationStage) Run(_ context.Context, t *domain.Table, _ *RunContext) (Output, error) {
	var out Output
	out.Narrowings = append(out.Narrowings, domain.Narrowing{Quantity: domain.Temperature, Range: s.cal.Range})
	out.cite(s.cal.References...)

	apply := func(eq calibration.Equation) rowFunc {
		return func(r *domain.Row) (float64, error) {
			return eq(r.Get(domain.ColD18OCO3), r.Get(domain.ColSwGlobal), r.Get(domain.ColSwSpatial)), nil
		}
	}
	for _, b := range s.cal.Bands {
		fill(t, b.Column, apply(b.Equation))
		out.require(b.Column)
		out.digits(b.Column, 2)
	}
	fill(t, domain.ColTemp, apply(s.cal.Equation))
	out.require(domain.ColTemp)
	out.digits(domain.ColTemp, 2)
	return out, nil
}
