package pipeline

import (
	"context"

	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// carbonateStage corrects raw δ¹⁸O for the seawater carbonate-ion effect.
// With no effect selected it copies d18O into d18O_CO3.
type carbonateStage struct {
	effect *calibration.Effect

	// Exactly one of fixed or rec is used when effect is set.
	fixed   float64
	rec     *record
	catalog Catalog
}

func (s *carbonateStage) Name() string       { return StageCarbonate }
func (s *carbonateStage) Requires() []string { return nil }

func (s *carbonateStage) Produces() []string {
	if s.effect == nil {
		return []string{domain.ColD18OCO3}
	}
	return []string{domain.ColCO3, domain.ColD18OCO3}
}

func (s *carbonateStage) Run(_ context.Context, t *domain.Table, _ *RunContext) (Output, error) {
	var out Output
	if s.effect == nil {
		fill(t, domain.ColD18OCO3, closedForm(domain.ColD18O, func(v float64) float64 { return v }))
		return out, nil
	}

	out.require(domain.ColCO3, domain.ColD18OCO3)
	out.digits(domain.ColD18OCO3, 2)
	out.cite(s.effect.References...)

	if s.rec == nil {
		t.Fill(domain.ColCO3, s.fixed)
	} else {
		s.rec.declare(&out, domain.ColCO3)
		out.require(domain.ColAge)
		series, err := s.rec.series(s.catalog, "")
		if err != nil {
			return out, err
		}
		fillWarn(t, domain.ColCO3, lookup(series, domain.ColAge), s.rec.curve, &out)
	}

	effect := *s.effect
	fill(t, domain.ColD18OCO3, func(r *domain.Row) (float64, error) {
		return effect.Correct(r.Get(domain.ColD18O), r.Get(domain.ColCO3)), nil
	})
	return out, nil
}
