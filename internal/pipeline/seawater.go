package pipeline

import (
	"context"

	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// globalSeawaterStage sets the ice-volume (global mean) seawater δ¹⁸O term.
type globalSeawaterStage struct {
	key string

	// Constant models set fixed; age-dependent ones set model or rec.
	fixed     float64
	model     func(age float64) float64
	ageHigh   float64
	refs      []string
	rec       *record
	timescale string
	catalog   Catalog
}

func (s *globalSeawaterStage) Name() string       { return StageGlobalSeawater }
func (s *globalSeawaterStage) Requires() []string { return nil }
func (s *globalSeawaterStage) Produces() []string { return []string{domain.ColSwGlobal} }

func (s *globalSeawaterStage) Run(_ context.Context, t *domain.Table, _ *RunContext) (Output, error) {
	var out Output
	out.cite(s.refs...)
	if s.ageHigh > 0 {
		out.narrow(domain.Age, 0, s.ageHigh)
	}

	switch {
	case s.rec != nil:
		s.rec.declare(&out, domain.ColSwGlobal)
		out.require(domain.ColSwGlobal, domain.ColAge)
		out.cite(timescales[s.timescale])
		series, err := s.rec.series(s.catalog, s.timescale)
		if err != nil {
			return out, err
		}
		fillWarn(t, domain.ColSwGlobal, lookup(series, domain.ColAge), s.key, &out)
	case s.model != nil:
		out.require(domain.ColSwGlobal, domain.ColAge)
		out.digits(domain.ColSwGlobal, 2)
		fill(t, domain.ColSwGlobal, closedForm(domain.ColAge, s.model))
	default:
		t.Fill(domain.ColSwGlobal, s.fixed)
	}
	return out, nil
}

// benthicStage supplies the bottom-water temperature the Gaskell spatial
// models are parameterised on.
type benthicStage struct {
	key string

	fixed     float64
	miller    bool
	rec       *record
	timescale string
	catalog   Catalog
}

// millerBenthic converts the Miller et al. (2020) benthic δ¹⁸O and seawater
// columns on the fly.
var millerBenthic = ts("miller", "age", "d18O", 2, 0, 66, refMiller20)

func (s *benthicStage) Name() string       { return StageBenthic }
func (s *benthicStage) Requires() []string { return nil }
func (s *benthicStage) Produces() []string { return []string{domain.ColTempBenthic} }

func (s *benthicStage) Run(_ context.Context, t *domain.Table, _ *RunContext) (Output, error) {
	var out Output
	switch {
	case s.miller:
		millerBenthic.declare(&out, domain.ColTempBenthic)
		out.cite(timescales[s.timescale])
		d18O, err := millerBenthic.series(s.catalog, s.timescale)
		if err != nil {
			return out, err
		}
		sw := iceRecords["miller"]
		d18Osw, err := sw.series(s.catalog, s.timescale)
		if err != nil {
			return out, err
		}
		fillWarn(t, domain.ColTempBenthic, func(r *domain.Row) (float64, error) {
			age := r.Get(domain.ColAge)
			b, err := d18O.Lookup(age)
			if err != nil {
				return b, err
			}
			w, err := d18Osw.Lookup(age)
			if err != nil {
				return w, err
			}
			return calibration.MillerBenthic(b, w), nil
		}, s.key, &out)
	case s.rec != nil:
		s.rec.declare(&out, domain.ColTempBenthic)
		out.cite(timescales[s.timescale])
		series, err := s.rec.series(s.catalog, s.timescale)
		if err != nil {
			return out, err
		}
		fillWarn(t, domain.ColTempBenthic, lookup(series, domain.ColAge), s.key, &out)
	default:
		t.Fill(domain.ColTempBenthic, s.fixed)
	}
	return out, nil
}
