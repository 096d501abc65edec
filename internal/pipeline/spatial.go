package pipeline

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/geo"
	"github.com/couchcryptid/paleotemp-etl/internal/interp"
)

type spatialMode int

const (
	spatialNone spatialMode = iota
	spatialField
	spatialZachos
	spatialHollis
	spatialGaskellPoly
	spatialGaskellCESM
)

// spatialStage adds the local seawater δ¹⁸O offset at each paleoposition.
type spatialStage struct {
	key          string
	mode         spatialMode
	neighborhood geo.Neighborhood
	field        field
	ensemble     string
	catalog      Catalog
}

func (s *spatialStage) Name() string { return StageSpatial }

func (s *spatialStage) Requires() []string {
	switch s.mode {
	case spatialGaskellPoly, spatialGaskellCESM:
		return []string{StagePaleoposition, StageBenthic}
	default:
		return []string{StagePaleoposition}
	}
}

func (s *spatialStage) patch() bool {
	return s.mode == spatialField && s.neighborhood.Size > 0
}

func (s *spatialStage) Produces() []string {
	if s.patch() {
		return []string{domain.ColSwSpatial, domain.ColSwSpatialN, domain.ColSwSpatialSD}
	}
	return []string{domain.ColSwSpatial}
}

func (s *spatialStage) Run(_ context.Context, t *domain.Table, _ *RunContext) (Output, error) {
	var out Output
	if s.mode == spatialNone {
		t.Fill(domain.ColSwSpatial, 0)
		return out, nil
	}
	out.require(domain.ColSwSpatial, domain.ColLat)
	out.digits(domain.ColSwSpatial, 2)

	switch s.mode {
	case spatialField:
		out.require(domain.ColLong)
		out.cite(s.field.ref)
		return out, s.runField(t, &out)
	case spatialZachos:
		out.narrow(domain.Latitude, -70, 0)
		out.cite(refZachos94)
		fill(t, domain.ColSwSpatial, closedForm(domain.ColPalLat, calibration.Zachos))
	case spatialHollis:
		out.cite(refHollis19)
		fill(t, domain.ColSwSpatial, closedForm(domain.ColPalLat, calibration.Hollis))
	case spatialGaskellPoly:
		out.narrow(domain.Latitude, math.Inf(-1), 30)
		out.require(domain.ColTempBenthic, domain.ColLong, domain.ColAge)
		out.cite(refGaskell)
		fill(t, domain.ColSwSpatial, func(r *domain.Row) (float64, error) {
			return calibration.GaskellPoly(r.Get(domain.ColTempBenthic), r.Get(domain.ColPalLat)), nil
		})
	case spatialGaskellCESM:
		out.require(domain.ColTempBenthic, domain.ColLong, domain.ColAge)
		out.cite(ensembles[s.ensemble]...)
		return out, s.runEnsemble(t)
	}
	return out, nil
}

func (s *spatialStage) runField(t *domain.Table, out *Output) error {
	d, err := s.catalog.Field(s.key)
	if err != nil {
		return err
	}
	aggs := make([]geo.Aggregate, t.Len())
	for i, r := range t.Rows() {
		aggs[i] = d.Aggregate(r.Get(domain.ColPalLat), r.Get(domain.ColPalLong), s.neighborhood)
	}
	t.Mutate(domain.ColSwSpatial, func(r *domain.Row) float64 { return aggs[r.Index].Value + s.field.offset })
	if s.patch() {
		out.require(domain.ColSwSpatialN, domain.ColSwSpatialSD)
		out.digits(domain.ColSwSpatialN, 0)
		out.digits(domain.ColSwSpatialSD, 2)
		t.Mutate(domain.ColSwSpatialN, func(r *domain.Row) float64 { return float64(aggs[r.Index].Count) })
		t.Mutate(domain.ColSwSpatialSD, func(r *domain.Row) float64 { return aggs[r.Index].StdDev })
	}
	return nil
}

// runEnsemble fits one spline across the ensemble's model states per unique
// paleoposition and evaluates it at each row's benthic temperature.
func (s *spatialStage) runEnsemble(t *domain.Table) error {
	e, err := s.catalog.Ensemble(s.ensemble)
	if err != nil {
		return err
	}

	splines := map[string]*interp.Spline{}
	var fitErr error
	t.Mutate(domain.ColSwSpatial, func(r *domain.Row) float64 {
		lat, lon := r.Get(domain.ColPalLat), r.Get(domain.ColPalLong)
		if math.IsNaN(lat) || math.IsNaN(lon) {
			return math.NaN()
		}
		key := strconv.FormatFloat(lat, 'g', -1, 64) + "," + strconv.FormatFloat(lon, 'g', -1, 64)
		sp, ok := splines[key]
		if !ok {
			ys := make([]float64, len(e.Members))
			for i, m := range e.Members {
				ys[i] = m.Aggregate(lat, lon, s.neighborhood).Value
			}
			sp, err = interp.NewNaturalSpline(e.States, ys)
			if err != nil {
				fitErr = err
			}
			splines[key] = sp
		}
		if sp == nil {
			return math.NaN()
		}
		return sp.At(r.Get(domain.ColTempBenthic))
	})
	if fitErr != nil {
		return fmt.Errorf("ensemble %s: %w", s.ensemble, fitErr)
	}
	return nil
}
