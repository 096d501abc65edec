package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/geo"
)

// Builder turns Options into the ordered stage list for a run.
type Builder struct {
	catalog  Catalog
	registry *calibration.Registry
	rotator  domain.Rotator
	maxAge   float64
}

// NewBuilder creates a Builder. Pass a nil rotator when plate rotation is
// disabled; rotationMaxAge is the oldest age the rotator's model covers.
func NewBuilder(catalog Catalog, registry *calibration.Registry, rotator domain.Rotator, rotationMaxAge float64) *Builder {
	return &Builder{catalog: catalog, registry: registry, rotator: rotator, maxAge: rotationMaxAge}
}

func configErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Build validates opts and returns the stages in run order: carbonate,
// paleoposition, global seawater, benthic temperature (Gaskell spatial
// models only), spatial seawater, calibration.
func (b *Builder) Build(opts Options) ([]Stage, error) {
	cal, err := b.registry.Lookup(opts.Calibration)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	timescale := opts.Timescale
	if timescale == "" {
		timescale = DefaultTimescale
	}
	if _, ok := timescales[timescale]; !ok {
		return nil, configErr("unknown timescale %q", opts.Timescale)
	}

	carbonate, err := b.carbonate(opts)
	if err != nil {
		return nil, err
	}
	position, err := b.position(opts)
	if err != nil {
		return nil, err
	}
	global, err := b.globalSeawater(opts, timescale)
	if err != nil {
		return nil, err
	}
	spatial, err := b.spatial(opts)
	if err != nil {
		return nil, err
	}

	stages := []Stage{carbonate, position, global}
	if spatial.mode == spatialGaskellPoly || spatial.mode == spatialGaskellCESM {
		benthic, err := b.benthic(opts, timescale)
		if err != nil {
			return nil, err
		}
		stages = append(stages, benthic)
	}
	return append(stages, spatial, &calibrationStage{cal: cal}), nil
}

func (b *Builder) carbonate(opts Options) (*carbonateStage, error) {
	effectKey, recordKey := orNone(opts.CO3), orNone(opts.CO3Record)
	if effectKey == "none" {
		return &carbonateStage{}, nil
	}
	effect, err := calibration.LookupEffect(effectKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	s := &carbonateStage{effect: &effect, catalog: b.catalog}
	switch recordKey {
	case "none":
		return nil, configErr("a carbonate-ion correction needs a [CO3] record")
	case "fixed":
		s.fixed = value(opts.CO3Raw)
		if !finite(s.fixed) {
			return nil, configErr("fixed [CO3] is not a valid number")
		}
	default:
		rec, ok := co3Records[recordKey]
		if !ok {
			return nil, configErr("unknown [CO3] record %q", opts.CO3Record)
		}
		s.rec = &rec
	}
	return s, nil
}

func (b *Builder) position(opts Options) (*positionStage, error) {
	switch orNone(opts.LatLong) {
	case "none":
		return &positionStage{}, nil
	case "gplates":
		if b.rotator == nil {
			return nil, configErr("plate rotation is disabled")
		}
		return &positionStage{rotator: b.rotator, maxAge: b.maxAge}, nil
	default:
		return nil, configErr("unknown paleoposition method %q", opts.LatLong)
	}
}

func (b *Builder) globalSeawater(opts Options, timescale string) (*globalSeawaterStage, error) {
	key := orNone(opts.Ice)
	s := &globalSeawaterStage{key: key}
	switch key {
	case "none":
	case "fixed":
		s.fixed = value(opts.D18Osw)
		if !finite(s.fixed) {
			return nil, configErr("fixed seawater δ18O is not a valid number")
		}
	case "icefree":
		s.fixed = -1
	case "henkes":
		s.fixed, s.ageHigh, s.refs = -0.8, 541, []string{refHenkes}
	case "veizer":
		s.model, s.ageHigh, s.refs = calibration.Veizer, 541, []string{refVeizer}
	default:
		rec, ok := iceRecords[key]
		if !ok {
			return nil, configErr("unknown seawater δ18O record %q", opts.Ice)
		}
		s.rec, s.timescale, s.catalog = &rec, timescale, b.catalog
	}
	return s, nil
}

func (b *Builder) benthic(opts Options, timescale string) (*benthicStage, error) {
	key := orNone(opts.Benthic)
	s := &benthicStage{key: key, timescale: timescale, catalog: b.catalog}
	switch key {
	case "none":
		return nil, configErr("the %s spatial correction needs a benthic temperature record", opts.Spatial)
	case "fixed":
		s.fixed = value(opts.BenthicRaw)
		if !finite(s.fixed) {
			return nil, configErr("fixed benthic temperature is not a valid number")
		}
	case "miller":
		s.miller = true
	default:
		rec, ok := benthicRecords[key]
		if !ok {
			return nil, configErr("unknown benthic temperature record %q", opts.Benthic)
		}
		s.rec = &rec
	}
	return s, nil
}

func (b *Builder) spatial(opts Options) (*spatialStage, error) {
	metric, err := geo.ParseMetric(opts.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if opts.Neighborhood < 0 || math.IsInf(opts.Neighborhood, 0) {
		return nil, configErr("neighborhood must be a non-negative number, got %g", opts.Neighborhood)
	}

	key := orNone(opts.Spatial)
	s := &spatialStage{
		key:          key,
		neighborhood: geo.Neighborhood{Size: opts.Neighborhood, Metric: metric},
		catalog:      b.catalog,
	}
	switch key {
	case "none":
		s.mode = spatialNone
	case "zachos":
		s.mode = spatialZachos
	case "hollis":
		s.mode = spatialHollis
	case "gaskell_poly":
		s.mode = spatialGaskellPoly
	case "gaskell_cesm":
		s.mode = spatialGaskellCESM
		s.ensemble = strings.ToLower(opts.GCM)
		if _, ok := ensembles[s.ensemble]; !ok {
			return nil, configErr("unknown climate model ensemble %q", opts.GCM)
		}
	default:
		f, ok := fields[key]
		if !ok {
			return nil, configErr("unknown spatial seawater correction %q", opts.Spatial)
		}
		s.mode, s.field = spatialField, f
	}
	return s, nil
}
