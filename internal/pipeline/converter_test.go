package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/dataset"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/geo"
	"github.com/couchcryptid/paleotemp-etl/internal/interp"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
	"github.com/couchcryptid/paleotemp-etl/internal/pipeline"
)

// --- fakes ---

type fakeCatalog struct {
	series    map[string]interp.Series
	fields    map[string]geo.Dataset
	ensembles map[string]dataset.Ensemble
}

func seriesKey(record, x, y string) string { return record + "|" + x + "|" + y }

func (c *fakeCatalog) Series(record, x, y string) (interp.Series, error) {
	s, ok := c.series[seriesKey(record, x, y)]
	if !ok {
		return interp.Series{}, fmt.Errorf("%w: curve %q", dataset.ErrNotFound, record)
	}
	return s, nil
}

func (c *fakeCatalog) Field(name string) (geo.Dataset, error) {
	d, ok := c.fields[name]
	if !ok {
		return geo.Dataset{}, fmt.Errorf("%w: field %q", dataset.ErrNotFound, name)
	}
	return d, nil
}

func (c *fakeCatalog) Ensemble(name string) (dataset.Ensemble, error) {
	e, ok := c.ensembles[name]
	if !ok {
		return dataset.Ensemble{}, fmt.Errorf("%w: ensemble %q", dataset.ErrNotFound, name)
	}
	return e, nil
}

type rotateCall struct {
	points []domain.Point
	age    float64
}

type fakeRotator struct {
	mu       sync.Mutex
	calls    []rotateCall
	maxBatch int
	err      error
}

func (r *fakeRotator) MaxBatch() int { return r.maxBatch }

func (r *fakeRotator) Rotate(_ context.Context, points []domain.Point, age float64) ([]domain.Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, rotateCall{points: points, age: age})
	if r.err != nil {
		return nil, r.err
	}
	out := make([]domain.Point, len(points))
	for i, p := range points {
		out[i] = domain.Point{Lat: p.Lat + 1, Lon: p.Lon - 1}
	}
	return out, nil
}

type fakePublisher struct {
	published []*domain.Result
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, res *domain.Result) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, res)
	return nil
}

// --- helpers ---

func testRegistry(t *testing.T) *calibration.Registry {
	t.Helper()
	r, err := calibration.NewRegistry(
		calibration.Calibration{
			Key:        "linear",
			Name:       "T = 16 - 4(δc - δw)",
			References: []string{"Test, A. (2020)"},
			Equation:   calibration.Linear(16, 4, 0),
			Range:      domain.NewRange(-2, 40),
		},
	)
	require.NoError(t, err)
	return r
}

type env struct {
	conv      *pipeline.Converter
	metrics   *observability.Metrics
	rotator   *fakeRotator
	publisher *fakePublisher
	catalog   *fakeCatalog
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		metrics:   observability.NewMetricsForTesting(),
		rotator:   &fakeRotator{maxBatch: 25},
		publisher: &fakePublisher{},
		catalog: &fakeCatalog{
			series:    map[string]interp.Series{},
			fields:    map[string]geo.Dataset{},
			ensembles: map[string]dataset.Ensemble{},
		},
	}
	b := pipeline.NewBuilder(e.catalog, testRegistry(t), e.rotator, 230)
	o := pipeline.NewOrchestrator(discardLogger(), e.metrics)
	e.conv = pipeline.NewConverter(b, o, e.publisher, discardLogger(), e.metrics, 100)
	return e
}

func d18OSheet(values ...float64) *domain.Table {
	t := domain.NewTable(domain.ColD18O)
	for _, v := range values {
		t.Append(map[string]float64{domain.ColD18O: v})
	}
	return t
}

func mustSeries(t *testing.T, name string, xs, ys []float64) interp.Series {
	t.Helper()
	s, err := interp.NewSeries(name, xs, ys)
	require.NoError(t, err)
	return s
}

// --- tests ---

func TestConvert_EndToEndLinearCalibration(t *testing.T) {
	e := newEnv(t)
	opts := pipeline.Options{Calibration: "linear", Ice: "fixed", D18Osw: pipeline.Float(0)}

	res, err := e.conv.Convert(context.Background(), d18OSheet(-1, -2, math.NaN()), opts)
	require.NoError(t, err)

	want := []float64{20, 24, math.NaN()}
	if diff := cmp.Diff(want, res.Table.Values(domain.ColTemp), cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("temp (-want +got):\n%s", diff)
	}
	assert.Equal(t, []domain.RowStatus{domain.StatusOK, domain.StatusOK, domain.StatusMissingOrMalformed}, res.Statuses)
	assert.True(t, res.Warnings.MissingOrMalformed)
	assert.False(t, res.Warnings.OutsideCalibration)
	assert.Equal(t, []string{domain.ColD18O, domain.ColTemp}, res.ReportColumns())
	assert.Equal(t, domain.NewRange(-2, 40), res.Ranges.Temperature)
	assert.Contains(t, res.References, "Test, A. (2020)")

	require.Len(t, e.publisher.published, 1)
	assert.Equal(t, res.RunID, e.publisher.published[0].RunID)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Conversions.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ResultsPublished))
}

func TestConvert_FillsConstantCoordinates(t *testing.T) {
	e := newEnv(t)
	opts := pipeline.Options{Calibration: "linear", Age: pipeline.Float(12), Lat: pipeline.Float(-30)}

	res, err := e.conv.Convert(context.Background(), d18OSheet(-1), opts)
	require.NoError(t, err)

	row := res.Table.Rows()[0]
	assert.Equal(t, 12.0, row.Get(domain.ColAge))
	assert.Equal(t, -30.0, row.Get(domain.ColLat))
	assert.True(t, math.IsNaN(row.Get(domain.ColLong)))
	assert.Equal(t, -30.0, row.Get(domain.ColPalLat), "without rotation paleolatitude is the present latitude")
}

func TestConvert_SheetColumnsWinOverConstants(t *testing.T) {
	e := newEnv(t)
	table := domain.NewTable(domain.ColD18O, domain.ColAge)
	table.Append(map[string]float64{domain.ColD18O: -1, domain.ColAge: 3})

	res, err := e.conv.Convert(context.Background(), table, pipeline.Options{Calibration: "linear", Age: pipeline.Float(50)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Table.Rows()[0].Get(domain.ColAge))
}

func TestConvert_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		table *domain.Table
		opts  pipeline.Options
		want  error
	}{
		{name: "no rows", table: d18OSheet(), opts: pipeline.Options{Calibration: "linear"}, want: pipeline.ErrNoRows},
		{name: "no d18O", table: func() *domain.Table {
			t := domain.NewTable(domain.ColAge)
			t.Append(map[string]float64{domain.ColAge: 1})
			return t
		}(), opts: pipeline.Options{Calibration: "linear"}, want: pipeline.ErrMissingD18O},
		{name: "too many rows", table: d18OSheet(make([]float64, 101)...), opts: pipeline.Options{Calibration: "linear"}, want: pipeline.ErrTooManyRows},
		{name: "unknown calibration", table: d18OSheet(-1), opts: pipeline.Options{Calibration: "nope"}, want: pipeline.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.conv.Convert(context.Background(), tt.table, tt.opts)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, pipeline.IsInvalidInput(err))
			assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.Conversions.WithLabelValues("rejected")))
			assert.Empty(t, e.publisher.published)
		})
	}
}

func TestConvert_PublishFailureIsNotFatal(t *testing.T) {
	e := newEnv(t)
	e.publisher.err = errors.New("broker down")

	res, err := e.conv.Convert(context.Background(), d18OSheet(-1), pipeline.Options{Calibration: "linear"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.PublishErrors))
}

func TestConvert_Readiness(t *testing.T) {
	e := newEnv(t)
	require.Error(t, e.conv.CheckReadiness(context.Background()))

	e.conv.MarkReady()
	require.NoError(t, e.conv.CheckReadiness(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.ConverterReady))
}

func rotationSheet(rows ...[3]float64) *domain.Table {
	t := domain.NewTable(domain.ColD18O, domain.ColAge, domain.ColLat, domain.ColLong)
	for _, r := range rows {
		t.Append(map[string]float64{domain.ColD18O: -1, domain.ColAge: r[0], domain.ColLat: r[1], domain.ColLong: r[2]})
	}
	return t
}

func TestConvert_PlateRotationGroupsByRoundedAge(t *testing.T) {
	e := newEnv(t)
	e.rotator.maxBatch = 2
	table := rotationSheet(
		[3]float64{10.04, 0, 0},
		[3]float64{10.0, 1, 1},
		[3]float64{55.56, 2, 2},
		[3]float64{9.96, 3, 3},
		[3]float64{math.NaN(), 4, 4},
	)

	res, err := e.conv.Convert(context.Background(), table, pipeline.Options{Calibration: "linear", LatLong: "gplates"})
	require.NoError(t, err)

	require.Len(t, e.rotator.calls, 3)
	assert.Equal(t, 10.0, e.rotator.calls[0].age)
	assert.Len(t, e.rotator.calls[0].points, 2)
	assert.Equal(t, 10.0, e.rotator.calls[1].age)
	assert.Len(t, e.rotator.calls[1].points, 1)
	assert.InDelta(t, 55.6, e.rotator.calls[2].age, 1e-9)

	assert.Equal(t, []float64{1, 2, 3, 4}, res.Table.Values(domain.ColPalLat)[:4])
	assert.Equal(t, -1.0, res.Table.Rows()[0].Get(domain.ColPalLong))
	assert.True(t, math.IsNaN(res.Table.Rows()[4].Get(domain.ColPalLat)))
	assert.Equal(t, domain.StatusMissingOrMalformed, res.Statuses[4])
	assert.Equal(t, 230.0, res.Ranges.Age.High)
	assert.Empty(t, res.Warnings.Conversion)
}

func TestConvert_PlateRotationFailureDegrades(t *testing.T) {
	e := newEnv(t)
	e.rotator.err = errors.New("gplates: status 503")

	res, err := e.conv.Convert(context.Background(), rotationSheet([3]float64{10, 0, 0}, [3]float64{20, 5, 5}),
		pipeline.Options{Calibration: "linear", LatLong: "gplates"})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.Table.Rows()[0].Get(domain.ColPalLat)))
	assert.Equal(t, []domain.RowStatus{domain.StatusMissingOrMalformed, domain.StatusMissingOrMalformed}, res.Statuses)
	require.Len(t, res.Warnings.Conversion, 2)
	assert.Contains(t, res.Warnings.Conversion[0], "status 503")
	assert.True(t, res.Table.HasColumn(domain.ColTemp), "later stages still run")
}

func TestConvert_PlateRotationDisabled(t *testing.T) {
	e := newEnv(t)
	b := pipeline.NewBuilder(e.catalog, testRegistry(t), nil, 0)
	_, err := b.Build(pipeline.Options{Calibration: "linear", LatLong: "gplates"})
	require.ErrorIs(t, err, pipeline.ErrConfig)
}

func TestConvert_SeawaterCurve(t *testing.T) {
	e := newEnv(t)
	e.catalog.series[seriesKey("miller", "age_GTS2012", "d18O_sw")] = mustSeries(t, "miller",
		[]float64{0, 10, 20, 70}, []float64{0, -0.2, -0.4, -1})
	table := domain.NewTable(domain.ColD18O, domain.ColAge)
	for _, age := range []float64{5, 20, 80} {
		table.Append(map[string]float64{domain.ColD18O: -1, domain.ColAge: age})
	}

	res, err := e.conv.Convert(context.Background(), table, pipeline.Options{Calibration: "linear", Ice: "miller", Timescale: "GTS2012"})
	require.NoError(t, err)

	sw := res.Table.Values(domain.ColSwGlobal)
	assert.InDelta(t, -0.1, sw[0], 1e-12)
	assert.InDelta(t, -0.4, sw[1], 1e-12)
	assert.True(t, math.IsNaN(sw[2]))

	assert.Equal(t, domain.NewRange(0, 66), res.Ranges.Age)
	assert.Equal(t, 2, res.Digits[domain.ColSwGlobal])
	assert.Contains(t, res.ReportColumns(), domain.ColSwGlobal)
	assert.Equal(t, domain.StatusOK, res.Statuses[0])
	assert.Equal(t, domain.StatusMissingOrMalformed, res.Statuses[2])
	require.Len(t, res.Warnings.Conversion, 1)
	assert.Contains(t, res.Warnings.Conversion[0], "1 row(s) outside")
}

func TestConvert_MissingReferenceDataIsAWarning(t *testing.T) {
	e := newEnv(t)
	table := domain.NewTable(domain.ColD18O, domain.ColAge)
	table.Append(map[string]float64{domain.ColD18O: -1, domain.ColAge: 5})

	res, err := e.conv.Convert(context.Background(), table, pipeline.Options{Calibration: "linear", Ice: "rohling1"})
	require.NoError(t, err)

	assert.True(t, math.IsNaN(res.Table.Rows()[0].Get(domain.ColSwGlobal)))
	assert.True(t, math.IsNaN(res.Table.Rows()[0].Get(domain.ColTemp)))
	assert.Equal(t, domain.StatusMissingOrMalformed, res.Statuses[0])
	require.NotEmpty(t, res.Warnings.Conversion)
	assert.Contains(t, res.Warnings.Conversion[0], "dataset not found")
}

func TestConvert_CarbonateIonFixed(t *testing.T) {
	e := newEnv(t)
	opts := pipeline.Options{Calibration: "linear", CO3: "spero_orb", CO3Record: "fixed", CO3Raw: pipeline.Float(100)}

	res, err := e.conv.Convert(context.Background(), d18OSheet(-1), opts)
	require.NoError(t, err)

	row := res.Table.Rows()[0]
	assert.Equal(t, 100.0, row.Get(domain.ColCO3))
	// −1 − (−0.002·100 + 0.4)
	assert.InDelta(t, -1.2, row.Get(domain.ColD18OCO3), 1e-12)
	assert.InDelta(t, 16+4*1.2, row.Get(domain.ColTemp), 1e-12)
	assert.Contains(t, res.Required, domain.ColCO3)
}

func TestConvert_CarbonateIonRecordNarrowsAge(t *testing.T) {
	e := newEnv(t)
	e.catalog.series[seriesKey("tyrrellzeebe", "age", "CO3")] = mustSeries(t, "tyrrellzeebe",
		[]float64{0, 100}, []float64{200, 100})
	table := domain.NewTable(domain.ColD18O, domain.ColAge)
	table.Append(map[string]float64{domain.ColD18O: -1, domain.ColAge: 50})

	res, err := e.conv.Convert(context.Background(), table,
		pipeline.Options{Calibration: "linear", CO3: "mean", CO3Record: "tyrrellzeebe"})
	require.NoError(t, err)
	assert.Equal(t, 150.0, res.Table.Rows()[0].Get(domain.ColCO3))
	assert.Equal(t, 100.0, res.Ranges.Age.High)
}

func TestConvert_SpatialPatchMean(t *testing.T) {
	e := newEnv(t)
	e.catalog.fields["legrande0"] = geo.Dataset{Samples: []geo.Sample{
		{Lat: 0, Lon: 0, Value: 0.2},
		{Lat: 1, Lon: 1, Value: 0.4},
		{Lat: 30, Lon: 30, Value: 9},
	}}
	table := rotationSheet([3]float64{1, 0.5, 0.5})

	res, err := e.conv.Convert(context.Background(), table,
		pipeline.Options{Calibration: "linear", Spatial: "legrande0", Neighborhood: 2})
	require.NoError(t, err)

	row := res.Table.Rows()[0]
	assert.InDelta(t, 0.3, row.Get(domain.ColSwSpatial), 1e-12)
	assert.Equal(t, 2.0, row.Get(domain.ColSwSpatialN))
	assert.InDelta(t, 0.1, row.Get(domain.ColSwSpatialSD), 1e-12)
	assert.Contains(t, res.ReportColumns(), domain.ColSwSpatialSD)
	assert.InDelta(t, 16-4*(-1-0.3), row.Get(domain.ColTemp), 1e-12)
}

func TestConvert_SpatialNearestTierneyLGMOffset(t *testing.T) {
	e := newEnv(t)
	e.catalog.fields["tierney_lgm"] = geo.Dataset{Samples: []geo.Sample{{Lat: 0, Lon: 0, Value: 1.5}}}

	res, err := e.conv.Convert(context.Background(), rotationSheet([3]float64{0.02, 3, 3}),
		pipeline.Options{Calibration: "linear", Spatial: "tierney_lgm"})
	require.NoError(t, err)
	assert.InDelta(t, 0.45, res.Table.Rows()[0].Get(domain.ColSwSpatial), 1e-12)
	assert.False(t, res.Table.HasColumn(domain.ColSwSpatialN))
}

func TestConvert_ZachosNarrowsLatitude(t *testing.T) {
	e := newEnv(t)
	res, err := e.conv.Convert(context.Background(), rotationSheet([3]float64{1, 30, 0}, [3]float64{1, -30, 0}),
		pipeline.Options{Calibration: "linear", Spatial: "zachos"})
	require.NoError(t, err)

	assert.Equal(t, domain.NewRange(-70, 0), res.Ranges.Latitude)
	assert.Equal(t, domain.StatusOutsideLatRange, res.Statuses[0])
	assert.Equal(t, domain.StatusOK, res.Statuses[1])
	assert.True(t, res.Warnings.OutsideLatitude)
}

func TestConvert_GaskellPolyWithFixedBenthic(t *testing.T) {
	e := newEnv(t)
	res, err := e.conv.Convert(context.Background(), rotationSheet([3]float64{1, 20, 0}),
		pipeline.Options{Calibration: "linear", Spatial: "gaskell_poly", Benthic: "fixed", BenthicRaw: pipeline.Float(10)})
	require.NoError(t, err)

	row := res.Table.Rows()[0]
	assert.Equal(t, 10.0, row.Get(domain.ColTempBenthic))
	assert.InDelta(t, calibration.GaskellPoly(10, 20), row.Get(domain.ColSwSpatial), 1e-12)
	assert.Equal(t, 30.0, res.Ranges.Latitude.High)
	assert.Contains(t, res.ReportColumns(), domain.ColTempBenthic)
}

func TestConvert_GaskellCESMSplineAcrossStates(t *testing.T) {
	e := newEnv(t)
	member := func(v float64) geo.Dataset {
		return geo.Dataset{Samples: []geo.Sample{{Lat: 0, Lon: 0, Value: v}, {Lat: 40, Lon: 40, Value: 99}}}
	}
	e.catalog.ensembles["gaskell"] = dataset.Ensemble{
		Name:    "gaskell",
		States:  []float64{4.2, 5.2, 8.0},
		Members: []geo.Dataset{member(-0.5), member(-0.2), member(0.4)},
	}
	e.catalog.series[seriesKey("rohling2", "age_GTS2020", "temp_benthic")] = mustSeries(t, "rohling2",
		[]float64{0, 1, 2}, []float64{4.2, 5.2, 8.0})
	table := rotationSheet([3]float64{0, 1, 1}, [3]float64{1, 1, 1}, [3]float64{2, 1, 1})

	res, err := e.conv.Convert(context.Background(), table,
		pipeline.Options{Calibration: "linear", Spatial: "gaskell_cesm", GCM: "gaskell", Benthic: "rohling2"})
	require.NoError(t, err)

	want := []float64{-0.5, -0.2, 0.4}
	if diff := cmp.Diff(want, res.Table.Values(domain.ColSwSpatial), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("spatial (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5.3, res.Ranges.Age.High)
	assert.Equal(t, 3, res.Digits[domain.ColTempBenthic])
}

func TestBuild_StageOrder(t *testing.T) {
	e := newEnv(t)
	b := pipeline.NewBuilder(e.catalog, testRegistry(t), e.rotator, 230)

	stages, err := b.Build(pipeline.Options{Calibration: "linear", Spatial: "gaskell_poly", Benthic: "miller"})
	require.NoError(t, err)
	var names []string
	for _, s := range stages {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		pipeline.StageCarbonate,
		pipeline.StagePaleoposition,
		pipeline.StageGlobalSeawater,
		pipeline.StageBenthic,
		pipeline.StageSpatial,
		pipeline.StageCalibration,
	}, names)
	require.NoError(t, pipeline.CheckPlan(stages))

	stages, err = b.Build(pipeline.Options{Calibration: "linear"})
	require.NoError(t, err)
	assert.Len(t, stages, 5, "benthic stage only runs for the Gaskell spatial models")
}

func TestBuild_ConfigErrors(t *testing.T) {
	e := newEnv(t)
	b := pipeline.NewBuilder(e.catalog, testRegistry(t), e.rotator, 230)

	tests := []struct {
		name string
		opts pipeline.Options
	}{
		{name: "empty calibration", opts: pipeline.Options{}},
		{name: "co3 effect without record", opts: pipeline.Options{Calibration: "linear", CO3: "mean"}},
		{name: "co3 fixed without value", opts: pipeline.Options{Calibration: "linear", CO3: "mean", CO3Record: "fixed"}},
		{name: "co3 fixed NaN", opts: pipeline.Options{Calibration: "linear", CO3: "mean", CO3Record: "fixed", CO3Raw: pipeline.Float(math.NaN())}},
		{name: "unknown co3 effect", opts: pipeline.Options{Calibration: "linear", CO3: "coral", CO3Record: "fixed", CO3Raw: pipeline.Float(1)}},
		{name: "unknown co3 record", opts: pipeline.Options{Calibration: "linear", CO3: "mean", CO3Record: "ocean"}},
		{name: "unknown latlong", opts: pipeline.Options{Calibration: "linear", LatLong: "magic"}},
		{name: "fixed seawater without value", opts: pipeline.Options{Calibration: "linear", Ice: "fixed"}},
		{name: "unknown ice record", opts: pipeline.Options{Calibration: "linear", Ice: "cramer4"}},
		{name: "unknown timescale", opts: pipeline.Options{Calibration: "linear", Timescale: "GTS1999"}},
		{name: "gaskell poly without benthic", opts: pipeline.Options{Calibration: "linear", Spatial: "gaskell_poly"}},
		{name: "gaskell cesm fixed benthic NaN", opts: pipeline.Options{Calibration: "linear", Spatial: "gaskell_cesm", GCM: "zhu", Benthic: "fixed"}},
		{name: "unknown benthic", opts: pipeline.Options{Calibration: "linear", Spatial: "gaskell_poly", Benthic: "deep"}},
		{name: "unknown gcm", opts: pipeline.Options{Calibration: "linear", Spatial: "gaskell_cesm", Benthic: "miller", GCM: "hadcm3"}},
		{name: "unknown spatial", opts: pipeline.Options{Calibration: "linear", Spatial: "legrande7"}},
		{name: "negative neighborhood", opts: pipeline.Options{Calibration: "linear", Neighborhood: -1}},
		{name: "unknown metric", opts: pipeline.Options{Calibration: "linear", Metric: "hexagon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(tt.opts)
			require.ErrorIs(t, err, pipeline.ErrConfig)
		})
	}
}

func TestBuild_DefaultRegistryKeys(t *testing.T) {
	e := newEnv(t)
	b := pipeline.NewBuilder(e.catalog, calibration.Default(), nil, 0)
	for _, key := range calibration.Default().Keys() {
		_, err := b.Build(pipeline.Options{Calibration: key})
		require.NoError(t, err, key)
	}
}
