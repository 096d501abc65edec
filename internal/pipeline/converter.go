package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
)

// Publisher delivers a finished result downstream.
type Publisher interface {
	Publish(ctx context.Context, res *domain.Result) error
}

// Converter is the service entry point: it completes the sheet from the
// run options, builds the plan, runs it and publishes the result.
type Converter struct {
	builder   *Builder
	orch      *Orchestrator
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	maxRows   int
	ready     atomic.Bool
}

// NewConverter creates a Converter. publisher may be nil. maxRows of zero
// disables the size limit.
func NewConverter(b *Builder, o *Orchestrator, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, maxRows int) *Converter {
	return &Converter{
		builder:   b,
		orch:      o,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		maxRows:   maxRows,
	}
}

// MarkReady flags the converter as able to serve, once reference data is
// loaded.
func (c *Converter) MarkReady() {
	c.ready.Store(true)
	c.metrics.ConverterReady.Set(1)
}

// CheckReadiness returns nil once MarkReady has been called.
func (c *Converter) CheckReadiness(_ context.Context) error {
	if !c.ready.Load() {
		return errors.New("reference datasets are not loaded yet")
	}
	return nil
}

// Convert runs one conversion. table is not modified.
func (c *Converter) Convert(ctx context.Context, table *domain.Table, opts Options) (*domain.Result, error) {
	res, err := c.convert(ctx, table, opts)
	switch {
	case err == nil:
		c.metrics.Conversions.WithLabelValues("success").Inc()
	case IsInvalidInput(err):
		c.metrics.Conversions.WithLabelValues("rejected").Inc()
		c.logger.Info("conversion rejected", "error", err)
		return nil, err
	default:
		c.metrics.Conversions.WithLabelValues("error").Inc()
		c.logger.Error("conversion failed", "error", err)
		return nil, err
	}

	c.logger.Info("conversion complete",
		"run_id", res.RunID,
		"rows", res.Table.Len(),
		"calibration", opts.Calibration,
		"warnings", len(res.Warnings.Conversion),
	)
	c.publish(ctx, res)
	return res, nil
}

func (c *Converter) convert(ctx context.Context, table *domain.Table, opts Options) (*domain.Result, error) {
	if table.Len() == 0 {
		return nil, ErrNoRows
	}
	if c.maxRows > 0 && table.Len() > c.maxRows {
		return nil, fmt.Errorf("%w: %d rows, limit is %d", ErrTooManyRows, table.Len(), c.maxRows)
	}
	if !table.HasColumn(domain.ColD18O) {
		return nil, ErrMissingD18O
	}

	stages, err := c.builder.Build(opts)
	if err != nil {
		return nil, err
	}
	return c.orch.Run(ctx, withDefaults(table, opts), stages)
}

// withDefaults returns table with absent age, lat and long columns filled
// from the options' constants.
func withDefaults(table *domain.Table, opts Options) *domain.Table {
	t := table.Clone()
	defaults := []struct {
		col string
		v   *float64
	}{
		{domain.ColAge, opts.Age},
		{domain.ColLat, opts.Lat},
		{domain.ColLong, opts.Long},
	}
	for _, d := range defaults {
		if !t.HasColumn(d.col) {
			t.Fill(d.col, value(d.v))
		}
	}
	return t
}

func (c *Converter) publish(ctx context.Context, res *domain.Result) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, res); err != nil {
		c.metrics.PublishErrors.Inc()
		c.logger.Warn("publish result failed", "run_id", res.RunID, "error", err)
		return
	}
	c.metrics.ResultsPublished.Inc()
}
