package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
)

const (
	stateInit     = "init"
	stateValidate = "validate"
	stateDone     = "done"
)

// Orchestrator runs a fixed stage list over a table, narrows the validity
// ranges, and classifies every row. It holds no per-run state and is safe
// for concurrent use.
type Orchestrator struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewOrchestrator creates an Orchestrator with the given observability.
func NewOrchestrator(logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{logger: logger, metrics: metrics}
}

// CheckPlan verifies that every stage's prerequisites run before it.
func CheckPlan(stages []Stage) error {
	seen := make([]string, 0, len(stages))
	for _, s := range stages {
		for _, req := range s.Requires() {
			if !slices.Contains(seen, req) {
				return fmt.Errorf("%w: %s needs %s", ErrStageOrder, s.Name(), req)
			}
		}
		seen = append(seen, s.Name())
	}
	return nil
}

// Run converts a copy of table. The caller's table is left untouched.
//
// Structural problems (no rows, no d18O column, an unordered plan) fail
// before any stage runs. A failing stage becomes a run warning and its
// columns are NaN; the run carries on.
func (o *Orchestrator) Run(ctx context.Context, table *domain.Table, stages []Stage) (*domain.Result, error) {
	if table.Len() == 0 {
		return nil, ErrNoRows
	}
	if !table.HasColumn(domain.ColD18O) {
		return nil, ErrMissingD18O
	}
	if err := CheckPlan(stages); err != nil {
		return nil, err
	}

	start := time.Now()
	res := domain.NewResult(table.Clone())
	res.Required = []string{domain.ColD18O}
	res.References = []string{refTool}
	rc := &RunContext{Logger: o.logger}

	state := stateInit
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.transition(res, &state, s.Name())

		stageStart := time.Now()
		out, err := s.Run(ctx, res.Table, rc)
		o.metrics.StageDuration.WithLabelValues(s.Name()).Observe(time.Since(stageStart).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("stage failed, continuing with NaN",
				"run_id", res.RunID,
				"stage", s.Name(),
				"error", err,
			)
			out.warn("%s: %v", s.Name(), err)
			for _, col := range s.Produces() {
				if !res.Table.HasColumn(col) {
					res.Table.Fill(col, math.NaN())
				}
			}
		}
		apply(res, out)
		rc.Completed = append(rc.Completed, s.Name())
	}

	o.transition(res, &state, stateValidate)
	validate(res)
	o.transition(res, &state, stateDone)

	res.Required = dedupe(res.Required)
	res.References = sortedUnique(res.References)

	o.metrics.RunDuration.Observe(time.Since(start).Seconds())
	o.metrics.RunWarnings.Add(float64(len(res.Warnings.Conversion)))
	for _, st := range res.Statuses {
		o.metrics.RowsByStatus.WithLabelValues(st.String()).Inc()
	}
	return res, nil
}

func (o *Orchestrator) transition(res *domain.Result, state *string, next string) {
	o.logger.Debug("pipeline transition", "run_id", res.RunID, "from", *state, "to", next)
	*state = next
}

func apply(res *domain.Result, out Output) {
	for _, n := range out.Narrowings {
		res.Ranges.Apply(n)
	}
	res.Required = append(res.Required, out.Required...)
	for col, d := range out.Digits {
		res.Digits[col] = d
	}
	res.References = append(res.References, out.References...)
	res.Warnings.Conversion = append(res.Warnings.Conversion, out.Warnings...)
}

// validate assigns each row the first matching status in priority order:
// missing data, then age, then latitude, then temperature.
func validate(res *domain.Result) {
	latCol := domain.ColPalLat
	if !res.Table.HasColumn(latCol) {
		latCol = domain.ColLat
	}
	for i, r := range res.Table.Rows() {
		st := classify(r, res.Required, res.Ranges, latCol)
		res.Statuses[i] = st
		switch st {
		case domain.StatusMissingOrMalformed:
			res.Warnings.MissingOrMalformed = true
		case domain.StatusOutsideAgeRange:
			res.Warnings.OutsideAge = true
		case domain.StatusOutsideLatRange:
			res.Warnings.OutsideLatitude = true
		case domain.StatusOutsideCalibrationRange:
			res.Warnings.OutsideCalibration = true
		}
	}
}

func classify(r *domain.Row, required []string, ranges domain.Ranges, latCol string) domain.RowStatus {
	for _, col := range required {
		if math.IsNaN(r.Get(col)) {
			return domain.StatusMissingOrMalformed
		}
	}
	switch {
	case ranges.Age.Outside(r.Get(domain.ColAge)):
		return domain.StatusOutsideAgeRange
	case ranges.Latitude.Outside(r.Get(latCol)):
		return domain.StatusOutsideLatRange
	case ranges.Temperature.Outside(r.Get(domain.ColTemp)):
		return domain.StatusOutsideCalibrationRange
	}
	return domain.StatusOK
}

func dedupe(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

func sortedUnique(refs []string) []string {
	out := slices.Clone(refs)
	slices.SortFunc(out, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return slices.Compact(out)
}
