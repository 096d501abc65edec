package domain

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Warnings are the run-level flags shown above the result table.
type Warnings struct {
	// One flag per row condition: at least one row was classified that way.
	MissingOrMalformed bool `json:"missing_or_malformed"`
	OutsideAge         bool `json:"outside_age"`
	OutsideLatitude    bool `json:"outside_latitude"`
	OutsideCalibration bool `json:"outside_calibration"`

	// Conversion holds stage-level problems such as a failed rotation call
	// or a curve lookup outside its domain.
	Conversion []string `json:"conversion,omitempty"`
}

// Any reports whether any warning is set.
func (w Warnings) Any() bool {
	return w.MissingOrMalformed || w.OutsideAge || w.OutsideLatitude ||
		w.OutsideCalibration || len(w.Conversion) > 0
}

// Result is the output of one pipeline run.
type Result struct {
	RunID       uuid.UUID
	GeneratedAt time.Time
	Table       *Table
	Statuses    []RowStatus
	Ranges      Ranges
	Warnings    Warnings
	Required    []string
	Digits      map[string]int
	References  []string
}

// NewResult stamps a fresh run ID and the current clock time.
func NewResult(table *Table) *Result {
	return &Result{
		RunID:       uuid.New(),
		GeneratedAt: clock.Now().UTC(),
		Table:       table,
		Statuses:    make([]RowStatus, table.Len()),
		Ranges:      DefaultRanges(),
		Digits:      map[string]int{},
	}
}

// ReportColumns lists the columns to show: the canonical order filtered to
// the required set, followed by any other required columns present.
func (r *Result) ReportColumns() []string {
	var cols []string
	for _, c := range ReportOrder {
		if slices.Contains(r.Required, c) && r.Table.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	for _, c := range r.Required {
		if !slices.Contains(cols, c) && r.Table.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// Record is the serialisable form of one result row. NaN cells are nil.
type Record struct {
	Index  int                 `json:"index"`
	Status RowStatus           `json:"status"`
	Notes  string              `json:"notes,omitempty"`
	Values map[string]*float64 `json:"values"`
}

// Records renders the report columns of every row.
func (r *Result) Records() []Record {
	cols := r.ReportColumns()
	out := make([]Record, 0, r.Table.Len())
	for i, row := range r.Table.Rows() {
		rec := Record{
			Index:  row.Index,
			Status: r.Statuses[i],
			Notes:  r.Statuses[i].Note(),
			Values: make(map[string]*float64, len(cols)),
		}
		for _, c := range cols {
			v := row.Get(c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rec.Values[c] = nil
				continue
			}
			rec.Values[c] = &v
		}
		out = append(out, rec)
	}
	return out
}

// Summary is the JSON envelope published and returned for a run.
type Summary struct {
	RunID       string         `json:"run_id"`
	GeneratedAt string         `json:"generated_at"`
	Columns     []string       `json:"columns"`
	Rows        []Record       `json:"rows"`
	Ranges      Ranges         `json:"ranges"`
	Warnings    Warnings       `json:"warnings"`
	Digits      map[string]int `json:"digits"`
	References  []string       `json:"references"`
}

// Summarize builds the JSON envelope. Infinite range bounds are clamped to
// the largest float so the envelope stays valid JSON.
func (r *Result) Summarize() Summary {
	return Summary{
		RunID:       r.RunID.String(),
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		Columns:     r.ReportColumns(),
		Rows:        r.Records(),
		Ranges: Ranges{
			Age:         r.Ranges.Age.Finite(),
			Latitude:    r.Ranges.Latitude.Finite(),
			Temperature: r.Ranges.Temperature.Finite(),
		},
		Warnings:   r.Warnings,
		Digits:     r.Digits,
		References: r.References,
	}
}
