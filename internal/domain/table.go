package domain

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Column names shared by every stage. Input sheets may only carry the first
// four; the rest are produced by the pipeline.
const (
	ColD18O        = "d18O"
	ColAge         = "age"
	ColLat         = "lat"
	ColLong        = "long"
	ColCO3         = "CO3"
	ColD18OCO3     = "d18O_CO3"
	ColPalLat      = "pallat"
	ColPalLong     = "pallong"
	ColTempBenthic = "temp_benthic"
	ColSwGlobal    = "d18Osw_global"
	ColSwSpatial   = "d18Osw_spatial"
	ColSwSpatialN  = "d18Osw_spatial_n"
	ColSwSpatialSD = "d18Osw_spatial_sd"
	ColTempLow     = "temp_2.5"
	ColTemp        = "temp"
	ColTempHigh    = "temp_97.5"
	ColNotes       = "notes"
)

// InputColumns are the headers accepted on an uploaded sheet.
var InputColumns = []string{ColD18O, ColAge, ColLat, ColLong}

// ReportOrder is the canonical left-to-right order of report columns.
var ReportOrder = []string{
	ColD18O, ColAge, ColLat, ColLong, ColPalLat, ColPalLong,
	ColCO3, ColD18OCO3, ColTempBenthic, ColSwGlobal,
	ColSwSpatial, ColSwSpatialN, ColSwSpatialSD,
	ColTempLow, ColTemp, ColTempHigh,
}

// Row is one sample. Index is its position in the input sheet and is the
// only stable identity a row has.
type Row struct {
	Index  int
	values map[string]float64
}

// Get returns the value of col, or NaN when the row has no such column.
func (r *Row) Get(col string) float64 {
	v, ok := r.values[col]
	if !ok {
		return math.NaN()
	}
	return v
}

// Has reports whether the column exists on the row.
func (r *Row) Has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// Table is an ordered set of rows sharing one column schema.
type Table struct {
	columns []string
	rows    []*Row
}

// NewTable creates an empty table with the given schema.
func NewTable(columns ...string) *Table {
	return &Table{columns: slices.Clone(columns)}
}

// Append adds a row. Schema columns missing from values are stored as NaN and
// keys outside the schema are ignored, so every row keeps the same column set.
func (t *Table) Append(values map[string]float64) *Row {
	r := &Row{Index: len(t.rows), values: make(map[string]float64, len(t.columns))}
	for _, c := range t.columns {
		v, ok := values[c]
		if !ok {
			v = math.NaN()
		}
		r.values[c] = v
	}
	t.rows = append(t.rows, r)
	return r
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in input order.
func (t *Table) Rows() []*Row { return t.rows }

// Columns returns a copy of the schema in insertion order.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// HasColumn reports whether col is part of the schema.
func (t *Table) HasColumn(col string) bool { return slices.Contains(t.columns, col) }

// Mutate sets col on every row to fn(row), adding the column to the schema
// when it is new. Rows are visited in order.
func (t *Table) Mutate(col string, fn func(*Row) float64) {
	if !t.HasColumn(col) {
		t.columns = append(t.columns, col)
	}
	for _, r := range t.rows {
		r.values[col] = fn(r)
	}
}

// Fill sets col to the same constant on every row.
func (t *Table) Fill(col string, v float64) {
	t.Mutate(col, func(*Row) float64 { return v })
}

// Set writes a single cell. The column must already be in the schema;
// otherwise the write is dropped.
func (t *Table) Set(index int, col string, v float64) {
	if index < 0 || index >= len(t.rows) || !t.HasColumn(col) {
		return
	}
	t.rows[index].values[col] = v
}

// Values returns a copy of one column in row order.
func (t *Table) Values(col string) []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Get(col)
	}
	return out
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	c := &Table{columns: slices.Clone(t.columns), rows: make([]*Row, len(t.rows))}
	for i, r := range t.rows {
		vals := make(map[string]float64, len(r.values))
		for k, v := range r.values {
			vals[k] = v
		}
		c.rows[i] = &Row{Index: r.Index, values: vals}
	}
	return c
}

// ParseNumber converts a cell to a float. Blank and non-numeric cells are NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
