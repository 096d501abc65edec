// Package csvio parses uploaded sample sheets and renders conversion results
// as CSV.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// ErrUnexpectedHeader is returned when a sheet header names a column other
// than d18O, age, lat or long.
var ErrUnexpectedHeader = errors.New("unexpected column header")

// ErrMalformedRow is returned when a data row has more values than the
// header has columns.
var ErrMalformedRow = errors.New("malformed datasheet row")

var bom = []byte{0xEF, 0xBB, 0xBF}

// canonical maps lower-cased header names to column names.
var canonical = func() map[string]string {
	m := make(map[string]string, len(domain.InputColumns))
	for _, c := range domain.InputColumns {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// ReadTable parses a sample sheet. The first non-blank line is the header,
// except for a single-column sheet whose first cell is a number: that sheet
// has no header and its values are δ¹⁸O.
func ReadTable(r io.Reader) (*domain.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	raw = bytes.TrimPrefix(raw, bom)

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sheet: %w", err)
	}

	records = dropBlank(records)
	if len(records) == 0 {
		return domain.NewTable(domain.ColD18O), nil
	}

	var header []string
	if headerless(records) {
		header = []string{domain.ColD18O}
	} else {
		header, err = parseHeader(records[0])
		if err != nil {
			return nil, err
		}
		records = records[1:]
	}

	t := domain.NewTable(header...)
	for n, rec := range records {
		if extra := overflow(rec, len(header)); extra > 0 {
			return nil, fmt.Errorf("%w: row %d has %d value(s) beyond the %d column(s) of the header",
				ErrMalformedRow, n+1, extra, len(header))
		}
		vals := make(map[string]float64, len(header))
		for i, col := range header {
			v := math.NaN()
			if i < len(rec) {
				v = domain.ParseNumber(rec[i])
			}
			vals[col] = v
		}
		t.Append(vals)
	}
	return t, nil
}

// overflow counts the cells past width, ignoring trailing empty cells.
func overflow(rec []string, width int) int {
	n := len(rec)
	for n > width && strings.TrimSpace(rec[n-1]) == "" {
		n--
	}
	return max(n-width, 0)
}

func headerless(records [][]string) bool {
	first := records[0]
	return len(first) == 1 && !math.IsNaN(domain.ParseNumber(first[0]))
}

func parseHeader(rec []string) ([]string, error) {
	// Trailing empty cells from spreadsheet exports are not columns.
	for len(rec) > 0 && strings.TrimSpace(rec[len(rec)-1]) == "" {
		rec = rec[:len(rec)-1]
	}
	seen := make(map[string]bool, len(rec))
	header := make([]string, 0, len(rec))
	for _, cell := range rec {
		name := strings.TrimSpace(cell)
		col, ok := canonical[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w %q: allowed headers are %s",
				ErrUnexpectedHeader, name, strings.Join(domain.InputColumns, ", "))
		}
		if seen[col] {
			return nil, fmt.Errorf("%w: %q appears twice", ErrUnexpectedHeader, col)
		}
		seen[col] = true
		header = append(header, col)
	}
	return header, nil
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		blank := true
		for _, cell := range rec {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out
}
