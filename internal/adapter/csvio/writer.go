package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/shopspring/decimal"
)

// WriteResult renders the report columns of res, one line per input row.
// Columns with declared digits are rounded half away from zero; undefined
// cells are written as NaN. A notes column is appended when any row was
// flagged.
func WriteResult(w io.Writer, res *domain.Result) error {
	cols := res.ReportColumns()
	withNotes := false
	for _, s := range res.Statuses {
		if s.Note() != "" {
			withNotes = true
			break
		}
	}

	header := cols
	if withNotes {
		header = append(append([]string{}, cols...), domain.ColNotes)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range res.Table.Rows() {
		line := make([]string, 0, len(header))
		for _, c := range cols {
			d, ok := res.Digits[c]
			line = append(line, FormatValue(row.Get(c), d, ok))
		}
		if withNotes {
			line = append(line, res.Statuses[i].Note())
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write row %d: %w", row.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatValue renders one cell. When rounded is false the shortest exact
// representation is used.
func FormatValue(v float64, digits int, rounded bool) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	if !rounded {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(int32(digits))
}
