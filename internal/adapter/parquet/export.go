// Package parquet exports conversion results as Parquet files through Arrow.
package parquet

import (
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// Column names added next to the report columns.
const (
	ColIndex  = "row"
	ColStatus = "status"
)

// Schema returns the Arrow schema for a result: the row index, one nullable
// float64 per report column, then the row status and notes.
func Schema(res *domain.Result) *arrow.Schema {
	cols := res.ReportColumns()
	fields := make([]arrow.Field, 0, len(cols)+3)
	fields = append(fields, arrow.Field{Name: ColIndex, Type: arrow.PrimitiveTypes.Int64})
	for _, c := range cols {
		fields = append(fields, arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	fields = append(fields,
		arrow.Field{Name: ColStatus, Type: arrow.BinaryTypes.String},
		arrow.Field{Name: domain.ColNotes, Type: arrow.BinaryTypes.String, Nullable: true},
	)
	md := arrow.NewMetadata([]string{"run_id"}, []string{res.RunID.String()})
	return arrow.NewSchema(fields, &md)
}

// Table converts a result into an Arrow table. Undefined cells are null.
// The caller must Release the table.
func Table(res *domain.Result, mem memory.Allocator) arrow.Table {
	schema := Schema(res)
	cols := res.ReportColumns()

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	idx := b.Field(0).(*array.Int64Builder)
	status := b.Field(len(cols) + 1).(*array.StringBuilder)
	notes := b.Field(len(cols) + 2).(*array.StringBuilder)

	for i, row := range res.Table.Rows() {
		idx.Append(int64(row.Index))
		for j, c := range cols {
			fb := b.Field(j + 1).(*array.Float64Builder)
			v := row.Get(c)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				fb.AppendNull()
				continue
			}
			fb.Append(v)
		}
		status.Append(res.Statuses[i].String())
		if n := res.Statuses[i].Note(); n != "" {
			notes.Append(n)
		} else {
			notes.AppendNull()
		}
	}

	rec := b.NewRecord()
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec})
}

// Write streams res to w as a Snappy-compressed Parquet file.
func Write(w io.Writer, res *domain.Result) error {
	tbl := Table(res, memory.DefaultAllocator)
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	fw, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := fw.WriteTable(tbl, max(tbl.NumRows(), 1)); err != nil {
		fw.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write parquet table: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
