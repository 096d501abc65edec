package csvio

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTable_HeaderIsCaseInsensitive(t *testing.T) {
	in := "\xEF\xBB\xBFD18O, Age ,LAT,long\n-1.2,10,-45,20\n\n  \n-0.8, 12 ,n/a,\n"

	tbl, err := ReadTable(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColD18O, domain.ColAge, domain.ColLat, domain.ColLong}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	if diff := cmp.Diff([]float64{-1.2, -0.8}, tbl.Values(domain.ColD18O)); diff != "" {
		t.Errorf("d18O (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{10, 12}, tbl.Values(domain.ColAge)); diff != "" {
		t.Errorf("age (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{-45, math.NaN()}, tbl.Values(domain.ColLat), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("lat (-want +got):\n%s", diff)
	}
	assert.True(t, math.IsNaN(tbl.Rows()[1].Get(domain.ColLong)))
}

func TestReadTable_SingleNumericColumnIsHeaderless(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("-1.5\n-0.25\nbad\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColD18O}, tbl.Columns())
	if diff := cmp.Diff([]float64{-1.5, -0.25, math.NaN()}, tbl.Values(domain.ColD18O), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReadTable_SingleColumnWithHeader(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("d18o\n-1.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ColD18O}, tbl.Columns())
	assert.Equal(t, 1, tbl.Len())
}

func TestReadTable_ShortRowsAndTrailingEmptyHeader(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("d18O,age,\n-1\n-2,5,\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColD18O, domain.ColAge}, tbl.Columns())
	if diff := cmp.Diff([]float64{math.NaN(), 5}, tbl.Values(domain.ColAge), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestReadTable_RejectsUnknownHeaders(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "unknown column", in: "d18O,depth\n-1,100\n"},
		{name: "duplicate column", in: "d18O,AGE,age\n-1,2,3\n"},
		{name: "non-numeric single column", in: "temperature\n12\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.in))
			require.ErrorIs(t, err, ErrUnexpectedHeader)
		})
	}
}

func TestReadTable_RejectsRowsWiderThanHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "extra value", in: "d18O,age\n-1,2\n-2,3,4\n", want: "row 2 has 1 value(s) beyond the 2 column(s)"},
		{name: "headerless sheet", in: "-1\n-2,5\n", want: "row 2 has 1 value(s) beyond the 1 column(s)"},
		{name: "value after an empty cell", in: "d18O\n-1,,7\n", want: "row 1 has 2 value(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(strings.NewReader(tt.in))
			require.ErrorIs(t, err, ErrMalformedRow)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadTable_EmptySheet(t *testing.T) {
	tbl, err := ReadTable(strings.NewReader("\n \n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestReadTable_MalformedQuoting(t *testing.T) {
	_, err := ReadTable(strings.NewReader("d18O\n\"-1\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnexpectedHeader)
}

func TestWriteResult(t *testing.T) {
	tbl := domain.NewTable(domain.ColD18O, domain.ColAge)
	tbl.Append(map[string]float64{domain.ColD18O: -1.2, domain.ColAge: 10})
	tbl.Append(map[string]float64{domain.ColD18O: math.NaN(), domain.ColAge: 12.5})
	tbl.Fill(domain.ColTemp, 0)
	tbl.Set(0, domain.ColTemp, 2.345)
	tbl.Set(1, domain.ColTemp, math.NaN())

	res := domain.NewResult(tbl)
	res.Required = []string{domain.ColD18O, domain.ColAge, domain.ColTemp}
	res.Digits = map[string]int{domain.ColTemp: 2}
	res.Statuses[1] = domain.StatusMissingOrMalformed

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, res))

	want := "d18O,age,temp,notes\n" +
		"-1.2,10,2.35,\n" +
		"NaN,12.5,NaN,Missing or malformed number(s)\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteResult_NoNotesColumnWhenAllRowsOK(t *testing.T) {
	tbl := domain.NewTable(domain.ColD18O)
	tbl.Append(map[string]float64{domain.ColD18O: -1})
	res := domain.NewResult(tbl)
	res.Required = []string{domain.ColD18O}

	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, res))
	assert.Equal(t, "d18O\n-1\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v       float64
		digits  int
		rounded bool
		want    string
	}{
		{v: -0.125, digits: 2, rounded: true, want: "-0.13"},
		{v: 0.125, digits: 2, rounded: true, want: "0.13"},
		{v: 3, digits: 3, rounded: true, want: "3.000"},
		{v: 1.98, digits: 0, rounded: true, want: "2"},
		{v: 0.1, rounded: false, want: "0.1"},
		{v: math.Inf(1), digits: 2, rounded: true, want: "Inf"},
		{v: math.Inf(-1), want: "-Inf"},
		{v: math.NaN(), digits: 2, rounded: true, want: "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.v, tt.digits, tt.rounded), "v=%g digits=%d", tt.v, tt.digits)
	}
}
