package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/paleotemp-etl/internal/adapter/http"
	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/pipeline"
)

type fakeConverter struct {
	readyErr error
	err      error
	table    *domain.Table
	opts     pipeline.Options
}

func (f *fakeConverter) CheckReadiness(_ context.Context) error { return f.readyErr }

func (f *fakeConverter) Convert(_ context.Context, table *domain.Table, opts pipeline.Options) (*domain.Result, error) {
	f.table, f.opts = table, opts
	if f.err != nil {
		return nil, f.err
	}
	t := table.Clone()
	t.Mutate(domain.ColTemp, func(r *domain.Row) float64 { return 20 - r.Get(domain.ColD18O) })
	res := domain.NewResult(t)
	res.Required = []string{domain.ColD18O, domain.ColTemp}
	res.Digits = map[string]int{domain.ColTemp: 1}
	res.Ranges.Temperature = domain.NewRange(0, 40)
	for i, r := range t.Rows() {
		if math.IsNaN(r.Get(domain.ColD18O)) {
			res.Statuses[i] = domain.StatusMissingOrMalformed
			res.Warnings.MissingOrMalformed = true
		}
	}
	return res, nil
}

func newTestServer(conv *fakeConverter) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", conv, calibration.Default(), logger)
}

func convertRequest(t *testing.T, query string, opts pipeline.Options, data string) *http.Request {
	t.Helper()
	body, err := json.Marshal(httpadapter.ConvertRequest{Options: opts, Data: data})
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/v1/convert"+query, bytes.NewReader(body))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(&fakeConverter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(&fakeConverter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(&fakeConverter{readyErr: fmt.Errorf("reference datasets are not loaded yet")})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "reference datasets are not loaded yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeConverter{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCalibrationsListsRegistry(t *testing.T) {
	srv := newTestServer(&fakeConverter{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/calibrations", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		Key   string       `json:"key"`
		Name  string       `json:"name"`
		Range domain.Range `json:"range"`
		Bands []string     `json:"bands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, len(calibration.Default().Keys()))

	byKey := make(map[string]int, len(body))
	for i, c := range body {
		byKey[c.Key] = i
	}
	require.Contains(t, byKey, "kimoneil")
	assert.NotEmpty(t, body[byKey["kimoneil"]].Name)
	require.Contains(t, byKey, "bayfox_pooled")
	assert.Equal(t, []string{domain.ColTempLow, domain.ColTempHigh}, body[byKey["bayfox_pooled"]].Bands)
}

func TestConvertReturnsJSONSummary(t *testing.T) {
	conv := &fakeConverter{}
	srv := newTestServer(conv)
	rec := httptest.NewRecorder()
	opts := pipeline.Options{Calibration: "kimoneil", Age: pipeline.Float(12)}

	srv.ServeHTTP(rec, convertRequest(t, "", opts, "d18O\n-1\nx\n"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "kimoneil", conv.opts.Calibration)
	require.NotNil(t, conv.opts.Age)
	assert.Equal(t, 12.0, *conv.opts.Age)
	assert.Equal(t, 2, conv.table.Len())

	var summary domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, rec.Header().Get("X-Run-ID"), summary.RunID)
	assert.Equal(t, []string{domain.ColD18O, domain.ColTemp}, summary.Columns)
	require.Len(t, summary.Rows, 2)
	assert.Equal(t, 21.0, *summary.Rows[0].Values[domain.ColTemp])
	assert.Nil(t, summary.Rows[1].Values[domain.ColTemp])
	assert.Equal(t, domain.StatusMissingOrMalformed, summary.Rows[1].Status)
	assert.True(t, summary.Warnings.MissingOrMalformed)
	assert.Equal(t, 40.0, summary.Ranges.Temperature.High)
	assert.Equal(t, 1, summary.Digits[domain.ColTemp])
}

func TestConvertRendersFormats(t *testing.T) {
	tests := []struct {
		format      string
		contentType string
		check       func(t *testing.T, body []byte)
	}{
		{format: "csv", contentType: "text/csv", check: func(t *testing.T, body []byte) {
			assert.Equal(t, "d18O,temp,notes\n-1,21.0,\nNaN,NaN,Missing or malformed number(s)\n", string(body))
		}},
		{format: "parquet", contentType: "application/vnd.apache.parquet", check: func(t *testing.T, body []byte) {
			assert.True(t, bytes.HasPrefix(body, []byte("PAR1")))
		}},
		{format: "PNG", contentType: "image/png", check: func(t *testing.T, body []byte) {
			assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			srv := newTestServer(&fakeConverter{})
			rec := httptest.NewRecorder()

			srv.ServeHTTP(rec, convertRequest(t, "?format="+tt.format, pipeline.Options{Calibration: "kimoneil"}, "d18O\n-1\nx\n"))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			runID := rec.Header().Get("X-Run-ID")
			require.NotEmpty(t, runID)
			assert.Contains(t, rec.Header().Get("Content-Disposition"), "paleotemp-"+runID+"."+strings.ToLower(tt.format))
			tt.check(t, rec.Body.Bytes())
		})
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name     string
		conv     *fakeConverter
		query    string
		data     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{name: "unknown format", conv: &fakeConverter{}, query: "?format=xlsx", data: "d18O\n1\n", wantCode: http.StatusBadRequest, wantMsg: "unknown format"},
		{name: "not ready", conv: &fakeConverter{readyErr: errors.New("loading")}, data: "d18O\n1\n", wantCode: http.StatusServiceUnavailable, wantMsg: "loading"},
		{name: "malformed body", conv: &fakeConverter{}, body: `{"options":`, wantCode: http.StatusBadRequest, wantMsg: "invalid request body"},
		{name: "unknown field", conv: &fakeConverter{}, body: `{"sheet":"d18O"}`, wantCode: http.StatusBadRequest, wantMsg: "invalid request body"},
		{name: "unexpected header", conv: &fakeConverter{}, data: "d18O,depth\n1,2\n", wantCode: http.StatusBadRequest, wantMsg: "unexpected column header"},
		{name: "row wider than header", conv: &fakeConverter{}, data: "d18O\n1,2\n", wantCode: http.StatusBadRequest, wantMsg: "malformed datasheet row"},
		{name: "broken quoting", conv: &fakeConverter{}, data: "d18O\n\"1\n", wantCode: http.StatusBadRequest},
		{name: "config error", conv: &fakeConverter{err: fmt.Errorf("%w: unknown calibration", pipeline.ErrConfig)}, data: "d18O\n1\n", wantCode: http.StatusBadRequest, wantMsg: "invalid conversion options"},
		{name: "no rows", conv: &fakeConverter{err: pipeline.ErrNoRows}, data: "d18O\n", wantCode: http.StatusBadRequest, wantMsg: "no valid data provided"},
		{name: "too many rows", conv: &fakeConverter{err: fmt.Errorf("%w: 5 rows", pipeline.ErrTooManyRows)}, data: "d18O\n1\n", wantCode: http.StatusRequestEntityTooLarge},
		{name: "internal failure", conv: &fakeConverter{err: errors.New("disk on fire")}, data: "d18O\n1\n", wantCode: http.StatusInternalServerError, wantMsg: "conversion failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(tt.conv)
			rec := httptest.NewRecorder()

			req := convertRequest(t, tt.query, pipeline.Options{Calibration: "kimoneil"}, tt.data)
			if tt.body != "" {
				req = httptest.NewRequest(http.MethodPost, "/v1/convert"+tt.query, strings.NewReader(tt.body))
			}
			srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			msg := decodeError(t, rec)
			assert.NotEmpty(t, msg)
			if tt.wantMsg != "" {
				assert.Contains(t, msg, tt.wantMsg)
			}
			assert.NotContains(t, msg, "disk on fire")
		})
	}
}

func TestConvertRejectsOversizedBody(t *testing.T) {
	srv := newTestServer(&fakeConverter{})
	rec := httptest.NewRecorder()
	data := strings.Repeat("1.0\n", httpadapter.MaxBodyBytes/4+1)

	srv.ServeHTTP(rec, convertRequest(t, "", pipeline.Options{Calibration: "kimoneil"}, data))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestConvertRequiresPost(t *testing.T) {
	srv := newTestServer(&fakeConverter{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
