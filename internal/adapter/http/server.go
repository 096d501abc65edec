package http

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/paleotemp-etl/internal/adapter/csvio"
	pq "github.com/couchcryptid/paleotemp-etl/internal/adapter/parquet"
	chart "github.com/couchcryptid/paleotemp-etl/internal/adapter/plot"
	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/pipeline"
)

// MaxBodyBytes caps the size of a conversion request.
const MaxBodyBytes = 8 << 20

// Converter runs conversions and reports whether reference data is loaded.
type Converter interface {
	sharedobs.ReadinessChecker
	Convert(ctx context.Context, table *domain.Table, opts pipeline.Options) (*domain.Result, error)
}

// Server exposes health, readiness, metrics and the conversion API.
type Server struct {
	httpServer *http.Server
	conv       Converter
	registry   *calibration.Registry
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 conversion routes.
func NewServer(addr string, conv Converter, registry *calibration.Registry, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		conv:     conv,
		registry: registry,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(conv))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /v1/calibrations", s.handleCalibrations)
	mux.HandleFunc("POST /v1/convert", s.handleConvert)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type calibrationInfo struct {
	Key        string       `json:"key"`
	Name       string       `json:"name"`
	Range      domain.Range `json:"range"`
	Bands      []string     `json:"bands,omitempty"`
	References []string     `json:"references"`
}

func (s *Server) handleCalibrations(w http.ResponseWriter, _ *http.Request) {
	all := s.registry.All()
	out := make([]calibrationInfo, 0, len(all))
	for _, c := range all {
		info := calibrationInfo{Key: c.Key, Name: c.Name, Range: c.Range.Finite(), References: c.References}
		for _, b := range c.Bands {
			info.Bands = append(info.Bands, b.Column)
		}
		out = append(out, info)
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

// ConvertRequest is the body of POST /v1/convert. Data is the sample sheet
// as CSV text.
type ConvertRequest struct {
	Options pipeline.Options `json:"options"`
	Data    string           `json:"data"`
}

type renderer struct {
	contentType string
	ext         string
	render      func(io.Writer, *domain.Result) error
}

var renderers = map[string]renderer{
	"csv":     {contentType: "text/csv", ext: "csv", render: csvio.WriteResult},
	"parquet": {contentType: "application/vnd.apache.parquet", ext: "parquet", render: pq.Write},
	"png": {contentType: "image/png", ext: "png", render: func(w io.Writer, res *domain.Result) error {
		return chart.WritePNG(w, res, chart.Width, chart.Height)
	}},
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	rnd, ok := renderers[format]
	if format != "" && format != "json" && !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown format %q", format))
		return
	}

	if err := s.conv.CheckReadiness(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	var req ConvertRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	table, err := csvio.ReadTable(strings.NewReader(req.Data))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	res, err := s.conv.Convert(r.Context(), table, req.Options)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("conversion failed", "error", err)
			writeError(w, status, "conversion failed")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	w.Header().Set("X-Run-ID", res.RunID.String())
	if !ok {
		sharedobs.WriteJSON(w, http.StatusOK, res.Summarize())
		return
	}

	var buf bytes.Buffer
	if err := rnd.render(&buf, res); err != nil {
		s.logger.Error("render result failed", "run_id", res.RunID, "format", format, "error", err)
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", rnd.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "paleotemp-"+res.RunID.String()+"."+rnd.ext))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func statusFor(err error) int {
	var parseErr *csv.ParseError
	switch {
	case errors.Is(err, pipeline.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	case pipeline.IsInvalidInput(err), errors.Is(err, csvio.ErrUnexpectedHeader),
		errors.Is(err, csvio.ErrMalformedRow), errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
