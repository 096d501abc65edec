// Package dataset loads the static reference records the pipeline reads:
// age-indexed curves (CSV), gridded seawater δ¹⁸O fields and climate-model
// ensembles (JSON). A catalog.json file in the data directory names them.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/paleotemp-etl/internal/geo"
	"github.com/couchcryptid/paleotemp-etl/internal/interp"
)

// ErrNotFound is returned for a dataset the catalog does not list.
var ErrNotFound = errors.New("dataset not found")

// CatalogFile is the index file expected at the root of a data directory.
const CatalogFile = "catalog.json"

// Catalog maps dataset names to files relative to the data directory.
type Catalog struct {
	Curves    map[string]string       `json:"curves"`
	Fields    map[string]FieldSpec    `json:"fields"`
	Ensembles map[string]EnsembleSpec `json:"ensembles"`
}

// FieldSpec describes a JSON array of {lat, lon, <value>} samples.
type FieldSpec struct {
	File  string `json:"file"`
	Value string `json:"value"`
}

// EnsembleSpec describes a JSON array of {lat, lon, "0", "1", ...} rows where
// column i holds the field simulated at States[i].
type EnsembleSpec struct {
	File   string    `json:"file"`
	States []float64 `json:"states"`
}

// Curve is a numeric table read from CSV, such as a sea-level record with
// one age column per timescale.
type Curve struct {
	Name    string
	columns map[string][]float64
	order   []string
}

// Columns lists the curve's headers in file order.
func (c *Curve) Columns() []string { return slices.Clone(c.order) }

// Series pairs two columns as an interpolation series.
func (c *Curve) Series(x, y string) (interp.Series, error) {
	xs, ok := c.columns[x]
	if !ok {
		return interp.Series{}, fmt.Errorf("curve %s: no column %q", c.Name, x)
	}
	ys, ok := c.columns[y]
	if !ok {
		return interp.Series{}, fmt.Errorf("curve %s: no column %q", c.Name, y)
	}
	return interp.NewSeries(c.Name+":"+y, xs, ys)
}

// Ensemble is a set of fields simulated under different boundary states.
type Ensemble struct {
	Name    string
	States  []float64
	Members []geo.Dataset
}

// Store resolves catalog entries, loading each file at most once. Loaded
// datasets are immutable and safe to share across runs.
type Store struct {
	dir    string
	cat    Catalog
	logger *slog.Logger

	mu        sync.Mutex
	curves    map[string]*Curve
	fields    map[string]geo.Dataset
	ensembles map[string]Ensemble
}

// Open reads the catalog in dir. Files are not loaded until first use or
// Preload.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	b, err := os.ReadFile(filepath.Join(dir, CatalogFile))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cat Catalog
	if err := json.Unmarshal(b, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &Store{
		dir:       dir,
		cat:       cat,
		logger:    logger,
		curves:    make(map[string]*Curve),
		fields:    make(map[string]geo.Dataset),
		ensembles: make(map[string]Ensemble),
	}, nil
}

// Preload loads every catalog entry concurrently and fails on the first
// unreadable file.
func (s *Store) Preload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for name := range s.cat.Curves {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Curve(name)
			return err
		})
	}
	for name := range s.cat.Fields {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Field(name)
			return err
		})
	}
	for name := range s.cat.Ensembles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Ensemble(name)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info("reference datasets loaded",
		"curves", len(s.cat.Curves),
		"fields", len(s.cat.Fields),
		"ensembles", len(s.cat.Ensembles),
	)
	return nil
}

// Curve returns the named CSV record.
func (s *Store) Curve(name string) (*Curve, error) {
	s.mu.Lock()
	c, ok := s.curves[name]
	s.mu.Unlock()
	if ok {
		return c, nil
	}

	file, ok := s.cat.Curves[name]
	if !ok {
		return nil, fmt.Errorf("%w: curve %q", ErrNotFound, name)
	}
	f, err := os.Open(filepath.Join(s.dir, file))
	if err != nil {
		return nil, fmt.Errorf("curve %s: %w", name, err)
	}
	defer f.Close()

	c, err = ReadCurve(name, f)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.curves[name] = c
	s.mu.Unlock()
	s.logger.Debug("curve loaded", "name", name, "columns", len(c.order))
	return c, nil
}

// Series is shorthand for Curve(record).Series(x, y).
func (s *Store) Series(record, x, y string) (interp.Series, error) {
	c, err := s.Curve(record)
	if err != nil {
		return interp.Series{}, err
	}
	return c.Series(x, y)
}

// Field returns the named spatial field.
func (s *Store) Field(name string) (geo.Dataset, error) {
	s.mu.Lock()
	d, ok := s.fields[name]
	s.mu.Unlock()
	if ok {
		return d, nil
	}

	spec, ok := s.cat.Fields[name]
	if !ok {
		return geo.Dataset{}, fmt.Errorf("%w: field %q", ErrNotFound, name)
	}
	rows, err := s.readRows(spec.File)
	if err != nil {
		return geo.Dataset{}, fmt.Errorf("field %s: %w", name, err)
	}
	value := spec.Value
	if value == "" {
		value = "d18O"
	}
	d = geo.Dataset{Name: name, Samples: samples(rows, value)}

	s.mu.Lock()
	s.fields[name] = d
	s.mu.Unlock()
	s.logger.Debug("field loaded", "name", name, "samples", len(d.Samples))
	return d, nil
}

// Ensemble returns the named climate-model ensemble.
func (s *Store) Ensemble(name string) (Ensemble, error) {
	s.mu.Lock()
	e, ok := s.ensembles[name]
	s.mu.Unlock()
	if ok {
		return e, nil
	}

	spec, ok := s.cat.Ensembles[name]
	if !ok {
		return Ensemble{}, fmt.Errorf("%w: ensemble %q", ErrNotFound, name)
	}
	if len(spec.States) < 2 {
		return Ensemble{}, fmt.Errorf("ensemble %s: need at least two states, got %d", name, len(spec.States))
	}
	rows, err := s.readRows(spec.File)
	if err != nil {
		return Ensemble{}, fmt.Errorf("ensemble %s: %w", name, err)
	}
	e = Ensemble{Name: name, States: slices.Clone(spec.States)}
	for i := range spec.States {
		e.Members = append(e.Members, geo.Dataset{
			Name:    name + "/" + strconv.Itoa(i),
			Samples: samples(rows, strconv.Itoa(i)),
		})
	}

	s.mu.Lock()
	s.ensembles[name] = e
	s.mu.Unlock()
	s.logger.Debug("ensemble loaded", "name", name, "states", len(e.States), "samples", len(rows))
	return e, nil
}

func (s *Store) readRows(file string) ([]map[string]*float64, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, file))
	if err != nil {
		return nil, err
	}
	var rows []map[string]*float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return rows, nil
}

// samples converts JSON rows to geo samples. Both "lon" and "long" are
// accepted for longitude; null cells become NaN.
func samples(rows []map[string]*float64, value string) []geo.Sample {
	out := make([]geo.Sample, 0, len(rows))
	for _, r := range rows {
		lon := r["lon"]
		if lon == nil {
			lon = r["long"]
		}
		out = append(out, geo.Sample{Lat: deref(r["lat"]), Lon: deref(lon), Value: deref(r[value])})
	}
	return out
}

func deref(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// ReadCurve parses a headed CSV of numeric columns. Blank, NA and NaN cells
// are read as NaN.
func ReadCurve(name string, r io.Reader) (*Curve, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("curve %s: %w", name, err)
	}
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))

	header, _, _ := bytes.Cut(b, []byte("\n"))
	var names []string
	for _, h := range strings.Split(strings.TrimRight(string(header), "\r"), ",") {
		names = append(names, strings.Trim(strings.TrimSpace(h), `"`))
	}
	if len(names) == 0 || names[0] == "" {
		return nil, fmt.Errorf("curve %s: missing header", name)
	}

	fields := make([]arrow.Field, len(names))
	for i, n := range names {
		fields[i] = arrow.Field{Name: n, Type: arrow.PrimitiveTypes.Float64, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	rdr := csv.NewReader(bytes.NewReader(b), schema,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithNullReader(true, "", "NA", "NaN", "nan"),
	)
	defer rdr.Release()

	c := &Curve{Name: name, columns: make(map[string][]float64, len(names)), order: names}
	for _, n := range names {
		c.columns[n] = nil
	}
	for rdr.Next() {
		rec := rdr.Record()
		for i, n := range names {
			col := rec.Column(i).(*array.Float64)
			for j := 0; j < col.Len(); j++ {
				v := math.NaN()
				if col.IsValid(j) {
					v = col.Value(j)
				}
				c.columns[n] = append(c.columns[n], v)
			}
		}
	}
	if err := rdr.Err(); err != nil {
		return nil, fmt.Errorf("curve %s: %w", name, err)
	}
	return c, nil
}
