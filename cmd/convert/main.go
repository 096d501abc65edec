// Command convert runs one conversion over a local CSV sheet and writes the
// result without starting the service.
//
// Usage:
//
//	go run ./cmd/convert \
//	  -in samples.csv -calibration kimoneil \
//	  -ice miller -age 12 -lat -30 \
//	  -out result.csv -parquet result.parquet -plot result.png
//
// Reference datasets are read from -data (default DATA_DIR). Rotation and
// logging follow the same environment variables as the service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/couchcryptid/paleotemp-etl/internal/adapter/csvio"
	"github.com/couchcryptid/paleotemp-etl/internal/adapter/gplates"
	pq "github.com/couchcryptid/paleotemp-etl/internal/adapter/parquet"
	chart "github.com/couchcryptid/paleotemp-etl/internal/adapter/plot"
	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/config"
	"github.com/couchcryptid/paleotemp-etl/internal/dataset"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
	"github.com/couchcryptid/paleotemp-etl/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if code != 0 {
		os.Exit(code)
	}
}

// flags holds the parsed command line.
type flags struct {
	in, out, parquet, plot, data string
	opts                         pipeline.Options
}

func optFloat(fs *flag.FlagSet, name, usage string, dst **float64) {
	fs.Func(name, usage, func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	})
}

func parseFlags(args []string, stderr io.Writer, defaultData string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.in, "in", "", "input CSV sheet (required)")
	fs.StringVar(&f.out, "out", "-", "result CSV path, - for stdout")
	fs.StringVar(&f.parquet, "parquet", "", "also write the result as Parquet to this path")
	fs.StringVar(&f.plot, "plot", "", "also render a temperature-vs-age PNG to this path")
	fs.StringVar(&f.data, "data", defaultData, "reference dataset directory holding catalog.json")

	o := &f.opts
	fs.StringVar(&o.Calibration, "calibration", "", "temperature calibration key (required)")
	fs.StringVar(&o.Timescale, "timescale", "", "geological timescale for age-indexed records")
	optFloat(fs, "age", "constant age (Ma) for sheets without an age column", &o.Age)
	optFloat(fs, "lat", "constant latitude for sheets without a lat column", &o.Lat)
	optFloat(fs, "long", "constant longitude for sheets without a long column", &o.Long)
	fs.StringVar(&o.LatLong, "latlong", "", "paleoposition model: none or gplates")
	fs.StringVar(&o.Ice, "ice", "", "global seawater δ¹⁸O correction")
	optFloat(fs, "d18osw", "fixed global seawater δ¹⁸O (‰ VSMOW) for -ice fixed", &o.D18Osw)
	fs.StringVar(&o.Spatial, "spatial", "", "local seawater δ¹⁸O correction")
	fs.StringVar(&o.Benthic, "benthic", "", "benthic temperature record for the Gaskell models")
	optFloat(fs, "benthicraw", "fixed benthic temperature (°C) for -benthic fixed", &o.BenthicRaw)
	fs.StringVar(&o.GCM, "gcm", "", "GCM ensemble for -spatial gaskell_cesm")
	fs.Float64Var(&o.Neighborhood, "neighborhood", 0, "patch half-width in degrees, or radius in km; 0 for nearest point")
	fs.StringVar(&o.Metric, "metric", "", "patch metric: degrees or radius")
	fs.StringVar(&o.CO3, "co3", "", "carbonate-ion effect")
	fs.StringVar(&o.CO3Record, "co3record", "", "carbonate-ion record")
	optFloat(fs, "co3raw", "fixed carbonate-ion concentration (µmol/kg) for -co3record fixed", &o.CO3Raw)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if f.in == "" || o.Calibration == "" {
		fs.Usage()
		return nil, errors.New("-in and -calibration are required")
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	f, err := parseFlags(args, stderr, cfg.DataDir)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	logger := observability.NewLoggerTo(stderr, cfg)
	metrics := observability.NewMetricsForTesting()

	table, err := readSheet(f.in)
	if err != nil {
		fmt.Fprintf(stderr, "read %s: %v\n", f.in, err)
		return 1
	}

	store, err := dataset.Open(f.data, logger)
	if err != nil {
		fmt.Fprintf(stderr, "datasets: %v\n", err)
		return 1
	}

	var rotator domain.Rotator
	if cfg.GPlatesEnabled {
		client := gplates.NewClient(cfg.GPlatesURL, cfg.GPlatesModel, cfg.GPlatesTimeout, cfg.GPlatesBatchSize, logger, metrics)
		rotator = gplates.NewCachedRotator(client, cfg.GPlatesCacheSize, metrics)
	}

	builder := pipeline.NewBuilder(store, calibration.Default(), rotator, cfg.GPlatesMaxAge)
	conv := pipeline.NewConverter(builder, pipeline.NewOrchestrator(logger, metrics), nil, logger, metrics, 0)

	res, err := conv.Convert(ctx, table, f.opts)
	if err != nil {
		fmt.Fprintf(stderr, "convert: %v\n", err)
		return 1
	}

	if err := writeOutputs(f, res, stdout); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	printWarnings(stderr, res)
	return 0
}

func readSheet(path string) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return csvio.ReadTable(file)
}

func writeOutputs(f *flags, res *domain.Result, stdout io.Writer) error {
	if f.out == "-" {
		if err := csvio.WriteResult(stdout, res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	} else if err := writeFile(f.out, res, csvio.WriteResult); err != nil {
		return err
	}
	if f.parquet != "" {
		if err := writeFile(f.parquet, res, pq.Write); err != nil {
			return err
		}
	}
	if f.plot != "" {
		png := func(w io.Writer, res *domain.Result) error {
			return chart.WritePNG(w, res, chart.Width, chart.Height)
		}
		if err := writeFile(f.plot, res, png); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, res *domain.Result, render func(io.Writer, *domain.Result) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(file, res); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func printWarnings(w io.Writer, res *domain.Result) {
	ws := res.Warnings
	checks := []struct {
		set bool
		msg string
	}{
		{ws.MissingOrMalformed, "some rows have missing or malformed numbers"},
		{ws.OutsideAge, fmt.Sprintf("some rows are outside the age range %s Ma", res.Ranges.Age)},
		{ws.OutsideLatitude, fmt.Sprintf("some rows are outside the latitude range %s", res.Ranges.Latitude)},
		{ws.OutsideCalibration, fmt.Sprintf("some temperatures are outside the calibration range %s °C", res.Ranges.Temperature)},
	}
	for _, c := range checks {
		if c.set {
			fmt.Fprintf(w, "warning: %s\n", c.msg)
		}
	}
	for _, msg := range ws.Conversion {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
}
