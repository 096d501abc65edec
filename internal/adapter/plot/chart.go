// Package plot renders conversion results as a temperature-versus-age chart.
package plot

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// Default canvas size.
const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
)

var (
	validColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	flaggedColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// bandPoints carries the credible interval as error-bar magnitudes.
type bandPoints struct {
	plotter.XYs
	plotter.YErrors
}

// series splits the finite temperature points of res into rows that passed
// validation and rows that were flagged. Without an age column the x axis is
// the row number.
type series struct {
	valid, flagged plotter.XYs
	band           bandPoints
	byAge          bool
}

func collect(res *domain.Result) series {
	s := series{byAge: res.Table.HasColumn(domain.ColAge)}
	hasBand := res.Table.HasColumn(domain.ColTempLow) && res.Table.HasColumn(domain.ColTempHigh)

	for i, row := range res.Table.Rows() {
		x := float64(row.Index + 1)
		if s.byAge {
			x = row.Get(domain.ColAge)
		}
		y := row.Get(domain.ColTemp)
		if !finite(x) || !finite(y) {
			continue
		}
		pt := plotter.XY{X: x, Y: y}
		if res.Statuses[i] == domain.StatusOK {
			s.valid = append(s.valid, pt)
		} else {
			s.flagged = append(s.flagged, pt)
		}

		if !hasBand {
			continue
		}
		lo, hi := row.Get(domain.ColTempLow), row.Get(domain.ColTempHigh)
		if finite(lo) && finite(hi) && lo <= y && y <= hi {
			s.band.XYs = append(s.band.XYs, pt)
			s.band.YErrors = append(s.band.YErrors, struct{ Low, High float64 }{Low: y - lo, High: hi - y})
		}
	}
	return s
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Chart builds the plot for res.
func Chart(res *domain.Result) (*plot.Plot, error) {
	s := collect(res)

	p := plot.New()
	p.Title.Text = "Reconstructed temperature"
	p.X.Label.Text = "Row"
	if s.byAge {
		p.X.Label.Text = "Age (Ma)"
	}
	p.Y.Label.Text = "Temperature (°C)"
	p.Add(plotter.NewGrid())

	if len(s.band.XYs) > 0 {
		bars, err := plotter.NewYErrorBars(s.band)
		if err != nil {
			return nil, fmt.Errorf("credible interval: %w", err)
		}
		bars.Color = color.Gray{Y: 150}
		p.Add(bars)
	}

	for _, set := range []struct {
		label string
		pts   plotter.XYs
		color color.Color
		shape draw.GlyphDrawer
	}{
		{label: "valid", pts: s.valid, color: validColor, shape: draw.CircleGlyph{}},
		{label: "flagged", pts: s.flagged, color: flaggedColor, shape: draw.CrossGlyph{}},
	} {
		if len(set.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(set.pts)
		if err != nil {
			return nil, fmt.Errorf("%s points: %w", set.label, err)
		}
		sc.GlyphStyle.Color = set.color
		sc.GlyphStyle.Shape = set.shape
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(set.label, sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePNG renders the chart for res as a PNG image.
func WritePNG(w io.Writer, res *domain.Result, width, height vg.Length) error {
	p, err := Chart(res)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
