package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/couchcryptid/paleotemp-etl/internal/domain"
)

// positionStage reconstructs where each sample sat when it formed. Without
// a rotator the present-day coordinates are used unchanged.
type positionStage struct {
	rotator domain.Rotator
	maxAge  float64
}

func (s *positionStage) Name() string       { return StagePaleoposition }
func (s *positionStage) Requires() []string { return nil }
func (s *positionStage) Produces() []string { return []string{domain.ColPalLat, domain.ColPalLong} }

func (s *positionStage) Run(ctx context.Context, t *domain.Table, rc *RunContext) (Output, error) {
	var out Output
	if s.rotator == nil {
		fill(t, domain.ColPalLat, closedForm(domain.ColLat, func(v float64) float64 { return v }))
		fill(t, domain.ColPalLong, closedForm(domain.ColLong, func(v float64) float64 { return v }))
		return out, nil
	}

	out.narrow(domain.Age, math.Inf(-1), s.maxAge)
	out.require(domain.ColAge, domain.ColLat, domain.ColLong, domain.ColPalLat, domain.ColPalLong)
	out.cite(refMuller16, refMuller18)

	t.Fill(domain.ColPalLat, math.NaN())
	t.Fill(domain.ColPalLong, math.NaN())

	for _, g := range groupByAge(t) {
		for _, chunk := range chunks(g.rows, s.rotator.MaxBatch()) {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			points := make([]domain.Point, len(chunk))
			for i, r := range chunk {
				points[i] = domain.Point{Lat: r.Get(domain.ColLat), Lon: r.Get(domain.ColLong)}
			}

			rotated, err := s.rotator.Rotate(ctx, points, g.age)
			if err == nil && len(rotated) != len(points) {
				err = fmt.Errorf("rotator returned %d points for %d", len(rotated), len(points))
			}
			if err != nil {
				if ctx.Err() != nil {
					return out, ctx.Err()
				}
				rc.Logger.Warn("plate rotation failed",
					"age", g.age,
					"points", len(points),
					"error", err,
				)
				out.warn("paleoposition: rotation failed for %d point(s) at %g Ma: %v", len(points), g.age, err)
				continue
			}
			for i, r := range chunk {
				t.Set(r.Index, domain.ColPalLat, rotated[i].Lat)
				t.Set(r.Index, domain.ColPalLong, rotated[i].Lon)
			}
		}
	}
	return out, nil
}

type ageGroup struct {
	age  float64
	rows []*domain.Row
}

// groupByAge buckets rows by age rounded to 0.1 Ma, in order of first
// appearance. Rows without a usable age or position are left out and keep
// NaN coordinates.
func groupByAge(t *domain.Table) []ageGroup {
	var groups []ageGroup
	index := map[float64]int{}
	for _, r := range t.Rows() {
		age, lat, lon := r.Get(domain.ColAge), r.Get(domain.ColLat), r.Get(domain.ColLong)
		if math.IsNaN(age) || math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}
		key := math.Round(age*10) / 10
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ageGroup{age: key})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

// chunks splits rows into batches of at most size. Zero means one batch.
func chunks(rows []*domain.Row, size int) [][]*domain.Row {
	if size <= 0 || len(rows) <= size {
		return [][]*domain.Row{rows}
	}
	var out [][]*domain.Row
	for start := 0; start < len(rows); start += size {
		out = append(out, rows[start:min(start+size, len(rows))])
	}
	return out
}
