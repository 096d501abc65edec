package domain

import "context"

// Point is a geographic position in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Rotator reconstructs present-day positions to where they were at a given
// age (Ma) using a plate-motion model.
type Rotator interface {
	// Rotate returns one paleoposition per input point, in input order.
	// Points the model cannot place come back as NaN coordinates.
	Rotate(ctx context.Context, points []Point, age float64) ([]Point, error)

	// MaxBatch is the largest number of points a single Rotate call accepts.
	// Zero means unlimited.
	MaxBatch() int
}
