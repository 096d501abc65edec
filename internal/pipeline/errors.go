package pipeline

import "errors"

// Structural failures. These abort a run before the first stage; everything
// else degrades to NaN cells and run warnings.
var (
	ErrNoRows      = errors.New("no valid data provided")
	ErrMissingD18O = errors.New("no column in the datasheet has the header d18O")
	ErrTooManyRows = errors.New("too many rows")
	ErrConfig      = errors.New("invalid conversion options")
	ErrStageOrder  = errors.New("stage prerequisite has not run")
)

// IsInvalidInput reports whether err was caused by the caller's sheet or
// options rather than by the service.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrNoRows) ||
		errors.Is(err, ErrMissingD18O) ||
		errors.Is(err, ErrTooManyRows) ||
		errors.Is(err, ErrConfig)
}
