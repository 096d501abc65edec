package domain

import "fmt"

// RowStatus is the outcome of the final validation pass for one row.
// Values are declared in priority order.
type RowStatus int

const (
	StatusOK RowStatus = iota
	StatusMissingOrMalformed
	StatusOutsideAgeRange
	StatusOutsideLatRange
	StatusOutsideCalibrationRange
)

func (s RowStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMissingOrMalformed:
		return "MISSING_OR_MALFORMED"
	case StatusOutsideAgeRange:
		return "OUTSIDE_AGE_RANGE"
	case StatusOutsideLatRange:
		return "OUTSIDE_LAT_RANGE"
	case StatusOutsideCalibrationRange:
		return "OUTSIDE_CALIBRATION_RANGE"
	default:
		return fmt.Sprintf("RowStatus(%d)", int(s))
	}
}

// Note is the human-readable text shown in the report's notes column.
func (s RowStatus) Note() string {
	switch s {
	case StatusMissingOrMalformed:
		return "Missing or malformed number(s)"
	case StatusOutsideAgeRange:
		return "Outside age range"
	case StatusOutsideLatRange:
		return "Outside latitude range"
	case StatusOutsideCalibrationRange:
		return "Outside calibration range"
	default:
		return ""
	}
}

// MarshalText encodes the status by name.
func (s RowStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *RowStatus) UnmarshalText(b []byte) error {
	for c := StatusOK; c <= StatusOutsideCalibrationRange; c++ {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return fmt.Errorf("unknown row status %q", b)
}
