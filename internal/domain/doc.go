// Package domain models carbonate δ¹⁸O sample tables and the outcome of a
// paleotemperature conversion run.
//
// # Tables
//
// A sheet is a list of rows keyed by column name. Uploaded sheets carry at
// most four columns:
//
//	d18O   carbonate δ¹⁸O (‰ VPDB), required
//	age    sample age in Ma
//	lat    present-day latitude in decimal degrees
//	long   present-day longitude in decimal degrees
//
// Stages append derived columns (d18O_CO3, pallat, pallong, d18Osw_global,
// d18Osw_spatial, temp, ...). Every row always has the same column set, and
// a row's Index is its original position in the sheet.
//
// # Missing values
//
// NaN is the only in-band error signal. A blank or non-numeric cell parses to
// NaN, an interpolation outside a record's domain yields NaN, and a failed
// rotation yields NaN paleocoordinates. Nothing is dropped; the final
// validation pass classifies each row with a [RowStatus].
//
// # Validity ranges
//
// Each correction or calibration is only valid over some span of age,
// paleolatitude and temperature. [Ranges] start at [DefaultRanges] and are
// only ever intersected, so the final ranges are a subset of the defaults
// regardless of stage order.
//
// Rows are classified by the first condition that holds, checked in this
// order:
//
//	required column is NaN           MISSING_OR_MALFORMED
//	age outside the age range        OUTSIDE_AGE_RANGE
//	pallat outside the lat range     OUTSIDE_LAT_RANGE
//	temp outside the temp range      OUTSIDE_CALIBRATION_RANGE
package domain
