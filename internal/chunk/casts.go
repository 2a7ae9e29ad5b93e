package chunk

import "math"

// RkToFloat64 expands an XLSB RkNumber into a float64.
//
// The low two bits are flags: bit 0 set means the value is stored times
// 100 (divide back out); bit 1 set means the remaining 30 bits are a plain
// signed integer rather than the high 32 bits of an IEEE-754 double.
// Grounded on _examples/original_source/rxls/chunk/casts.py::rk_to_f8.
func RkToFloat64(v uint32) float64 {
	isInt := v&0b10 != 0
	div100 := v&0b01 != 0

	raw := v &^ 0b11

	var f float64
	if isInt {
		f = float64(int32(raw) >> 2)
	} else {
		bits := uint64(raw) << 32
		f = math.Float64frombits(bits)
	}
	if div100 {
		f /= 100.0
	}
	return f
}

const (
	// windowsEpochDays1900 is 25569: days from the Excel 1900 epoch (which
	// counts 1900 as a leap year, per spec.md §4.5 P2) to 1970-01-01.
	windowsEpochDays1900 = 25569.0
	msPerDay             = 86_400_000.0
)

// FloatToMsWindowsEpoch converts an Excel serial day count (with fractional
// time-of-day) to Unix milliseconds, per spec.md §4.5 P2: value v days ->
// (v - 25569) * 86_400_000 ms, sub-day precision preserved, no correction
// for the 1900 leap-year bug (matches source-application semantics).
// Values v < 1.0 are time-of-day against the 1970-01-01 epoch date.
func FloatToMsWindowsEpoch(v float64) int64 {
	if v < 1.0 {
		return int64(v * msPerDay)
	}
	return int64((v - windowsEpochDays1900) * msPerDay)
}

// FloatIsIntegerAt reports whether every value in arr, rounded to prec
// decimal places, equals its own truncation — i.e. narrowing to int64
// loses no information (spec.md §4.5 P3).
func FloatIsIntegerAt(arr []float64, prec int) bool {
	scale := math.Pow(10, float64(prec))
	for _, v := range arr {
		rounded := math.Round(v*scale) / scale
		if math.Trunc(rounded) != rounded {
			return false
		}
	}
	return true
}
