package crt

import "math"

// Double-precision primitives in the shape the engine links against.
// Fmin/Fmax follow the C semantics: a single NaN operand yields the other
// operand, which is not what math.Min/math.Max do.

// Fabs returns the absolute value of x.
func Fabs(x float64) float64 { return math.Abs(x) }

// Floor returns the largest integer value not greater than x.
func Floor(x float64) float64 { return math.Floor(x) }

// Ceil returns the smallest integer value not less than x.
func Ceil(x float64) float64 { return math.Ceil(x) }

// Sqrt returns the square root of x.
func Sqrt(x float64) float64 { return math.Sqrt(x) }

// Trunc returns x with the fractional part removed.
func Trunc(x float64) float64 { return math.Trunc(x) }

// Round rounds half away from zero.
func Round(x float64) float64 { return math.Round(x) }

// Rint rounds half to even, the default C rounding mode.
func Rint(x float64) float64 { return math.RoundToEven(x) }

// Fmin returns the smaller of x and y, preferring a number over a NaN.
func Fmin(x, y float64) float64 {
	switch {
	case math.IsNaN(x):
		return y
	case math.IsNaN(y):
		return x
	}
	return math.Min(x, y)
}

// Fmax returns the larger of x and y, preferring a number over a NaN.
func Fmax(x, y float64) float64 {
	switch {
	case math.IsNaN(x):
		return y
	case math.IsNaN(y):
		return x
	}
	return math.Max(x, y)
}

// Copysign returns a value with the magnitude of x and the sign of y.
func Copysign(x, y float64) float64 { return math.Copysign(x, y) }

// Signbit reports whether x is negative or negative zero.
func Signbit(x float64) bool { return math.Signbit(x) }

// IsNaN reports whether x is an IEEE 754 "not-a-number".
func IsNaN(x float64) bool { return math.IsNaN(x) }

// IsInf reports whether x is an infinity of either sign.
func IsInf(x float64) bool { return math.IsInf(x, 0) }
