// Package mathutil provides the floating-point primitives shared by the
// table generators: round-half-up, floor-mod and Nyquist folding.
//
// Every product that feeds an addition is converted to float64 explicitly.
// Go permits fusing x*y+z into a single FMA instruction, which
// changes the last bit on arm64 and ppc64 and breaks record-exact output.
package mathutil

import "math"

// RoundHalfUp returns floor(x + 0.5).
//
// For non-negative x this is round-to-nearest with ties rounded up, the
// positive branch of the quantizer.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + roundingBias)
}

// ScaleRound returns floor(x*scale + 0.5) with the product rounded to
// float64 before the bias is added.
func ScaleRound(x, scale float64) float64 {
	return RoundHalfUp(float64(x * scale))
}

// FloorMod returns x - floor(x/m)*m.
//
// For m > 0 the result lies in [0, m), matching floor-division remainder
// semantics rather than the truncating math.Mod. When x is within rounding
// error of a multiple of m the subtraction can land just outside that range;
// such residue is returned as 0.
func FloorMod(x, m float64) float64 {
	r := x - float64(math.Floor(x/m)*m)
	if r < 0 || r >= m {
		return 0
	}
	return r
}

// NyquistFold reflects a frequency in [0, fs) into [0, fs/2].
func NyquistFold(f, fs float64) float64 {
	if f > fs/nyquistDivisor {
		return fs - f
	}
	return f
}

// Alias returns the apparent frequency of a real tone at f after sampling
// at fs: the floor-mod remainder folded about the Nyquist frequency.
func Alias(f, fs float64) float64 {
	return NyquistFold(FloorMod(f, fs), fs)
}
