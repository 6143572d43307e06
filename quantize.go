package lotable

import (
	"fmt"
	"math"

	"github.com/tphakala/go-lotable/internal/mathutil"
)

// QuantizationConfig selects the fixed-point representation of table values.
type QuantizationConfig struct {
	// ScaleFactor is the integer code representing +1.0 (full scale).
	ScaleFactor int

	// IntegerOutput returns the integer codes instead of rescaling them
	// back to [-1, 1].
	IntegerOutput bool
}

// DefaultQuantization returns the 18-bit full-scale real-valued configuration.
func DefaultQuantization() QuantizationConfig {
	return QuantizationConfig{ScaleFactor: DefaultScaleFactor}
}

// Validate checks that the scale factor is positive.
func (q QuantizationConfig) Validate() error {
	if q.ScaleFactor <= 0 {
		return fmt.Errorf("%w: scale factor must be positive, got %d", ErrInvalidConfig, q.ScaleFactor)
	}
	return nil
}

// Code returns the signed fixed-point code for x in [-1, 1].
//
// The magnitude is rounded half-up and the sign reapplied, so
// Code(-x) == -Code(x) for every x.
func (q QuantizationConfig) Code(x float64) int64 {
	sign := int64(1)
	if x < 0 {
		x = -x
		sign = -1
	}
	return sign * int64(mathutil.ScaleRound(x, float64(q.ScaleFactor)))
}

// Quantize maps x in [-1, 1] to its fixed-point value: the code itself with
// IntegerOutput, otherwise the code divided back by ScaleFactor.
//
// Real values carry the sign of x, so a small negative input quantizes to
// -0.0 and formats as "-0.000000".
func (q QuantizationConfig) Quantize(x float64) float64 {
	if q.IntegerOutput {
		return float64(q.Code(x))
	}
	sign := 1.0
	if x < 0 {
		x, sign = -x, -1
	}
	scale := float64(q.ScaleFactor)
	return sign * (mathutil.ScaleRound(x, scale) / scale)
}

// codeOf recovers the code of a value produced by Quantize.
func (q QuantizationConfig) codeOf(v float64) int64 {
	if q.IntegerOutput {
		return int64(v)
	}
	return int64(math.Round(v * float64(q.ScaleFactor)))
}
