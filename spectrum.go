package lotable

import (
	"fmt"
	"math/cmplx"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ToneStats summarises one cos/sin pair of a table.
type ToneStats struct {
	// PeakBin is the strongest bin of the real FFT of the cosine column,
	// in [0, N/2]. It is the bin FrequencyPlan.FFTIndex predicts.
	PeakBin int

	// ComplexPeakBin is the strongest bin of the FFT of cos + j*sin, in
	// [0, N). It separates tones mirrored about N/2.
	ComplexPeakBin int

	// PeakMagnitude is |X[ComplexPeakBin]| / N on the [-1, 1] scale.
	PeakMagnitude float64

	// Mean is the DC level of the cosine column.
	Mean float64

	// Orthogonality is the mean of cos*sin; zero for ideal quadrature.
	Orthogonality float64
}

// Analyze returns the spectral summary of every tone in the table: one entry
// for an RF table, low then high for a PT table.
func (t *Table) Analyze() ([]ToneStats, error) {
	n := t.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrMalformedTable)
	}

	realFFT := fourier.NewFFT(n)
	cmplxFFT := fourier.NewCmplxFFT(n)
	inv := 1.0 / float64(n)

	stats := make([]ToneStats, 0, len(t.cols)/2)
	seq := make([]complex128, n)
	for c := 0; c+1 < len(t.cols); c += 2 {
		cos := t.realColumn(c)
		sin := t.realColumn(c + 1)

		var s ToneStats
		s.PeakBin, _ = peak(realFFT.Coefficients(nil, cos))

		for i := range seq {
			seq[i] = complex(cos[i], sin[i])
		}
		var mag float64
		s.ComplexPeakBin, mag = peak(cmplxFFT.Coefficients(nil, seq))
		s.PeakMagnitude = mag * inv

		s.Mean = f64.Sum(cos) * inv
		s.Orthogonality = f64.DotProduct(cos, sin) * inv
		stats = append(stats, s)
	}
	return stats, nil
}

// realColumn returns column c on the [-1, 1] scale.
func (t *Table) realColumn(c int) []float64 {
	col := t.Column(c)
	if t.quant.IntegerOutput {
		f64.Scale(col, col, 1.0/float64(t.quant.ScaleFactor))
	}
	return col
}

// peak returns the index and magnitude of the largest coefficient. Ties keep
// the lowest index.
func peak(coeffs []complex128) (int, float64) {
	best, bestMag := 0, -1.0
	for i, v := range coeffs {
		if m := cmplx.Abs(v); m > bestMag {
			best, bestMag = i, m
		}
	}
	return best, bestMag
}
