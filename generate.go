package lotable

import (
	"fmt"
	"math"
)

// RFSpec describes a single-tone table.
type RFSpec struct {
	RF          float64
	Ratio       ClockRatio
	SampleCount int
}

// PTSpec describes a dual-tone phase-tracking table with tones at
// RF - Offset and RF + Offset. A negative Offset swaps the two tones.
type PTSpec struct {
	Offset      float64
	RF          float64
	Ratio       ClockRatio
	SampleCount int
}

// GenerateRF builds a single-tone table of (cos, sin) records.
//
// The returned plan reports the Nyquist-folded alias of the carrier, but the
// samples are computed from the unfolded carrier frequency.
func GenerateRF(q QuantizationConfig, spec RFSpec) (*Table, FrequencyPlan, error) {
	if err := q.Validate(); err != nil {
		return nil, FrequencyPlan{}, err
	}
	plan, err := Fold(spec.RF, spec.Ratio, spec.SampleCount)
	if err != nil {
		return nil, FrequencyPlan{}, err
	}

	t := newTable(KindRF, q, spec.SampleCount)
	w := twoPi * spec.RF
	tsamp := 1.0 / plan.ADC
	quadrature(q, w, tsamp, t.cols[0], t.cols[1])
	return t, plan, nil
}

// GeneratePT builds a dual-tone table of (cosLo, sinLo, cosHi, sinHi)
// records. Neither tone is folded.
func GeneratePT(q QuantizationConfig, spec PTSpec) (*Table, PTPlan, error) {
	if err := q.Validate(); err != nil {
		return nil, PTPlan{}, err
	}
	if err := checkFinite("offset", spec.Offset); err != nil {
		return nil, PTPlan{}, err
	}
	fadc, err := spec.Ratio.SampleRate(spec.RF)
	if err != nil {
		return nil, PTPlan{}, err
	}

	plan := PTPlan{
		RF:   spec.RF,
		ADC:  fadc,
		Low:  spec.RF - spec.Offset,
		High: spec.RF + spec.Offset,
	}

	t := newTable(KindPT, q, spec.SampleCount)
	tsamp := 1.0 / fadc
	quadrature(q, twoPi*plan.Low, tsamp, t.cols[0], t.cols[1])
	quadrature(q, twoPi*plan.High, tsamp, t.cols[2], t.cols[3])
	return t, plan, nil
}

// quadrature fills cos and sin with the quantized samples of a tone at
// angular frequency w sampled every tsamp.
func quadrature(q QuantizationConfig, w, tsamp float64, cos, sin []float64) {
	step := w * tsamp
	for i := range cos {
		phase := step * float64(i)
		sin[i] = q.Quantize(math.Sin(phase))
		cos[i] = q.Quantize(math.Cos(phase))
	}
}

// Generator is implemented by every table description.
type Generator interface {
	Generate(q QuantizationConfig) (*Table, fmt.Stringer, error)
}

// Generate implements Generator.
func (s RFSpec) Generate(q QuantizationConfig) (*Table, fmt.Stringer, error) {
	t, plan, err := GenerateRF(q, s)
	if err != nil {
		return nil, nil, err
	}
	return t, plan, nil
}

// Generate implements Generator.
func (s PTSpec) Generate(q QuantizationConfig) (*Table, fmt.Stringer, error) {
	t, plan, err := GeneratePT(q, s)
	if err != nil {
		return nil, nil, err
	}
	return t, plan, nil
}
