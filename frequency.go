package lotable

import (
	"fmt"
	"math"

	"github.com/tphakala/go-lotable/internal/mathutil"
)

// ClockRatio relates the ADC sample clock to the RF carrier:
// Fadc = Frf / RefDivider * RefMultiplier.
type ClockRatio struct {
	RefDivider    int
	RefMultiplier int
}

// Validate checks the ratio terms. A zero divider is reported as
// ErrDivisionByZero.
func (r ClockRatio) Validate() error {
	if r.RefDivider == 0 {
		return fmt.Errorf("%w: reference divider is zero", ErrDivisionByZero)
	}
	if r.RefDivider < 0 || r.RefMultiplier < 0 {
		return fmt.Errorf("%w: divider and multiplier must be positive, got %d/%d",
			ErrInvalidConfig, r.RefDivider, r.RefMultiplier)
	}
	return nil
}

// SampleRate returns the ADC rate derived from frf.
func (r ClockRatio) SampleRate(frf float64) (float64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if err := checkFrequency("RF frequency", frf); err != nil {
		return 0, err
	}
	fadc := frf / float64(r.RefDivider) * float64(r.RefMultiplier)
	if fadc == 0 {
		return 0, fmt.Errorf("%w: ADC rate is zero (Frf=%g, ratio %d/%d)",
			ErrDivisionByZero, frf, r.RefMultiplier, r.RefDivider)
	}
	return fadc, nil
}

// FrequencyPlan is the frequency report for a single-tone table.
type FrequencyPlan struct {
	RF          float64 // Carrier frequency
	ADC         float64 // Derived sample rate
	Effective   float64 // Aliased frequency in [0, ADC/2]
	FFTIndex    float64 // Bin of Effective in a SampleCount-point FFT
	SampleCount int
}

// Fold derives the sample rate, the Nyquist-folded alias of frf and its FFT
// bin for a sampleCount-point table. FFTIndex is 0 when sampleCount <= 0.
func Fold(frf float64, ratio ClockRatio, sampleCount int) (FrequencyPlan, error) {
	fadc, err := ratio.SampleRate(frf)
	if err != nil {
		return FrequencyPlan{}, err
	}

	plan := FrequencyPlan{
		RF:          frf,
		ADC:         fadc,
		Effective:   mathutil.Alias(frf, fadc),
		SampleCount: sampleCount,
	}
	if sampleCount > 0 {
		plan.FFTIndex = plan.Effective / (fadc / float64(sampleCount))
	}
	return plan, nil
}

// String formats the plan as the one-line table summary.
func (p FrequencyPlan) String() string {
	return fmt.Sprintf(rfPlanFormat, p.RF, p.ADC, p.Effective, int64(p.FFTIndex))
}

// PTPlan is the frequency report for a dual-tone table. No folding is applied.
type PTPlan struct {
	RF   float64 // Carrier frequency
	ADC  float64 // Derived sample rate
	Low  float64 // RF - offset
	High float64 // RF + offset
}

// String formats the plan as the one-line table summary.
func (p PTPlan) String() string {
	return fmt.Sprintf(ptPlanFormat, p.RF, p.ADC, p.Low, p.High)
}

func checkFinite(name string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
	}
	return nil
}

func checkFrequency(name string, f float64) error {
	if err := checkFinite(name, f); err != nil {
		return err
	}
	if f < 0 {
		return fmt.Errorf("%w: %s must not be negative, got %g", ErrInvalidConfig, name, f)
	}
	return nil
}
