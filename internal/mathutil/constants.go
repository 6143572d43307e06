package mathutil

// Rounding constants
const (
	roundingBias = 0.5 // Added before floor for round-half-up
)

// Folding constants
const (
	nyquistDivisor = 2.0 // Nyquist frequency is half the sample rate
)
