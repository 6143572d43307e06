// Package lotable generates the local-oscillator (LO) lookup tables loaded
// into the beam position monitor firmware.
//
// A table holds one period-aligned sequence of quantized cosine/sine samples
// used to digitally down-convert the ADC stream. The ADC clock is derived from
// the RF carrier through a reference divider and multiplier, so every table is
// described by the carrier frequency, that clock ratio and a sample count.
//
// # Features
//
//   - Single-tone (RF) tables of (cos, sin) records
//   - Dual-tone phase-tracking (PT) tables of (cosLo, sinLo, cosHi, sinHi)
//     records with tones at Frf ± offset
//   - Symmetric round-half-up fixed-point quantization with a configurable
//     full-scale value
//   - Frequency plan reporting: derived ADC rate, Nyquist-folded alias and FFT
//     bin of the carrier
//   - CSV text, PCM WAV and firmware image encodings
//   - FFT verification of generated tables via gonum.org/v1/gonum/dsp/fourier
//   - YAML table-set manifests with arithmetic expressions for frequencies
//
// # Quick Start
//
//	q := lotable.DefaultQuantization()
//	table, plan, err := lotable.GenerateRF(q, lotable.RFSpec{
//	    RF:          500,
//	    Ratio:       lotable.ClockRatio{RefDivider: 328, RefMultiplier: 77},
//	    SampleCount: 77,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(plan) // Frf:500.000  Fadc:117.378  Feff:30.488  FFT index:20
//	if err := table.WriteCSV(os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
//
// # Quantization
//
// A value x in [-1, 1] maps to the code sign(x)*floor(|x|*ScaleFactor + 0.5).
// Quantization is odd: the code of -x is the negated code of x. With
// [QuantizationConfig.IntegerOutput] unset the code is divided back by the scale
// factor, so tables stay on the [-1, 1] scale but carry only representable
// values.
//
// # Frequency Model
//
// For a carrier Frf the ADC rate is Fadc = Frf / RefDivider * RefMultiplier.
// [Fold] reduces Frf modulo Fadc with floor semantics and reflects the result
// about Fadc/2; the FFT index is the folded frequency in units of
// Fadc/SampleCount. The fold is informational: RF samples are computed from
// the unfolded carrier, and PT tables are never folded.
//
// # Firmware Images
//
// [Pack] converts a table to the image the firmware stores: little-endian
// 32-bit words holding the row count, a checksum and the row-major codes.
// [UnmarshalImage] verifies the length and checksum of an image.
package lotable
