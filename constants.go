package lotable

import "math"

// Quantization defaults
const (
	DefaultScaleFactor = 0x1FFFF // 2^17-1, full-scale value of the 18-bit LO RAM
)

// Table shape
const (
	rfColumns = 2 // cos, sin
	ptColumns = 4 // cosLo, sinLo, cosHi, sinHi

	// MinRows is the shortest table the firmware accepts.
	MinRows = 29

	// Row capacities of the LO RAM banks.
	RFRowCapacity = 1024
	PTRowCapacity = 8192
)

// Text format
const (
	fieldWidth     = 9 // Minimum field width for every value
	fieldPrecision = 6 // Digits after the decimal point in real mode
	fieldSeparator = ","
)

// Diagnostic format
const (
	rfPlanFormat = "Frf:%.3f  Fadc:%.3f  Feff:%.3f  FFT index:%d"
	ptPlanFormat = "Frf:%.3f  Fadc:%.3f  Flo:%.3f  Fhi:%.3f"
)

// Image format
const (
	imageHeaderWords = 2          // rowCount, checksum
	checksumSeed     = 0xF00D8421 // Initial checksum accumulator
	bytesPerWord     = 4
)

// WAV export
const (
	bitDepth16   = 16
	bitDepth24   = 24
	bitDepth32   = 32
	wavFormatPCM = 1 // WAVE_FORMAT_PCM
)

const twoPi = 2 * math.Pi
