package lotable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f64"
)

// Common errors returned by the generators and codecs.
var (
	// ErrInvalidConfig indicates invalid generation parameters.
	ErrInvalidConfig = errors.New("invalid table configuration")

	// ErrDivisionByZero indicates a zero reference divider or a zero derived
	// ADC rate. Generators fail fast instead of emitting NaN/Inf rows.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrMalformedTable indicates a table text that does not parse.
	ErrMalformedTable = errors.New("malformed table")

	// ErrValueRange indicates a table value outside [-1, 1].
	ErrValueRange = errors.New("value out of range")

	// ErrTableTooShort indicates fewer than MinRows rows.
	ErrTableTooShort = errors.New("table too short")

	// ErrTableTooLong indicates a table that does not fit its LO bank.
	ErrTableTooLong = errors.New("table too long")

	// ErrCorruptImage indicates a table image with a bad size or checksum.
	ErrCorruptImage = errors.New("corrupt table image")
)

// Kind identifies the table layout.
type Kind int

const (
	// KindRF is a single-tone table with records (cos, sin).
	KindRF Kind = iota

	// KindPT is a dual-tone phase-tracking table with records
	// (cosLo, sinLo, cosHi, sinHi).
	KindPT
)

// ParseKind converts "rf" or "pt" to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rf":
		return KindRF, nil
	case "pt":
		return KindPT, nil
	default:
		return KindRF, fmt.Errorf("%w: unknown table kind %q", ErrInvalidConfig, s)
	}
}

func (k Kind) String() string {
	switch k {
	case KindRF:
		return "rf"
	case KindPT:
		return "pt"
	default:
		return "unknown"
	}
}

// Columns returns the number of fields per record.
func (k Kind) Columns() int {
	if k == KindPT {
		return ptColumns
	}
	return rfColumns
}

// Capacity returns the row capacity of the LO bank holding this kind.
func (k Kind) Capacity() int {
	if k == KindPT {
		return PTRowCapacity
	}
	return RFRowCapacity
}

// kindForColumns maps a field count back to a Kind.
func kindForColumns(n int) (Kind, error) {
	switch n {
	case rfColumns:
		return KindRF, nil
	case ptColumns:
		return KindPT, nil
	default:
		return KindRF, fmt.Errorf("%w: %d fields per record, want %d or %d",
			ErrMalformedTable, n, rfColumns, ptColumns)
	}
}

// Table is an immutable LO lookup table.
//
// Values are stored column-major. Row i is the time sample i. In real mode
// every value lies in [-1, 1]; with IntegerOutput the values are the signed
// fixed-point codes.
type Table struct {
	kind  Kind
	quant QuantizationConfig
	cols  [][]float64
}

func newTable(kind Kind, q QuantizationConfig, rows int) *Table {
	if rows < 0 {
		rows = 0
	}
	cols := make([][]float64, kind.Columns())
	for c := range cols {
		cols[c] = make([]float64, rows)
	}
	return &Table{kind: kind, quant: q, cols: cols}
}

// Kind returns the table layout.
func (t *Table) Kind() Kind { return t.kind }

// Quantization returns the quantization the values were produced with.
func (t *Table) Quantization() QuantizationConfig { return t.quant }

// Len returns the number of records.
func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

// Columns returns the number of fields per record.
func (t *Table) Columns() int { return len(t.cols) }

// Column returns a copy of column c.
func (t *Table) Column(c int) []float64 {
	out := make([]float64, len(t.cols[c]))
	copy(out, t.cols[c])
	return out
}

// Row returns a copy of record i in field order.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.cols))
	for c := range t.cols {
		row[c] = t.cols[c][i]
	}
	return row
}

// Code returns the signed fixed-point code of field c in record i.
func (t *Table) Code(i, c int) int64 {
	return t.quant.codeOf(t.cols[c][i])
}

// Interleaved returns all values in record order (row-major), the frame
// layout of the WAV and firmware image encodings.
func (t *Table) Interleaved() []float64 {
	n := t.Len()
	out := make([]float64, n*len(t.cols))
	if len(t.cols) == rfColumns {
		f64.Interleave2(out, t.cols[0], t.cols[1])
		return out
	}
	for i := range n {
		base := i * len(t.cols)
		for c := range t.cols {
			out[base+c] = t.cols[c][i]
		}
	}
	return out
}

// SIMDInfo reports the vector instruction set used by the table kernels.
func SIMDInfo() string {
	return cpu.Info()
}
