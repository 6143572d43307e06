package lotable

import (
	"encoding/binary"
	"fmt"

	"github.com/tphakala/simd/f64"
)

// Image is the packed form of a table as held by the LO firmware: a row
// count, a checksum and the row-major fixed-point codes.
type Image struct {
	Kind     Kind
	Rows     int32
	Checksum int32
	Codes    []int32
}

// Pack converts a table to its firmware image using the codes of q.
//
// Valid images have MinRows <= rows < kind.Capacity() and every code within
// ±ScaleFactor.
func Pack(t *Table, q QuantizationConfig) (*Image, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	rows := t.Len()
	if rows < MinRows {
		return nil, fmt.Errorf("%w: %d rows, need at least %d", ErrTableTooShort, rows, MinRows)
	}
	if rows >= t.kind.Capacity() {
		return nil, fmt.Errorf("%w: %d rows, %s bank holds fewer than %d",
			ErrTableTooLong, rows, t.kind, t.kind.Capacity())
	}

	cols := t.Columns()
	values := t.Interleaved()
	codes := make([]int32, len(values))
	for i, v := range values {
		if !t.quant.IntegerOutput && (v < -1 || v > 1) {
			return nil, fmt.Errorf("%w at row %d: %v", ErrValueRange, i/cols+1, v)
		}
		codes[i] = int32(q.Code(t.realValue(v)))
	}

	im := &Image{Kind: t.kind, Rows: int32(rows), Codes: codes}
	im.Checksum = Checksum(im.Rows, im.Codes, cols)
	return im, nil
}

// realValue returns v on the [-1, 1] scale.
func (t *Table) realValue(v float64) float64 {
	if t.quant.IntegerOutput {
		return v / float64(t.quant.ScaleFactor)
	}
	return v
}

// Checksum computes the image checksum: a wrapping 32-bit sum seeded with
// 0xF00D8421, plus the row count, plus code+row+col for every field.
func Checksum(rows int32, codes []int32, cols int) int32 {
	sum := uint32(checksumSeed)
	sum += uint32(rows)
	for i, code := range codes {
		r, c := i/cols, i%cols
		sum += uint32(code) + uint32(r) + uint32(c)
	}
	return int32(sum)
}

// MarshalBinary encodes the image as little-endian 32-bit words.
func (im *Image) MarshalBinary() ([]byte, error) {
	words := make([]int32, 0, imageHeaderWords+len(im.Codes))
	words = append(words, im.Rows, im.Checksum)
	words = append(words, im.Codes...)

	buf := make([]byte, 0, len(words)*bytesPerWord)
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(w))
	}
	return buf, nil
}

// UnmarshalImage decodes and verifies an image of the given kind.
func UnmarshalImage(data []byte, kind Kind) (*Image, error) {
	if len(data)%bytesPerWord != 0 || len(data) < imageHeaderWords*bytesPerWord {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptImage, len(data))
	}
	word := func(i int) int32 {
		return int32(binary.LittleEndian.Uint32(data[i*bytesPerWord:]))
	}

	cols := kind.Columns()
	im := &Image{Kind: kind, Rows: word(0), Checksum: word(1)}
	if im.Rows < MinRows || int(im.Rows) >= kind.Capacity() {
		return nil, fmt.Errorf("%w: row count %d", ErrCorruptImage, im.Rows)
	}
	want := imageHeaderWords + int(im.Rows)*cols
	if len(data)/bytesPerWord != want {
		return nil, fmt.Errorf("%w: %d words for %d rows, want %d",
			ErrCorruptImage, len(data)/bytesPerWord, im.Rows, want)
	}

	im.Codes = make([]int32, int(im.Rows)*cols)
	for i := range im.Codes {
		im.Codes[i] = word(imageHeaderWords + i)
	}
	if sum := Checksum(im.Rows, im.Codes, cols); sum != im.Checksum {
		return nil, fmt.Errorf("%w: checksum %#08x, want %#08x",
			ErrCorruptImage, uint32(im.Checksum), uint32(sum))
	}
	return im, nil
}

// Table reads the image back as a table, dividing codes by q.ScaleFactor
// unless q selects integer output.
func (im *Image) Table(q QuantizationConfig) (*Table, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	rows := int(im.Rows)
	t := newTable(im.Kind, q, rows)
	cols := t.Columns()
	if len(im.Codes) != rows*cols {
		return nil, fmt.Errorf("%w: %d codes for %d rows", ErrCorruptImage, len(im.Codes), rows)
	}
	for i, code := range im.Codes {
		t.cols[i%cols][i/cols] = float64(code)
	}
	if !q.IntegerOutput {
		scale := 1.0 / float64(q.ScaleFactor)
		for c := range t.cols {
			f64.Scale(t.cols[c], t.cols[c], scale)
		}
	}
	return t, nil
}
