package lotable

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmBitDepth returns the narrowest PCM sample width holding ±scale.
func pcmBitDepth(scale int) (int, error) {
	for _, depth := range []int{bitDepth16, bitDepth24, bitDepth32} {
		if scale <= audio.IntMaxSignedValue(depth) {
			return depth, nil
		}
	}
	return 0, fmt.Errorf("%w: scale factor %d exceeds 32-bit PCM", ErrInvalidConfig, scale)
}

// EncodeWAV writes the table's fixed-point codes as PCM, one channel per
// column and one frame per record. The sample width is the narrowest of
// 16, 24 or 32 bits that holds ±ScaleFactor.
func (t *Table) EncodeWAV(w io.WriteSeeker, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: WAV sample rate must be positive, got %d", ErrInvalidConfig, sampleRate)
	}
	depth, err := pcmBitDepth(t.quant.ScaleFactor)
	if err != nil {
		return err
	}

	cols := t.Columns()
	frames := t.Interleaved()
	data := make([]int, len(frames))
	for i, v := range frames {
		data[i] = int(t.quant.codeOf(v))
	}

	enc := wav.NewEncoder(w, sampleRate, depth, cols, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: cols, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV: %w", err)
	}
	return nil
}

// DecodeWAV reads a table written by EncodeWAV. Two channels give an RF
// table and four a PT table; sample values are taken as codes of q.
func DecodeWAV(r io.ReadSeeker, q QuantizationConfig) (*Table, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrMalformedTable)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read WAV data: %w", err)
	}

	kind, err := kindForColumns(buf.Format.NumChannels)
	if err != nil {
		return nil, err
	}
	cols := kind.Columns()
	t := newTable(kind, q, len(buf.Data)/cols)
	scale := float64(q.ScaleFactor)
	for i := range t.Len() {
		for c := range cols {
			v := float64(buf.Data[i*cols+c])
			if !q.IntegerOutput {
				v /= scale
			}
			t.cols[c][i] = v
		}
	}
	return t, nil
}
