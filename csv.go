package lotable

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteCSV writes one record per line. Real-valued fields use %9.6f and
// integer codes use %9d.
func (t *Table) WriteCSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	line := make([]byte, 0, len(t.cols)*(fieldWidth+1)+1)
	for i := range t.Len() {
		line = line[:0]
		for c := range t.cols {
			if c > 0 {
				line = append(line, fieldSeparator...)
			}
			line = t.appendField(line, t.cols[c][i])
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (t *Table) appendField(dst []byte, v float64) []byte {
	if t.quant.IntegerOutput {
		return fmt.Appendf(dst, "%*d", fieldWidth, int64(v))
	}
	return fmt.Appendf(dst, "%*.*f", fieldWidth, fieldPrecision, v)
}

// DecodeCSV parses a real-valued table of the given kind.
//
// Every line must hold exactly kind.Columns() comma-separated numbers, each
// finite and within [-1, 1]. A table must have at least MinRows records and
// no more than kind.Capacity(). Errors name the 1-based line.
func DecodeCSV(r io.Reader, kind Kind) (*Table, error) {
	cols := kind.Columns()
	values := make([][]float64, cols)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSuffix(sc.Text(), "\r")
		if line > kind.Capacity() {
			return nil, fmt.Errorf("%w at line %d: capacity is %d rows", ErrTableTooLong, line, kind.Capacity())
		}

		fields := strings.Split(text, fieldSeparator)
		if len(fields) != cols {
			return nil, fmt.Errorf("%w: unexpected characters on line %d: %d fields, want %d",
				ErrMalformedTable, line, len(fields), cols)
		}
		for c, f := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: unexpected characters on line %d: %q", ErrMalformedTable, line, f)
			}
			if math.IsNaN(x) || x < -1 || x > 1 {
				return nil, fmt.Errorf("%w at line %d: %v", ErrValueRange, line, x)
			}
			values[c] = append(values[c], x)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	if line < MinRows {
		return nil, fmt.Errorf("%w at line %d: need at least %d rows", ErrTableTooShort, line, MinRows)
	}

	return &Table{kind: kind, quant: DefaultQuantization(), cols: values}, nil
}

// DetectKind peeks at the first record of a table text and returns the kind
// matching its field count. The returned reader yields the full text.
func DetectKind(r io.Reader) (Kind, io.Reader, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return KindRF, nil, fmt.Errorf("failed to read table: %w", err)
	}
	if strings.TrimSpace(first) == "" {
		return KindRF, nil, fmt.Errorf("%w: empty table", ErrMalformedTable)
	}
	kind, err := kindForColumns(len(strings.Split(first, fieldSeparator)))
	if err != nil {
		return KindRF, nil, err
	}
	return kind, io.MultiReader(strings.NewReader(first), br), nil
}
