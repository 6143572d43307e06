package lotable

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden tables: testdata/real holds the default real-valued output and
// testdata/integer the integer-output codes. summary.txt lists the summary
// line of each table in manifest order.

func readSummaries(t *testing.T, dir string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", dir, "summary.txt"))
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestDefaultManifest_ReferenceOutput(t *testing.T) {
	m := DefaultManifest()
	summaries := readSummaries(t, "real")
	require.Len(t, summaries, len(m.Tables))

	for i, spec := range m.Tables {
		t.Run(spec.Name, func(t *testing.T) {
			table, summary, err := spec.Generate(m.Quantization())
			require.NoError(t, err)
			assert.Equal(t, summaries[i], summary.String())

			want, err := os.ReadFile(filepath.Join("testdata", "real", spec.Name))
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, table.WriteCSV(&buf))
			assert.Equal(t, string(want), buf.String())
		})
	}
}

// Integer-mode text differs in layout (%9d here, %9.6f of the integer there),
// so the codes are compared field by field.
func TestDefaultManifest_ReferenceCodes(t *testing.T) {
	m := DefaultManifest()
	q := m.Quantization()
	q.IntegerOutput = true
	summaries := readSummaries(t, "integer")
	require.Len(t, summaries, len(m.Tables))

	for i, spec := range m.Tables {
		t.Run(spec.Name, func(t *testing.T) {
			table, summary, err := spec.Generate(q)
			require.NoError(t, err)
			assert.Equal(t, summaries[i], summary.String())

			f, err := os.Open(filepath.Join("testdata", "integer", spec.Name))
			require.NoError(t, err)
			defer func() { _ = f.Close() }()

			sc := bufio.NewScanner(f)
			row := 0
			for sc.Scan() {
				fields := strings.Split(sc.Text(), fieldSeparator)
				require.Len(t, fields, table.Columns(), "line %d", row+1)
				for c, field := range fields {
					v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
					require.NoError(t, err)
					require.Equal(t, int64(v), table.Code(row, c), "line %d field %d", row+1, c+1)
				}
				row++
			}
			require.NoError(t, sc.Err())
			assert.Equal(t, table.Len(), row)
		})
	}
}
