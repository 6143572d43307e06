package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-lotable"
)

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, formatWAV, formatForPath("out/table.wav"))
	assert.Equal(t, formatWAV, formatForPath("TABLE.WAV"))
	assert.Equal(t, formatCSV, formatForPath("table.csv"))
	assert.Equal(t, formatCSV, formatForPath("table"))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "rfTableSR.csv", outputName("rfTableSR.csv", formatCSV))
	assert.Equal(t, "rfTableSR.wav", outputName("rfTableSR.csv", formatWAV))
	assert.Equal(t, "table.csv", outputName("table", formatCSV))
}

func TestValidFormat(t *testing.T) {
	require.NoError(t, validFormat(formatCSV))
	require.NoError(t, validFormat(formatWAV))
	assert.Error(t, validFormat("bin"))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	err := writeFileAtomic(path, func(f *os.File) error {
		_, err := f.WriteString("hello")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed")
}

func TestWriteFileAtomic_WriteError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := writeFileAtomic(path, func(f *os.File) error {
		_, _ = f.WriteString("partial")
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "existing file must survive a failed write")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be removed")
}

func TestWriteFileAtomic_InvalidDirectory(t *testing.T) {
	err := writeFileAtomic("/nonexistent/dir/out.csv", func(f *os.File) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestReadTableFile_NotFound(t *testing.T) {
	_, err := readTableFile("/nonexistent/table.csv", lotable.DefaultQuantization())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestReadTableFile_RoundTrip(t *testing.T) {
	q := lotable.DefaultQuantization()
	table, _, err := lotable.GeneratePT(q, lotable.PTSpec{
		Offset:      0.5,
		RF:          500,
		Ratio:       lotable.ClockRatio{RefDivider: 328, RefMultiplier: 77},
		SampleCount: 64,
	})
	require.NoError(t, err)

	for _, format := range []string{formatCSV, formatWAV} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "table."+format)
			require.NoError(t, writeTableFile(path, table, format, defaultWAVRate))

			got, err := readTableFile(path, q)
			require.NoError(t, err)
			assert.Equal(t, lotable.KindPT, got.Kind())
			assert.Equal(t, table.Len(), got.Len())
			for i := range table.Len() {
				assert.InDeltaSlice(t, table.Row(i), got.Row(i), 1e-6)
			}
		})
	}
}

func TestOptionsQuantization(t *testing.T) {
	newCmd := func(opts *options) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.Flags().IntVarP(&opts.scaleFactor, "scale-factor", "s", lotable.DefaultScaleFactor, "")
		cmd.Flags().BoolVarP(&opts.integerOutput, "integer-output", "i", false, "")
		return cmd
	}
	base := lotable.QuantizationConfig{ScaleFactor: 1000, IntegerOutput: true}

	opts := &options{}
	cmd := newCmd(opts)
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, base, opts.quantization(cmd, base), "unset flags keep the manifest values")

	opts = &options{}
	cmd = newCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"-s", "3", "--integer-output=false"}))
	assert.Equal(t, lotable.QuantizationConfig{ScaleFactor: 3}, opts.quantization(cmd, base))
}

func TestRunBatch_ParallelMatchesSequential(t *testing.T) {
	m := lotable.DefaultManifest()
	q := m.Quantization()

	var outputs [2]bytes.Buffer
	var dirs [2]string
	for i, parallel := range []bool{false, true} {
		dirs[i] = t.TempDir()
		cfg := batchConfig{dir: dirs[i], format: formatCSV, sampleRate: defaultWAVRate, parallel: parallel}
		require.NoError(t, runBatch(context.Background(), &outputs[i], &options{}, m, q, cfg))
	}

	assert.Equal(t, outputs[0].String(), outputs[1].String())
	lines := strings.Split(strings.TrimSpace(outputs[0].String()), "\n")
	require.Len(t, lines, len(m.Tables))
	assert.Equal(t, "Frf:500.000  Fadc:116.000  Feff:36.000  FFT index:9", lines[2])

	for _, spec := range m.Tables {
		seq, err := os.ReadFile(filepath.Join(dirs[0], spec.Name))
		require.NoError(t, err)
		par, err := os.ReadFile(filepath.Join(dirs[1], spec.Name))
		require.NoError(t, err)
		assert.Equal(t, seq, par, spec.Name)
		assert.Equal(t, int(spec.SampleCount), bytes.Count(seq, []byte("\n")), spec.Name)
	}
}

func TestRunBatch_FailureWritesNothing(t *testing.T) {
	m, err := lotable.ParseManifest([]byte(`
tables:
  - name: good.csv
    kind: rf
    frf: 500
    ref_divider: 328
    ref_multiplier: 77
    sample_count: 77
  - name: bad.csv
    kind: pt
    offset: 1
    frf: -500
    ref_divider: 328
    ref_multiplier: 77
    sample_count: 77
`))
	require.NoError(t, err)

	dir := t.TempDir()
	var out bytes.Buffer
	cfg := batchConfig{dir: dir, format: formatCSV, parallel: true}
	err = runBatch(context.Background(), &out, &options{}, m, m.Quantization(), cfg)
	require.ErrorIs(t, err, lotable.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "bad.csv")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, out.String())
}

func TestRun_Generate(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, run([]string{"generate", "-o", dir, "-i"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 7)

	data, err := os.ReadFile(filepath.Join(dir, "rfTableSR.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "   131071,        0\n"))
}

func TestRun_GenerateWAV(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	require.NoError(t, run([]string{"generate", "-o", dir, "--format", "wav", "--parallel=false"}, &out))

	_, err := os.Stat(filepath.Join(dir, "ptTableSR_11_19.wav"))
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, run([]string{"verify", filepath.Join(dir, "rfTableSR.wav")}, &out))
	assert.Contains(t, out.String(), "rf table, 77 rows")
	assert.Contains(t, out.String(), "bin 20 (complex 20)")
}

func TestRun_RFAndPT(t *testing.T) {
	dir := t.TempDir()
	rf := filepath.Join(dir, "rfTableBR.csv")
	pt := filepath.Join(dir, "ptTableSR_1_2.csv")

	var out bytes.Buffer
	require.NoError(t, run([]string{"rf", "--frf", "500", "--divider", "500", "--multiplier", "116", "--samples", "29", rf}, &out))
	assert.Equal(t, "Frf:500.000  Fadc:116.000  Feff:36.000  FFT index:9\n", out.String())

	out.Reset()
	require.NoError(t, run([]string{"pt", "--offset", "(500.0/328.0)*(1.0/2.0)", "--samples", "77*2", pt}, &out))
	assert.True(t, strings.HasPrefix(out.String(), "Frf:500.000  Fadc:117.378  Flo:499.238  Fhi:500.762"))

	out.Reset()
	require.NoError(t, run([]string{"verify", rf, pt}, &out))
	assert.Contains(t, out.String(), "bin 9 (complex 9)")
	assert.Contains(t, out.String(), "bin 39 (complex 39)")
	assert.Contains(t, out.String(), "bin 41 (complex 41)")
}

func TestRun_PackUnpack(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "rfTableSR.csv")
	image := filepath.Join(dir, "rfTableSR.bin")
	back := filepath.Join(dir, "readback.csv")

	var out bytes.Buffer
	require.NoError(t, run([]string{"rf", table}, &out))

	out.Reset()
	require.NoError(t, run([]string{"pack", table, image}, &out))
	assert.Contains(t, out.String(), "77 rf rows")

	info, err := os.Stat(image)
	require.NoError(t, err)
	assert.Equal(t, int64((2+77*2)*4), info.Size())

	require.NoError(t, run([]string{"unpack", "--kind", "rf", image, back}, &out))
	want, err := os.ReadFile(table)
	require.NoError(t, err)
	got, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	err = run([]string{"unpack", "--kind", "pt", image, back}, &out)
	assert.ErrorIs(t, err, lotable.ErrCorruptImage)
}

func TestRun_NegativeOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swapped.csv")
	var out bytes.Buffer
	require.NoError(t, run([]string{"pt", "--offset=-1", path}, &out))
	assert.Equal(t, "Frf:500.000  Fadc:117.378  Flo:501.000  Fhi:499.000\n", out.String())
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, assert.AnError }

func TestRun_OutputErrors(t *testing.T) {
	dir := t.TempDir()
	table := filepath.Join(dir, "rfTableSR.csv")
	require.NoError(t, run([]string{"rf", table}, &bytes.Buffer{}))

	tests := []struct {
		name string
		args []string
	}{
		{"rf", []string{"rf", filepath.Join(dir, "again.csv")}},
		{"verify", []string{"verify", table}},
		{"pack", []string{"pack", table, filepath.Join(dir, "rfTableSR.bin")}},
		{"generate", []string{"generate", "-o", dir}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, run(tt.args, failingWriter{}), assert.AnError)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"Zero divider", []string{"rf", "--divider", "0", filepath.Join(dir, "a.csv")}, lotable.ErrDivisionByZero},
		{"Negative carrier", []string{"pt", "--frf=-500", filepath.Join(dir, "b.csv")}, lotable.ErrInvalidConfig},
		{"Zero scale", []string{"rf", "-s", "0", filepath.Join(dir, "c.csv")}, lotable.ErrInvalidConfig},
		{"Short table", []string{"pack", filepath.Join(dir, "short.csv"), filepath.Join(dir, "short.bin")}, lotable.ErrTableTooShort},
		{"Unknown kind", []string{"unpack", "--kind", "iq", "x.bin", "x.csv"}, lotable.ErrInvalidConfig},
	}
	require.NoError(t, run([]string{"rf", "--samples", "28", filepath.Join(dir, "short.csv")}, &bytes.Buffer{}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Error(t, run([]string{"generate", "--format", "bin", "-o", dir}, &bytes.Buffer{}))
	assert.Error(t, run([]string{"rf"}, &bytes.Buffer{}))
}
