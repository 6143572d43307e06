package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tphakala/go-lotable"
)

// options holds the flags shared by every subcommand.
type options struct {
	verbose       bool
	scaleFactor   int
	integerOutput bool
}

// quantization applies the -s and -i flags on top of base. Flags left at
// their defaults do not override base.
func (o *options) quantization(cmd *cobra.Command, base lotable.QuantizationConfig) lotable.QuantizationConfig {
	q := base
	if cmd.Flags().Changed("scale-factor") {
		q.ScaleFactor = o.scaleFactor
	}
	if cmd.Flags().Changed("integer-output") {
		q.IntegerOutput = o.integerOutput
	}
	return q
}

// logf logs only in verbose mode.
func (o *options) logf(format string, args ...any) {
	if o.verbose {
		log.Printf(format, args...)
	}
}

// formatForPath picks the table file format from the file extension.
func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), "."+formatWAV) {
		return formatWAV
	}
	return formatCSV
}

// outputName returns name with its extension replaced to match format.
func outputName(name, format string) string {
	if formatForPath(name) == format {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + format
}

// writeFileAtomic writes path through a temporary file in the same
// directory, so readers never observe a partial table.
func writeFileAtomic(path string, write func(f *os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		return err
	}
	if err := tmp.Chmod(outputFileMode); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// writeTableFile writes t as CSV or as PCM WAV at sampleRate.
func writeTableFile(path string, t *lotable.Table, format string, sampleRate int) error {
	return writeFileAtomic(path, func(f *os.File) error {
		if format == formatWAV {
			return t.EncodeWAV(f, sampleRate)
		}
		return t.WriteCSV(f)
	})
}

// readTableFile reads a CSV or WAV table. WAV samples are interpreted as
// codes of q; CSV tables carry their own real values.
func readTableFile(path string, q lotable.QuantizationConfig) (*lotable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	if formatForPath(path) == formatWAV {
		return lotable.DecodeWAV(f, q)
	}
	kind, r, err := lotable.DetectKind(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t, err := lotable.DecodeCSV(r, kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// batchConfig controls where and how a manifest's tables are written.
type batchConfig struct {
	dir        string
	format     string
	sampleRate int
	parallel   bool
}

// generated is one finished manifest entry.
type generated struct {
	path    string
	table   *lotable.Table
	summary fmt.Stringer
}

// runBatch generates every manifest entry, prints its summary and writes it.
//
// Sequential mode handles one table at a time. Parallel mode generates all
// tables concurrently, prints the summaries in manifest order and then writes
// the files concurrently; no file is written if any table fails.
func runBatch(ctx context.Context, out io.Writer, opts *options, m *lotable.Manifest,
	q lotable.QuantizationConfig, cfg batchConfig,
) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.dir, outputDirMode); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if !cfg.parallel {
		for _, spec := range m.Tables {
			g, err := generateOne(spec, q, cfg)
			if err != nil {
				return err
			}
			if err := emit(out, opts, g, cfg); err != nil {
				return err
			}
		}
		return nil
	}

	results := make([]generated, len(m.Tables))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, spec := range m.Tables {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			g, err := generateOne(spec, q, cfg)
			if err != nil {
				return err
			}
			results[i] = g
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, g := range results {
		if _, err := fmt.Fprintln(out, g.summary); err != nil {
			return err
		}
	}

	eg, gctx = errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for _, g := range results {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return write(opts, g, cfg)
		})
	}
	return eg.Wait()
}

func generateOne(spec lotable.TableSpec, q lotable.QuantizationConfig, cfg batchConfig) (generated, error) {
	t, summary, err := spec.Generate(q)
	if err != nil {
		return generated{}, err
	}
	path := filepath.Join(cfg.dir, outputName(spec.Name, cfg.format))
	return generated{path: path, table: t, summary: summary}, nil
}

// emit prints the summary of g and then writes its file.
func emit(out io.Writer, opts *options, g generated, cfg batchConfig) error {
	if _, err := fmt.Fprintln(out, g.summary); err != nil {
		return err
	}
	return write(opts, g, cfg)
}

func write(opts *options, g generated, cfg batchConfig) error {
	if err := writeTableFile(g.path, g.table, cfg.format, cfg.sampleRate); err != nil {
		return err
	}
	opts.logf("Wrote %s (%d %s rows)", g.path, g.table.Len(), g.table.Kind())
	return nil
}

// validFormat checks a --format value.
func validFormat(format string) error {
	switch format {
	case formatCSV, formatWAV:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatCSV, formatWAV)
	}
}
