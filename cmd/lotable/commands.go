package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tphakala/go-lotable"
	"github.com/tphakala/go-lotable/internal/expr"
)

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "lotable",
		Short:         "Generate LO lookup tables for the BPM firmware",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logf("SIMD: %s", lotable.SIMDInfo())
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	root.PersistentFlags().IntVarP(&opts.scaleFactor, "scale-factor", "s", lotable.DefaultScaleFactor,
		"Double to integer scale factor (full scale value)")
	root.PersistentFlags().BoolVarP(&opts.integerOutput, "integer-output", "i", false,
		"Show values as integers, not scaled back to [-1,1]")

	root.AddCommand(
		newGenerateCmd(opts),
		newRFCmd(opts),
		newPTCmd(opts),
		newVerifyCmd(opts),
		newPackCmd(opts),
		newUnpackCmd(opts),
	)
	return root
}

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		manifestPath string
		cfg          batchConfig
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every table listed in a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(cfg.format); err != nil {
				return err
			}
			m := lotable.DefaultManifest()
			if manifestPath != "" {
				var err error
				if m, err = lotable.LoadManifest(manifestPath); err != nil {
					return err
				}
			}
			q := opts.quantization(cmd, m.Quantization())
			opts.logf("Tables: %d, scale factor: %d, integer output: %v, parallel: %v",
				len(m.Tables), q.ScaleFactor, q.IntegerOutput, cfg.parallel)
			return runBatch(cmd.Context(), cmd.OutOrStdout(), opts, m, q, cfg)
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Table set manifest (default: built-in reference tables)")
	cmd.Flags().StringVarP(&cfg.dir, "out-dir", "o", ".", "Output directory")
	cmd.Flags().StringVarP(&cfg.format, "format", "f", formatCSV, "Output format: csv or wav")
	cmd.Flags().IntVar(&cfg.sampleRate, "sample-rate", defaultWAVRate, "Sample rate written to WAV headers")
	cmd.Flags().BoolVar(&cfg.parallel, "parallel", true, "Generate tables concurrently")
	return cmd
}

// carrierFlags are the frequency plan flags shared by rf and pt.
type carrierFlags struct {
	frf        string
	divider    int
	multiplier int
	samples    string
	sampleRate int
}

func (c *carrierFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.frf, "frf", defaultFrf, "RF carrier frequency (expression)")
	cmd.Flags().IntVar(&c.divider, "divider", defaultDivider, "Reference divider")
	cmd.Flags().IntVar(&c.multiplier, "multiplier", defaultMultiplier, "Reference multiplier")
	cmd.Flags().StringVar(&c.samples, "samples", defaultSamples, "Sample count (expression)")
	cmd.Flags().IntVar(&c.sampleRate, "sample-rate", defaultWAVRate, "Sample rate written to WAV headers")
}

func (c *carrierFlags) parse() (frf float64, ratio lotable.ClockRatio, samples int, err error) {
	if frf, err = expr.Eval(c.frf); err != nil {
		return 0, ratio, 0, fmt.Errorf("--frf: %w", err)
	}
	if samples, err = expr.EvalInt(c.samples); err != nil {
		return 0, ratio, 0, fmt.Errorf("--samples: %w", err)
	}
	return frf, lotable.ClockRatio{RefDivider: c.divider, RefMultiplier: c.multiplier}, samples, nil
}

// writeSingle prints the summary and writes one table to path.
func writeSingle(cmd *cobra.Command, opts *options, path string, g lotable.Generator, sampleRate int) error {
	t, summary, err := g.Generate(opts.quantization(cmd, lotable.DefaultQuantization()))
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), opts, generated{path: path, table: t, summary: summary},
		batchConfig{format: formatForPath(path), sampleRate: sampleRate})
}

func newRFCmd(opts *options) *cobra.Command {
	var flags carrierFlags
	cmd := &cobra.Command{
		Use:   "rf [flags] output.csv|output.wav",
		Short: "Generate a single-tone table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frf, ratio, samples, err := flags.parse()
			if err != nil {
				return err
			}
			spec := lotable.RFSpec{RF: frf, Ratio: ratio, SampleCount: samples}
			return writeSingle(cmd, opts, args[0], spec, flags.sampleRate)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPTCmd(opts *options) *cobra.Command {
	var (
		flags  carrierFlags
		offset string
	)
	cmd := &cobra.Command{
		Use:   "pt [flags] output.csv|output.wav",
		Short: "Generate a dual-tone phase-tracking table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frf, ratio, samples, err := flags.parse()
			if err != nil {
				return err
			}
			off, err := expr.Eval(offset)
			if err != nil {
				return fmt.Errorf("--offset: %w", err)
			}
			spec := lotable.PTSpec{Offset: off, RF: frf, Ratio: ratio, SampleCount: samples}
			return writeSingle(cmd, opts, args[0], spec, flags.sampleRate)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&offset, "offset", defaultOffset, "Tone offset from the carrier (expression)")
	return cmd
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify table.csv|table.wav ...",
		Short: "Report the spectral peaks of existing tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := opts.quantization(cmd, lotable.DefaultQuantization())
			out := cmd.OutOrStdout()
			for _, path := range args {
				t, err := readTableFile(path, q)
				if err != nil {
					return err
				}
				stats, err := t.Analyze()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if _, err := fmt.Fprintf(out, "%s: %s table, %d rows\n", path, t.Kind(), t.Len()); err != nil {
					return err
				}
				for i, s := range stats {
					if _, err := fmt.Fprintf(out, "  tone %d: bin %d (complex %d)  magnitude %.6f  mean %+.6f  orthogonality %+.6f\n",
						i, s.PeakBin, s.ComplexPeakBin, s.PeakMagnitude, s.Mean, s.Orthogonality); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
}

func newPackCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "pack table.csv image.bin",
		Short: "Convert a table to the firmware image format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := opts.quantization(cmd, lotable.DefaultQuantization())
			t, err := readTableFile(args[0], q)
			if err != nil {
				return err
			}
			im, err := lotable.Pack(t, q)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			data, err := im.MarshalBinary()
			if err != nil {
				return err
			}
			if err := writeFileAtomic(args[1], func(f *os.File) error {
				_, err := f.Write(data)
				return err
			}); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s rows, checksum %#08x\n",
				args[1], im.Rows, im.Kind, uint32(im.Checksum))
			return err
		},
	}
}

func newUnpackCmd(opts *options) *cobra.Command {
	var kindName string
	cmd := &cobra.Command{
		Use:   "unpack image.bin table.csv|table.wav",
		Short: "Verify a firmware image and read it back as a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lotable.ParseKind(kindName)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input file: %w", err)
			}
			im, err := lotable.UnmarshalImage(data, kind)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			opts.logf("%s: %d rows, checksum %#08x", args[0], im.Rows, uint32(im.Checksum))

			t, err := im.Table(opts.quantization(cmd, lotable.DefaultQuantization()))
			if err != nil {
				return err
			}
			return writeTableFile(args[1], t, formatForPath(args[1]), defaultWAVRate)
		},
	}
	cmd.Flags().StringVarP(&kindName, "kind", "k", "rf", "Table kind: rf or pt")
	return cmd
}
