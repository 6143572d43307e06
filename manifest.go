package lotable

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/go-lotable/internal/expr"
)

//go:embed tables.yaml
var defaultManifest []byte

// Manifest describes a set of tables generated with one quantization.
type Manifest struct {
	ScaleFactor   int         `yaml:"scale_factor"`
	IntegerOutput bool        `yaml:"integer_output"`
	Tables        []TableSpec `yaml:"tables"`
}

// TableSpec is one manifest entry. Numeric fields accept arithmetic
// expressions such as "(500.0/328.0)*(11.0/19.0)" or "77*19". Offset is
// set for pt tables only.
type TableSpec struct {
	Name          string `yaml:"name"`
	Kind          Kind   `yaml:"kind"`
	RF            Expr   `yaml:"frf"`
	Offset        *Expr  `yaml:"offset"`
	RefDivider    Count  `yaml:"ref_divider"`
	RefMultiplier Count  `yaml:"ref_multiplier"`
	SampleCount   Count  `yaml:"sample_count"`
}

// Expr is a float64 decoded from a number or an arithmetic expression.
type Expr float64

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	v, err := expr.Eval(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*e = Expr(v)
	return nil
}

// Count is an int decoded from a number or an arithmetic expression.
type Count int

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Count) UnmarshalYAML(node *yaml.Node) error {
	v, err := expr.EvalInt(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*c = Count(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	kind, err := ParseKind(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*k = kind
	return nil
}

// DefaultManifest returns the built-in reference table set.
func DefaultManifest() *Manifest {
	m, err := ParseManifest(defaultManifest)
	if err != nil {
		panic(fmt.Sprintf("lotable: embedded manifest: %v", err))
	}
	return m
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ParseManifest decodes and validates a YAML manifest. Unknown keys are
// rejected. A missing scale_factor selects DefaultScaleFactor.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	m := Manifest{ScaleFactor: DefaultScaleFactor}
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the quantization and every table entry.
func (m *Manifest) Validate() error {
	if err := m.Quantization().Validate(); err != nil {
		return err
	}
	if len(m.Tables) == 0 {
		return fmt.Errorf("%w: manifest lists no tables", ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(m.Tables))
	for i, spec := range m.Tables {
		if spec.Name == "" {
			return fmt.Errorf("%w: table %d has no name", ErrInvalidConfig, i+1)
		}
		if seen[spec.Name] {
			return fmt.Errorf("%w: duplicate table name %q", ErrInvalidConfig, spec.Name)
		}
		seen[spec.Name] = true

		if spec.Kind != KindRF && spec.Kind != KindPT {
			return fmt.Errorf("%w: table %q has unknown kind", ErrInvalidConfig, spec.Name)
		}
		if spec.Kind == KindRF && spec.Offset != nil {
			return fmt.Errorf("%w: table %q: offset applies to pt tables only", ErrInvalidConfig, spec.Name)
		}
		if err := spec.ratio().Validate(); err != nil {
			return fmt.Errorf("table %q: %w", spec.Name, err)
		}
	}
	return nil
}

// Quantization returns the manifest's quantization parameters.
func (m *Manifest) Quantization() QuantizationConfig {
	return QuantizationConfig{ScaleFactor: m.ScaleFactor, IntegerOutput: m.IntegerOutput}
}

func (s TableSpec) ratio() ClockRatio {
	return ClockRatio{RefDivider: int(s.RefDivider), RefMultiplier: int(s.RefMultiplier)}
}

// Generator returns the RF or PT description of the entry.
func (s TableSpec) Generator() Generator {
	if s.Kind == KindPT {
		var offset float64
		if s.Offset != nil {
			offset = float64(*s.Offset)
		}
		return PTSpec{
			Offset:      offset,
			RF:          float64(s.RF),
			Ratio:       s.ratio(),
			SampleCount: int(s.SampleCount),
		}
	}
	return RFSpec{RF: float64(s.RF), Ratio: s.ratio(), SampleCount: int(s.SampleCount)}
}

// Generate builds the entry's table and its summary.
func (s TableSpec) Generate(q QuantizationConfig) (*Table, fmt.Stringer, error) {
	t, plan, err := s.Generator().Generate(q)
	if err != nil {
		return nil, nil, fmt.Errorf("table %q: %w", s.Name, err)
	}
	return t, plan, nil
}
