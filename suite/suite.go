// Package suite loads YAML test-suite files: a circuit, its registers and
// the ordered expectations to check it against.
package suite

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qtermcirq/paulideck/circuit"
	"github.com/qtermcirq/paulideck/qasm"
	"github.com/qtermcirq/paulideck/verify"
)

const op = "suite"

// Kind selects which check a suite runs.
type Kind string

const (
	// Mapping checks expect entries from the input to the output register.
	Mapping Kind = "mapping"
	// UnaryIteration checks expect entries from the index to the system
	// register with the ancilla register returned to 0.
	UnaryIteration Kind = "unary-iteration"
	// IsZero checks that the zero register ends at 0 for every input.
	IsZero Kind = "is-zero"
)

// requiredRegisters lists the register names each kind reads.
var requiredRegisters = map[Kind][]string{
	Mapping:        {"input", "output"},
	UnaryIteration: {"index", "system", "ancilla"},
	IsZero:         {"input"},
}

// Suite is a parsed suite file.
type Suite struct {
	Name      string
	Kind      Kind
	Circuit   *circuit.Circuit
	Registers []circuit.Register // declaration order
	Expect    []verify.Expectation
	Inputs    []string // is-zero inputs

	mode      *verify.Mode
	tolerance *float64
}

// file is the on-disk layout. Order-sensitive sections stay yaml.Nodes.
type file struct {
	Name           string               `yaml:"name"`
	Check          string               `yaml:"check"`
	Qubits         int                  `yaml:"qubits"`
	QASM           string               `yaml:"qasm"`
	Gates          []circuit.GateRecord `yaml:"gates"`
	Registers      yaml.Node            `yaml:"registers"`
	Mode           string               `yaml:"mode"`
	PhaseTolerance *float64             `yaml:"phase_tolerance"`
	Expect         yaml.Node            `yaml:"expect"`
	Inputs         yaml.Node            `yaml:"inputs"`
}

type registerSpec struct {
	Qubits []int  `yaml:"qubits"`
	Color  string `yaml:"color"`
}

type expectSpec struct {
	Bits  string    `yaml:"bits"`
	Phase yaml.Node `yaml:"phase"`
}

// Load reads a suite file. A qasm path inside it is resolved relative to
// the file's directory.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	s, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes suite YAML. dir resolves a relative qasm path.
func Parse(data []byte, dir string) (*Suite, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}

	s := &Suite{Name: f.Name, Kind: Mapping, tolerance: f.PhaseTolerance}
	if f.Check != "" {
		s.Kind = Kind(strings.ToLower(f.Check))
		if _, ok := requiredRegisters[s.Kind]; !ok {
			return nil, circuit.Invalidf(op, "unknown check %q (want mapping, unary-iteration or is-zero)", f.Check)
		}
	}
	if f.Mode != "" {
		m, err := verify.ParseMode(f.Mode)
		if err != nil {
			return nil, err
		}
		s.mode = &m
	}
	if f.PhaseTolerance != nil && *f.PhaseTolerance < 0 {
		return nil, circuit.Invalidf(op, "phase_tolerance must not be negative, got %v", *f.PhaseTolerance)
	}

	c, err := buildCircuit(f, dir)
	if err != nil {
		return nil, err
	}
	s.Circuit = c

	if s.Registers, err = parseRegisters(&f.Registers); err != nil {
		return nil, err
	}
	for _, reg := range s.Registers {
		if err := c.AnnotateRegister(reg); err != nil {
			return nil, err
		}
	}
	for _, name := range requiredRegisters[s.Kind] {
		if _, ok := s.Register(name); !ok {
			return nil, circuit.Invalidf(op, "%s check needs register %q", s.Kind, name)
		}
	}

	if s.Kind == IsZero {
		if s.Inputs, err = scalars(&f.Inputs, "inputs"); err != nil {
			return nil, err
		}
		if s.Inputs == nil {
			in, _ := s.Register("input")
			if s.Inputs, err = verify.AllInputs(in.Len()); err != nil {
				return nil, circuit.Invalidf(op, "is-zero input register has %d qubits and no inputs list; "+
					"at most %d qubits are enumerated, list inputs explicitly", in.Len(), verify.MaxEnumeratedWidth)
			}
		}
		return s, nil
	}

	if s.Expect, err = parseExpect(&f.Expect); err != nil {
		return nil, err
	}
	if len(s.Expect) == 0 {
		return nil, circuit.Invalidf(op, "expect must list at least one entry")
	}
	return s, nil
}

// Register looks a register up by name.
func (s *Suite) Register(name string) (circuit.Register, bool) {
	for _, r := range s.Registers {
		if r.Name == name {
			return r, true
		}
	}
	return circuit.Register{}, false
}

// Options returns base with the mode and phase tolerance the file sets.
func (s *Suite) Options(base verify.Options) verify.Options {
	if s.mode != nil {
		base.Mode = *s.mode
	}
	if s.tolerance != nil {
		base.PhaseTolerance = *s.tolerance
	}
	return base
}

// Run runs the suite's check with opts as given.
func (s *Suite) Run(ctx context.Context, opts verify.Options) (*verify.Report, error) {
	reg := func(name string) circuit.Register {
		r, _ := s.Register(name)
		return r
	}
	switch s.Kind {
	case UnaryIteration:
		return verify.CheckUnaryIteration(ctx, s.Circuit, reg("index"), reg("system"), reg("ancilla"), s.Expect, opts)
	case IsZero:
		return verify.CheckIsZero(ctx, s.Circuit, reg("input"), reg("zero"), s.Inputs, opts)
	default:
		return verify.Check(ctx, s.Circuit, reg("input"), reg("output"), s.Expect, opts)
	}
}

func buildCircuit(f file, dir string) (*circuit.Circuit, error) {
	if f.Qubits < 0 {
		return nil, circuit.Invalidf(op, "qubits must be positive, got %d", f.Qubits)
	}

	var c *circuit.Circuit
	if f.QASM != "" {
		path := f.QASM
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read qasm: %w", err)
		}
		imported, err := qasm.Parse(string(src))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.QASM, err)
		}
		if c, err = widen(imported, f.Qubits); err != nil {
			return nil, err
		}
	} else {
		if f.Qubits == 0 {
			return nil, circuit.Invalidf(op, "qubits is required when no qasm file is given")
		}
		var err error
		if c, err = circuit.New(f.Qubits); err != nil {
			return nil, err
		}
	}

	for i, rec := range f.Gates {
		if err := c.AddGateRecord(rec); err != nil {
			return nil, fmt.Errorf("gates[%d]: %w", i, err)
		}
	}
	return c, nil
}

// widen copies c onto n qubits when the file asks for more than the QASM
// program declares.
func widen(c *circuit.Circuit, n int) (*circuit.Circuit, error) {
	if n == 0 || n == c.NumQubits() {
		return c, nil
	}
	if n < c.NumQubits() {
		return nil, circuit.Invalidf(op, "qubits is %d but the qasm program declares %d", n, c.NumQubits())
	}
	wide, err := circuit.New(n)
	if err != nil {
		return nil, err
	}
	for _, g := range c.Gates() {
		if err := wide.AddGate(g); err != nil {
			return nil, err
		}
	}
	for q, kv := range c.QubitAnnotation() {
		for k, v := range kv {
			if err := wide.AddQubitAnnotation([]int{q}, k, v); err != nil {
				return nil, err
			}
		}
	}
	return wide, nil
}

// parseRegisters reads "name: [ids]" or "name: {qubits: [ids], color: c}"
// entries in file order.
func parseRegisters(n *yaml.Node) ([]circuit.Register, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, circuit.Invalidf(op, "line %d: registers must be a mapping", n.Line)
	}
	var regs []circuit.Register
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if slices.ContainsFunc(regs, func(r circuit.Register) bool { return r.Name == key.Value }) {
			return nil, circuit.Invalidf(op, "line %d: register %q declared twice", key.Line, key.Value)
		}
		reg := circuit.Register{Name: key.Value}
		switch val.Kind {
		case yaml.SequenceNode:
			if err := val.Decode(&reg.Qubits); err != nil {
				return nil, circuit.Invalidf(op, "line %d: register %q: %v", val.Line, key.Value, err)
			}
		case yaml.MappingNode:
			var spec registerSpec
			if err := val.Decode(&spec); err != nil {
				return nil, circuit.Invalidf(op, "line %d: register %q: %v", val.Line, key.Value, err)
			}
			reg.Qubits, reg.Color = spec.Qubits, spec.Color
		default:
			return nil, circuit.Invalidf(op, "line %d: register %q must be a list of qubits or a mapping", val.Line, key.Value)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// parseExpect reads the expect mapping in file order. Keys and bitstrings
// are taken verbatim so unquoted values such as 010 keep their zeros.
func parseExpect(n *yaml.Node) ([]verify.Expectation, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, circuit.Invalidf(op, "line %d: expect must be a mapping from input to output bitstrings", n.Line)
	}
	var exps []verify.Expectation
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			exps = append(exps, verify.Expect(key.Value, val.Value))
		case yaml.MappingNode:
			var spec expectSpec
			if err := val.Decode(&spec); err != nil {
				return nil, circuit.Invalidf(op, "line %d: expect %q: %v", val.Line, key.Value, err)
			}
			if spec.Phase.Kind == 0 {
				exps = append(exps, verify.Expect(key.Value, spec.Bits))
				continue
			}
			raw, err := scalars(&spec.Phase, "phase")
			if err != nil {
				return nil, err
			}
			phases := make([]float64, len(raw))
			for j, r := range raw {
				if phases[j], err = ParsePhase(r); err != nil {
					return nil, circuit.Invalidf(op, "line %d: expect %q: %v", spec.Phase.Line, key.Value, err)
				}
			}
			exps = append(exps, verify.ExpectPhase(key.Value, spec.Bits, phases...))
		default:
			return nil, circuit.Invalidf(op, "line %d: expect %q must be a bitstring or {bits, phase}", val.Line, key.Value)
		}
	}
	return exps, nil
}

// scalars reads a sequence of scalars verbatim.
func scalars(n *yaml.Node, field string) ([]string, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, circuit.Invalidf(op, "line %d: %s must be a list", n.Line, field)
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, circuit.Invalidf(op, "line %d: %s entries must be scalars", item.Line, field)
		}
		out = append(out, item.Value)
	}
	return out, nil
}
