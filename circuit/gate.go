package circuit

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies what a gate does to its targets when it fires.
type Kind int

const (
	KindI Kind = iota
	KindX
	KindY
	KindZ
	KindSwap
)

var kindNames = map[Kind]string{
	KindI:    "I",
	KindX:    "X",
	KindY:    "Y",
	KindZ:    "Z",
	KindSwap: "SWAP",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Arity returns the exact number of targets the kind needs, or 0 when any
// positive number of targets is accepted.
func (k Kind) Arity() int {
	if k == KindSwap {
		return 2
	}
	return 0
}

// ParseKind maps a gate name ("x", "Y", "swap", "id", ...) to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "I", "ID":
		return KindI, nil
	case "X":
		return KindX, nil
	case "Y":
		return KindY, nil
	case "Z":
		return KindZ, nil
	case "SWAP":
		return KindSwap, nil
	}
	return 0, Invalidf("gate", "unsupported gate name %q", name)
}

// Gate is an immutable, shape-checked gate. Qubit ranges are checked when the
// gate is added to a Circuit.
type Gate struct {
	kind     Kind
	targets  []int
	controls []int
	values   []int
	params   []float64
}

// NewGate validates the shape of a gate: non-empty distinct targets, the
// kind's arity, aligned control lists, bit-valued control values, and no qubit
// used both as control and target.
func NewGate(kind Kind, targets, controls, values []int, params ...float64) (Gate, error) {
	const op = "gate"
	if _, ok := kindNames[kind]; !ok {
		return Gate{}, Invalidf(op, "unknown kind %d", int(kind))
	}
	if len(targets) == 0 {
		return Gate{}, Invalidf(op, "%s: target_qubit must not be empty", kind)
	}
	if n := kind.Arity(); n > 0 && len(targets) != n {
		return Gate{}, Invalidf(op, "%s: needs exactly %d target qubits, got %d", kind, n, len(targets))
	}
	if len(controls) != len(values) {
		return Gate{}, Invalidf(op, "%s: control_qubit has %d entries but control_value has %d", kind, len(controls), len(values))
	}
	if q, dup := firstDuplicate(targets); dup {
		return Gate{}, Invalidf(op, "%s: target qubit %d listed twice", kind, q)
	}
	if q, dup := firstDuplicate(controls); dup {
		return Gate{}, Invalidf(op, "%s: control qubit %d listed twice", kind, q)
	}
	for _, c := range controls {
		if slices.Contains(targets, c) {
			return Gate{}, Invalidf(op, "%s: qubit %d is both control and target", kind, c)
		}
	}
	for i, v := range values {
		if v != 0 && v != 1 {
			return Gate{}, Invalidf(op, "%s: control_value[%d] must be 0 or 1, got %d", kind, i, v)
		}
	}
	for _, q := range slices.Concat(targets, controls) {
		if q < 0 {
			return Gate{}, Invalidf(op, "%s: negative qubit id %d", kind, q)
		}
	}

	return Gate{
		kind:     kind,
		targets:  slices.Clone(targets),
		controls: slices.Clone(controls),
		values:   slices.Clone(values),
		params:   slices.Clone(params),
	}, nil
}

// MustGate is NewGate for statically known gates; it panics on a shape error.
func MustGate(kind Kind, targets, controls, values []int) Gate {
	g, err := NewGate(kind, targets, controls, values)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Gate) Kind() Kind { return g.kind }

func (g Gate) NumTargets() int { return len(g.targets) }

func (g Gate) Target(i int) int { return g.targets[i] }

func (g Gate) NumControls() int { return len(g.controls) }

// Control returns the i-th control qubit and the value it must hold.
func (g Gate) Control(i int) (qubit, value int) { return g.controls[i], g.values[i] }

func (g Gate) Targets() []int { return slices.Clone(g.targets) }

func (g Gate) Controls() []int { return slices.Clone(g.controls) }

func (g Gate) ControlValues() []int { return slices.Clone(g.values) }

// Params returns the reserved numeric parameters. The engine ignores them.
func (g Gate) Params() []float64 { return slices.Clone(g.params) }

// References reports whether the gate touches the given qubit.
func (g Gate) References(qubit int) bool {
	return slices.Contains(g.targets, qubit) || slices.Contains(g.controls, qubit)
}

// Span returns the lowest and highest qubit the gate touches.
func (g Gate) Span() (lo, hi int) {
	all := slices.Concat(g.targets, g.controls)
	return slices.Min(all), slices.Max(all)
}

// Record converts the gate back to its external record form.
func (g Gate) Record() GateRecord {
	return GateRecord{
		Name:         strings.ToLower(g.kind.String()),
		TargetQubit:  g.Targets(),
		ControlQubit: g.Controls(),
		ControlValue: g.ControlValues(),
		Parameter:    g.Params(),
	}
}

func (g Gate) String() string {
	if len(g.controls) == 0 {
		return fmt.Sprintf("%s%v", g.kind, g.targets)
	}
	return fmt.Sprintf("%s%v if %v==%v", g.kind, g.targets, g.controls, g.values)
}

// GateRecord is the untyped external gate schema used by importers and
// suite files.
type GateRecord struct {
	Name         string    `yaml:"name" json:"name"`
	TargetQubit  []int     `yaml:"target_qubit" json:"target_qubit"`
	ControlQubit []int     `yaml:"control_qubit,omitempty" json:"control_qubit,omitempty"`
	ControlValue []int     `yaml:"control_value,omitempty" json:"control_value,omitempty"`
	Parameter    []float64 `yaml:"parameter,omitempty" json:"parameter,omitempty"`
}

// Gate validates the record's shape and converts it.
func (r GateRecord) Gate() (Gate, error) {
	kind, err := ParseKind(r.Name)
	if err != nil {
		return Gate{}, err
	}
	return NewGate(kind, r.TargetQubit, r.ControlQubit, r.ControlValue, r.Parameter...)
}

func firstDuplicate(ids []int) (int, bool) {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}
