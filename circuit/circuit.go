// Package circuit holds the immutable description of a classically
// controlled Pauli circuit and the per-evaluation qubit state.
package circuit

import (
	"maps"
	"slices"
)

// Annotation keys written by AnnotateRegister.
const (
	AnnotationRegisterName  = "register_name"
	AnnotationRegisterColor = "register_color"
)

// Circuit is a fixed-width, append-only gate list. Gates are applied in the
// order they were added.
type Circuit struct {
	numQubits  int
	gates      []Gate
	annotation map[int]map[string]any
}

// New creates an empty circuit over numQubits qubits.
func New(numQubits int) (*Circuit, error) {
	if numQubits <= 0 {
		return nil, Invalidf("new_circuit", "number of qubits must be positive, got %d", numQubits)
	}
	ann := make(map[int]map[string]any, numQubits)
	for q := range numQubits {
		ann[q] = map[string]any{}
	}
	return &Circuit{numQubits: numQubits, annotation: ann}, nil
}

// MustNew is New for constant sizes.
func MustNew(numQubits int) *Circuit {
	c, err := New(numQubits)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Circuit) NumQubits() int { return c.numQubits }

func (c *Circuit) NumGates() int { return len(c.gates) }

// Gates returns the gate list in application order. The slice is a copy.
func (c *Circuit) Gates() []Gate { return slices.Clone(c.gates) }

// Gate returns the i-th gate.
func (c *Circuit) Gate(i int) Gate { return c.gates[i] }

// AddGate range-checks g against the circuit and appends it.
func (c *Circuit) AddGate(g Gate) error {
	const op = "add_gate"
	if g.NumTargets() == 0 {
		return Invalidf(op, "gate has no targets")
	}
	for _, q := range g.targets {
		if !c.inRange(q) {
			return Invalidf(op, "%s: target qubit %d out of range [0, %d)", g.kind, q, c.numQubits)
		}
	}
	for _, q := range g.controls {
		if !c.inRange(q) {
			return Invalidf(op, "%s: control qubit %d out of range [0, %d)", g.kind, q, c.numQubits)
		}
	}
	c.gates = append(c.gates, g)
	return nil
}

// AddGateRecord validates an external gate record and appends it.
func (c *Circuit) AddGateRecord(r GateRecord) error {
	g, err := r.Gate()
	if err != nil {
		return err
	}
	return c.AddGate(g)
}

// Add builds a gate from its parts and appends it.
func (c *Circuit) Add(kind Kind, targets, controls, values []int) error {
	g, err := NewGate(kind, targets, controls, values)
	if err != nil {
		return err
	}
	return c.AddGate(g)
}

// CheckRegister verifies that every qubit id of reg is in range and listed
// once.
func (c *Circuit) CheckRegister(reg Register) error {
	const op = "register"
	for _, q := range reg.Qubits {
		if !c.inRange(q) {
			return Invalidf(op, "%s: qubit %d out of range [0, %d)", reg.label(), q, c.numQubits)
		}
	}
	if q, dup := firstDuplicate(reg.Qubits); dup {
		return Invalidf(op, "%s: qubit %d listed twice", reg.label(), q)
	}
	return nil
}

// AddQubitAnnotation sets key=value on each listed qubit, keeping other keys.
func (c *Circuit) AddQubitAnnotation(qubits []int, key string, value any) error {
	const op = "add_qubit_annotation"
	for _, q := range qubits {
		if !c.inRange(q) {
			return Invalidf(op, "qubit %d out of range [0, %d)", q, c.numQubits)
		}
	}
	for _, q := range qubits {
		c.annotation[q][key] = value
	}
	return nil
}

// AnnotateRegister records the register's display name and color on its
// qubits. Empty fields are skipped.
func (c *Circuit) AnnotateRegister(reg Register) error {
	if err := c.CheckRegister(reg); err != nil {
		return err
	}
	if reg.Name != "" {
		if err := c.AddQubitAnnotation(reg.Qubits, AnnotationRegisterName, reg.Name); err != nil {
			return err
		}
	}
	if reg.Color != "" {
		return c.AddQubitAnnotation(reg.Qubits, AnnotationRegisterColor, reg.Color)
	}
	return nil
}

// QubitAnnotation returns a copy of every qubit's annotations.
func (c *Circuit) QubitAnnotation() map[int]map[string]any {
	out := make(map[int]map[string]any, len(c.annotation))
	for q, kv := range c.annotation {
		out[q] = maps.Clone(kv)
	}
	return out
}

// Annotation looks up a single annotation value.
func (c *Circuit) Annotation(qubit int, key string) (any, bool) {
	kv, ok := c.annotation[qubit]
	if !ok {
		return nil, false
	}
	v, ok := kv[key]
	return v, ok
}

// NewState returns a zeroed state sized for the circuit.
func (c *Circuit) NewState() *State { return NewState(c.numQubits) }

func (c *Circuit) inRange(q int) bool { return q >= 0 && q < c.numQubits }
