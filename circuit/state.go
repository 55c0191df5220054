package circuit

import (
	"math"
	"slices"
	"strings"
)

// State is the classical value and accumulated phase of every qubit during
// one evaluation. Phases are stored in units of pi; multiples of 1/2 stay
// exact under addition.
type State struct {
	values []int
	phases []float64
}

// NewState returns n qubits at value 0, phase 0.
func NewState(n int) *State {
	return &State{values: make([]int, n), phases: make([]float64, n)}
}

// StateFromBits sets reg's qubits from a bitstring, most significant first,
// on a fresh state of n qubits.
func StateFromBits(n int, reg Register, bits string) (*State, error) {
	if err := reg.CheckBitstring("set_qubit_value", bits); err != nil {
		return nil, err
	}
	s := NewState(n)
	vals := make([]int, len(bits))
	for i := range bits {
		vals[i] = int(bits[i] - '0')
	}
	if err := s.SetQubitValue(reg.Qubits, vals); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) NumQubits() int { return len(s.values) }

func (s *State) Value(q int) int { return s.values[q] }

// Phase returns the accumulated phase of q in units of pi.
func (s *State) Phase(q int) float64 { return s.phases[q] }

// PhaseRadians returns the accumulated phase of q in radians.
func (s *State) PhaseRadians(q int) float64 { return s.phases[q] * math.Pi }

// Values returns a copy of all qubit values.
func (s *State) Values() []int { return slices.Clone(s.values) }

// Phases returns a copy of all phases in units of pi.
func (s *State) Phases() []float64 { return slices.Clone(s.phases) }

// Flip inverts the value of q.
func (s *State) Flip(q int) { s.values[q] ^= 1 }

// AddPhase adds p (units of pi) to the phase of q.
func (s *State) AddPhase(q int, p float64) { s.phases[q] += p }

// Swap exchanges value and phase of a and b.
func (s *State) Swap(a, b int) {
	s.values[a], s.values[b] = s.values[b], s.values[a]
	s.phases[a], s.phases[b] = s.phases[b], s.phases[a]
}

// SetQubitValue overwrites the values of the listed qubits.
func (s *State) SetQubitValue(qubits, values []int) error {
	const op = "set_qubit_value"
	if len(qubits) != len(values) {
		return Invalidf(op, "%d qubit ids but %d values", len(qubits), len(values))
	}
	for i, q := range qubits {
		if q < 0 || q >= len(s.values) {
			return Invalidf(op, "qubit %d out of range [0, %d)", q, len(s.values))
		}
		if values[i] != 0 && values[i] != 1 {
			return Invalidf(op, "qubit %d: value must be 0 or 1, got %d", q, values[i])
		}
	}
	for i, q := range qubits {
		s.values[q] = values[i]
	}
	return nil
}

// Bits reads reg's qubit values as a bitstring.
func (s *State) Bits(reg Register) string {
	var sb strings.Builder
	sb.Grow(len(reg.Qubits))
	for _, q := range reg.Qubits {
		sb.WriteByte(byte('0' + s.values[q]))
	}
	return sb.String()
}

// PhasesOf reads reg's phases in units of pi.
func (s *State) PhasesOf(reg Register) []float64 {
	out := make([]float64, len(reg.Qubits))
	for i, q := range reg.Qubits {
		out[i] = s.phases[q]
	}
	return out
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	return &State{values: slices.Clone(s.values), phases: slices.Clone(s.phases)}
}

// Equal reports whether both states hold identical values and phases.
func (s *State) Equal(o *State) bool {
	return slices.Equal(s.values, o.values) && slices.Equal(s.phases, o.phases)
}
