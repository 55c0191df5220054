package verify

import (
	"fmt"
	"strings"
)

// Mismatch is the diff between the expected and simulated output of one
// input. ValueQubits and PhaseQubits list the output qubit ids whose value,
// respectively phase, differ.
type Mismatch struct {
	Input         string
	ExpectedBits  string
	ActualBits    string
	ExpectedPhase []float64
	ActualPhase   []float64
	ValueQubits   []int
	PhaseQubits   []int
}

func (m Mismatch) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "In bitstring: %s\n", m.Input)
	fmt.Fprintf(&sb, "Out bitstring expect: %s\n", m.ExpectedBits)
	fmt.Fprintf(&sb, "Out bitstring actual: %s", m.ActualBits)
	if m.ExpectedPhase != nil {
		fmt.Fprintf(&sb, "\nOut phase expect (unit: pi): %v", m.ExpectedPhase)
		fmt.Fprintf(&sb, "\nOut phase actual (unit: pi): %v", m.ActualPhase)
	}
	return sb.String()
}

// MismatchError is returned when simulated outputs differ from the
// expectations. Fail-fast checks carry exactly one mismatch.
type MismatchError struct {
	Mismatches []Mismatch
}

func (e *MismatchError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = m.String()
	}
	return strings.Join(parts, "\n\n")
}

// First returns the earliest mismatch in declaration order.
func (e *MismatchError) First() Mismatch { return e.Mismatches[0] }
