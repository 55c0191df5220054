package verify

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/qtermcirq/paulideck/circuit"
)

// CheckUnaryIteration checks a unary-iteration circuit: each index bitstring
// must produce its system bitstring while every ancilla qubit returns to 0.
// The three registers must be disjoint. Expected phases, when given, cover
// the system register; ancilla phases are expected to be 0.
func CheckUnaryIteration(ctx context.Context, c *circuit.Circuit, index, system, ancilla circuit.Register, mapping []Expectation, opts Options) (*Report, error) {
	const op = "check_unary_iteration"
	regs := []circuit.Register{index, system, ancilla}
	for i := range regs {
		for _, other := range regs[i+1:] {
			if q, ok := regs[i].Overlaps(other); ok {
				return nil, circuit.Invalidf(op, "qubit %d appears in more than one register", q)
			}
		}
	}
	for _, e := range mapping {
		if err := system.CheckBitstring(op, e.Output); err != nil {
			return nil, err
		}
		if e.ChecksPhase() && len(e.Phase) != system.Len() {
			return nil, circuit.Invalidf(op, "input %q: phase list has %d entries, system register has %d qubits",
				e.Input, len(e.Phase), system.Len())
		}
	}

	out := system.Concat(ancilla)
	zeros := strings.Repeat("0", ancilla.Len())
	exps := make([]Expectation, len(mapping))
	for i, e := range mapping {
		exps[i] = Expectation{Input: e.Input, Output: e.Output + zeros}
		if e.ChecksPhase() {
			exps[i].Phase = slices.Concat(e.Phase, make([]float64, ancilla.Len()))
		}
	}
	report, err := Check(ctx, c, index, out, exps, opts)
	var merr *MismatchError
	if errors.As(err, &merr) {
		if dirty, ok := onlyAncilla(merr, ancilla); ok {
			return report, fmt.Errorf("ancilla qubits %v not returned to 0: %w", dirty, err)
		}
	}
	return report, err
}

// onlyAncilla lists the dirty ancillas when no system qubit mismatched.
func onlyAncilla(merr *MismatchError, ancilla circuit.Register) ([]int, bool) {
	var dirty []int
	for _, m := range merr.Mismatches {
		for _, q := range slices.Concat(m.ValueQubits, m.PhaseQubits) {
			if !slices.Contains(ancilla.Qubits, q) {
				return nil, false
			}
			if !slices.Contains(dirty, q) {
				dirty = append(dirty, q)
			}
		}
	}
	slices.Sort(dirty)
	return dirty, true
}

// CheckIsZero checks that the zero register ends at value 0 for every input.
// An empty zero register means every qubit outside the input register.
func CheckIsZero(ctx context.Context, c *circuit.Circuit, in, zero circuit.Register, inputs []string, opts Options) (*Report, error) {
	if zero.Len() == 0 {
		zero = circuit.Register{Name: zero.Name, Color: zero.Color}
		for q := range c.NumQubits() {
			if !slices.Contains(in.Qubits, q) {
				zero.Qubits = append(zero.Qubits, q)
			}
		}
	}
	want := strings.Repeat("0", zero.Len())
	exps := make([]Expectation, len(inputs))
	for i, input := range inputs {
		exps[i] = Expect(input, want)
	}
	return Check(ctx, c, in, zero, exps, opts)
}

// MaxEnumeratedWidth is the widest register AllInputs enumerates.
const MaxEnumeratedWidth = 20

// AllInputs lists every bitstring of length n in ascending binary order.
// Registers wider than MaxEnumeratedWidth are rejected; list their inputs
// explicitly instead.
func AllInputs(n int) ([]string, error) {
	if n < 0 || n > MaxEnumeratedWidth {
		return nil, circuit.Invalidf("all_inputs",
			"cannot enumerate %d-qubit inputs (at most %d), list the inputs explicitly", n, MaxEnumeratedWidth)
	}
	out := make([]string, 0, 1<<n)
	var sb strings.Builder
	for v := range 1 << n {
		sb.Reset()
		for bit := n - 1; bit >= 0; bit-- {
			sb.WriteByte(byte('0' + (v>>bit)&1))
		}
		out = append(out, sb.String())
	}
	return out, nil
}
