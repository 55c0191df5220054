package verify

import (
	"github.com/qtermcirq/paulideck/circuit"
)

// Expectation maps one input bitstring to the output it must produce. Phase
// is nil when phases are not checked; otherwise it holds one phase per
// output qubit in units of pi.
type Expectation struct {
	Input  string
	Output string
	Phase  []float64
}

// Expect checks output bits only.
func Expect(input, output string) Expectation {
	return Expectation{Input: input, Output: output}
}

// ExpectPhase checks output bits and phases (units of pi).
func ExpectPhase(input, output string, phase ...float64) Expectation {
	if phase == nil {
		phase = []float64{}
	}
	return Expectation{Input: input, Output: output, Phase: phase}
}

// ChecksPhase reports whether the expectation carries a phase list.
func (e Expectation) ChecksPhase() bool { return e.Phase != nil }

// validate runs every precondition of Check before anything is simulated.
func validate(c *circuit.Circuit, in, out circuit.Register, exps []Expectation) error {
	const op = "check"
	if err := c.CheckRegister(in); err != nil {
		return err
	}
	if err := c.CheckRegister(out); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(exps))
	for _, e := range exps {
		if err := in.CheckBitstring(op, e.Input); err != nil {
			return err
		}
		if _, dup := seen[e.Input]; dup {
			return circuit.Invalidf(op, "input %q listed twice", e.Input)
		}
		seen[e.Input] = struct{}{}
		if err := out.CheckBitstring(op, e.Output); err != nil {
			return err
		}
		if e.ChecksPhase() && len(e.Phase) != out.Len() {
			return circuit.Invalidf(op, "input %q: phase list has %d entries, output register has %d qubits",
				e.Input, len(e.Phase), out.Len())
		}
	}
	return nil
}
