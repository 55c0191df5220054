package circuit

import (
	"fmt"
	"strings"
)

// Register names an ordered group of qubits used as an input or output bus.
// Name and Color are display metadata only.
type Register struct {
	Name   string
	Color  string
	Qubits []int
}

// Reg builds an anonymous register.
func Reg(qubits ...int) Register { return Register{Qubits: qubits} }

// Named builds a register with a display name.
func Named(name string, qubits ...int) Register { return Register{Name: name, Qubits: qubits} }

func (r Register) Len() int { return len(r.Qubits) }

// Concat returns a register holding r's qubits followed by other's.
func (r Register) Concat(other Register) Register {
	qubits := make([]int, 0, len(r.Qubits)+len(other.Qubits))
	qubits = append(qubits, r.Qubits...)
	qubits = append(qubits, other.Qubits...)
	return Register{Name: r.Name, Color: r.Color, Qubits: qubits}
}

// Overlaps reports the first qubit shared by both registers.
func (r Register) Overlaps(other Register) (int, bool) {
	in := make(map[int]struct{}, len(r.Qubits))
	for _, q := range r.Qubits {
		in[q] = struct{}{}
	}
	for _, q := range other.Qubits {
		if _, ok := in[q]; ok {
			return q, true
		}
	}
	return 0, false
}

func (r Register) label() string {
	if r.Name != "" {
		return fmt.Sprintf("register %q", r.Name)
	}
	return "register"
}

// CheckBitstring verifies that bits has one 0/1 character per register qubit.
func (r Register) CheckBitstring(op, bits string) error {
	if len(bits) != len(r.Qubits) {
		return Invalidf(op, "bitstring %q has length %d, %s has %d qubits", bits, len(bits), r.label(), len(r.Qubits))
	}
	if i := strings.IndexFunc(bits, func(c rune) bool { return c != '0' && c != '1' }); i >= 0 {
		return Invalidf(op, "bitstring %q has non-binary character at position %d", bits, i)
	}
	return nil
}
