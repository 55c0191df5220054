package qasm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qtermcirq/paulideck/circuit"
)

// ErrUnrepresentable is returned by Write for gates with no qelib1
// counterpart, such as Y with two controls.
var ErrUnrepresentable = errors.New("gate has no OpenQASM 2.0 form")

// qasmNames maps a kind and control count to the qelib1 gate name.
var qasmNames = map[circuit.Kind][]string{
	circuit.KindX:    {"x", "cx", "ccx"},
	circuit.KindY:    {"y", "cy"},
	circuit.KindZ:    {"z", "cz"},
	circuit.KindSwap: {"swap", "cswap"},
}

// Write generates QASM 2.0 output with a single register q. Controls on
// value 0 are wrapped in x gates; gates with several targets are written
// once per target. Gate parameters are not written.
func Write(c *circuit.Circuit) (string, error) {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n\n", c.NumQubits())

	for i, g := range c.Gates() {
		if err := writeGate(&sb, g); err != nil {
			return "", fmt.Errorf("gate %d (%s): %w", i, g, err)
		}
	}
	return sb.String(), nil
}

func writeGate(sb *strings.Builder, g circuit.Gate) error {
	if g.Kind() == circuit.KindI {
		// controls cannot change a no-op
		for _, t := range g.Targets() {
			fmt.Fprintf(sb, "id q[%d];\n", t)
		}
		return nil
	}
	names := qasmNames[g.Kind()]
	if g.NumControls() >= len(names) {
		return ErrUnrepresentable
	}
	name := names[g.NumControls()]

	var flipped, controls []string
	for i := range g.NumControls() {
		q, v := g.Control(i)
		operand := fmt.Sprintf("q[%d]", q)
		controls = append(controls, operand)
		if v == 0 {
			flipped = append(flipped, operand)
		}
	}

	for _, operand := range flipped {
		fmt.Fprintf(sb, "x %s;\n", operand)
	}
	if g.Kind() == circuit.KindSwap {
		operands := append(controls, fmt.Sprintf("q[%d]", g.Target(0)), fmt.Sprintf("q[%d]", g.Target(1)))
		fmt.Fprintf(sb, "%s %s;\n", name, strings.Join(operands, ", "))
	} else {
		for _, t := range g.Targets() {
			operands := append(controls[:len(controls):len(controls)], fmt.Sprintf("q[%d]", t))
			fmt.Fprintf(sb, "%s %s;\n", name, strings.Join(operands, ", "))
		}
	}
	for _, operand := range flipped {
		fmt.Fprintf(sb, "x %s;\n", operand)
	}
	return nil
}
