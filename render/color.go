package render

import (
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/qtermcirq/paulideck/circuit"
)

// ColorRule picks the wire color of a qubit. It returns false when it has
// no opinion so rules can be chained with FirstOf.
type ColorRule func(qubit int) (lipgloss.Color, bool)

// FirstOf returns the color of the first rule that has one. Nil rules are
// skipped.
func FirstOf(rules ...ColorRule) ColorRule {
	return func(qubit int) (lipgloss.Color, bool) {
		for _, r := range rules {
			if r == nil {
				continue
			}
			if c, ok := r(qubit); ok {
				return c, true
			}
		}
		return "", false
	}
}

// RegisterColors colors qubits by their register_color annotation.
func RegisterColors(c *circuit.Circuit) ColorRule {
	return func(qubit int) (lipgloss.Color, bool) {
		v, ok := c.Annotation(qubit, circuit.AnnotationRegisterColor)
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", false
		}
		return lipgloss.Color(s), true
	}
}

// MismatchColors highlights qubits whose value differs, and then those whose
// phase differs.
func MismatchColors(m Marks) ColorRule {
	return func(qubit int) (lipgloss.Color, bool) {
		switch {
		case slices.Contains(m.Value, qubit):
			return ValueMismatchColor, true
		case slices.Contains(m.Phase, qubit):
			return PhaseMismatchColor, true
		}
		return "", false
	}
}

// Palette assigns fixed colors to qubits.
func Palette(colors map[int]lipgloss.Color) ColorRule {
	return func(qubit int) (lipgloss.Color, bool) {
		c, ok := colors[qubit]
		return c, ok
	}
}
