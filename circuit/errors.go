package circuit

import "fmt"

// ValidationError reports a malformed gate, register, qubit assignment or
// expectation. It is returned before any simulation runs.
type ValidationError struct {
	Op     string // operation that rejected the input, e.g. "add_gate"
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return "invalid input: " + e.Reason
	}
	return e.Op + ": " + e.Reason
}

// Invalidf builds a ValidationError for op.
func Invalidf(op, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
