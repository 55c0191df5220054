package suite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtermcirq/paulideck/circuit"
	"github.com/qtermcirq/paulideck/qasm"
	"github.com/qtermcirq/paulideck/verify"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"0.5", 0.5},
		{"-1", -1},
		{"1/2", 0.5},
		{"-3/4", -0.75},
		{" 1 / 4 ", 0.25},
		{"pi", 1},
		{"PI/2", 0.5},
		{"-pi/2", -0.5},
		{"3*pi/2", 1.5},
		{"2pi", 2},
		{"π/4", 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePhase(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	for _, bad := range []string{"", "half", "1/0", "pi/0", "NaN", "inf", "1/2/3"} {
		_, err := ParsePhase(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadKeepsExpectOrder(t *testing.T) {
	s, err := Load("testdata/controlled.yaml")
	require.NoError(t, err)

	assert.Equal(t, "controlled-pauli", s.Name)
	assert.Equal(t, Mapping, s.Kind)
	assert.Equal(t, 4, s.Circuit.NumQubits())
	assert.Equal(t, 2, s.Circuit.NumGates())

	var inputs []string
	for _, e := range s.Expect {
		inputs = append(inputs, e.Input)
	}
	assert.Equal(t, []string{"00", "01", "10", "11"}, inputs)
	assert.Equal(t, "00", s.Expect[0].Output, "unquoted bitstrings keep leading zeros")
	assert.False(t, s.Expect[0].ChecksPhase())
	assert.Equal(t, []float64{0, 0.5}, s.Expect[3].Phase)

	in, ok := s.Register("input")
	require.True(t, ok)
	assert.Equal(t, circuit.Register{Name: "input", Color: "#7dcfff", Qubits: []int{0, 1}}, in)
	color, ok := s.Circuit.Annotation(1, circuit.AnnotationRegisterColor)
	require.True(t, ok)
	assert.Equal(t, "#7dcfff", color)

	opts := s.Options(verify.Options{Workers: 2})
	assert.Equal(t, verify.CollectAll, opts.Mode)
	assert.Equal(t, 2, opts.Workers)
	assert.Zero(t, opts.PhaseTolerance)

	report, err := s.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Evaluated())
}

func TestLoadQASMSuite(t *testing.T) {
	s, err := Load("testdata/toffoli.yaml")
	require.NoError(t, err)
	assert.Equal(t, "toffoli", s.Name, "name defaults to the file name")
	assert.Equal(t, 4, s.Circuit.NumQubits(), "qasm circuit is widened to qubits")
	assert.Equal(t, 2, s.Circuit.NumGates())
	assert.Equal(t, []float64{1}, s.Expect[3].Phase)

	opts := s.Options(verify.Options{})
	assert.Equal(t, verify.FailFast, opts.Mode)
	assert.Equal(t, 0.001, opts.PhaseTolerance)

	_, err = s.Run(context.Background(), opts)
	require.NoError(t, err)
}

func TestLoadUnaryIteration(t *testing.T) {
	s, err := Load("testdata/unary_iteration.yaml")
	require.NoError(t, err)
	assert.Equal(t, UnaryIteration, s.Kind)
	assert.Equal(t, 37, s.Circuit.NumGates())

	_, err = s.Run(context.Background(), s.Options(verify.Options{}))
	require.NoError(t, err)

	require.NoError(t, s.Circuit.Add(circuit.KindX, []int{2}, []int{0, 1}, []int{1, 1}))
	_, err = s.Run(context.Background(), s.Options(verify.Options{}))
	var merr *verify.MismatchError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "1100", merr.First().Input)
}

func TestParseIsZero(t *testing.T) {
	src := `
check: is-zero
qubits: 3
gates:
  - {name: x, target_qubit: [2], control_qubit: [0], control_value: [1]}
  - {name: x, target_qubit: [2], control_qubit: [0], control_value: [1]}
registers:
  input: [0]
`
	s, err := Parse([]byte(src), ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, s.Inputs)
	report, err := s.Run(context.Background(), verify.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Evaluated())

	s, err = Parse([]byte(src+"  zero: [2]\ninputs: [1]\n"), ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, s.Inputs)
}

func TestParseIsZeroWideRegisterNeedsInputs(t *testing.T) {
	for _, width := range []int{verify.MaxEnumeratedWidth + 1, 63, 64} {
		t.Run(strconv.Itoa(width), func(t *testing.T) {
			ids := make([]string, width)
			for i := range ids {
				ids[i] = strconv.Itoa(i)
			}
			src := fmt.Sprintf("check: is-zero\nqubits: %d\ngates:\n"+
				"  - {name: x, target_qubit: [%d]}\n"+
				"registers:\n  input: [%s]\n  zero: [%d]\n",
				width+1, width, strings.Join(ids, ", "), width)

			_, err := Parse([]byte(src), ".")
			var verr *circuit.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), "list inputs explicitly")

			// an explicit list still runs, and the unconditional flip fails it
			s, err := Parse([]byte(src+"inputs: ["+strings.Repeat("0", width)+"]\n"), ".")
			require.NoError(t, err)
			report, err := s.Run(context.Background(), verify.Options{})
			var merr *verify.MismatchError
			require.ErrorAs(t, err, &merr)
			assert.Equal(t, 1, report.Evaluated())
		})
	}
}

func TestParseErrors(t *testing.T) {
	base := "qubits: 2\nregisters:\n  input: [0]\n  output: [1]\n"
	tests := []struct {
		name       string
		src        string
		validation bool
		wantErr    string
	}{
		{"bad phase list length", base + "expect:\n  \"1\": {bits: \"1\", phase: [0, 0]}\n", true, "phase list has 2 entries"},
		{"bad phase value", base + "expect:\n  \"1\": {bits: \"1\", phase: [half]}\n", true, `phase "half"`},
		{"missing register", "qubits: 2\nregisters:\n  input: [0]\nexpect:\n  \"1\": \"1\"\n", true, `needs register "output"`},
		{"duplicate register", base + "  input: [1]\nexpect:\n  \"1\": \"1\"\n", true, "declared twice"},
		{"register out of range", "qubits: 2\nregisters:\n  input: [0]\n  output: [5]\nexpect:\n  \"1\": \"1\"\n", true, "out of range"},
		{"unknown check", base + "check: sometimes\nexpect:\n  \"1\": \"1\"\n", true, "unknown check"},
		{"unknown mode", base + "mode: sometimes\nexpect:\n  \"1\": \"1\"\n", true, "unknown mode"},
		{"negative tolerance", base + "phase_tolerance: -1\nexpect:\n  \"1\": \"1\"\n", true, "must not be negative"},
		{"no qubits", "registers:\n  input: [0]\n  output: [1]\nexpect:\n  \"1\": \"1\"\n", true, "qubits is required"},
		{"empty expect", base, true, "at least one entry"},
		{"expect is a list", base + "expect: [\"1\"]\n", true, "must be a mapping"},
		{"bad gate", base + "gates:\n  - {name: h, target_qubit: [0]}\nexpect:\n  \"1\": \"1\"\n", true, "unsupported gate name"},
		{"unknown field", base + "expects:\n  \"1\": \"1\"\n", false, "field expects not found"},
		{"missing qasm file", "qasm: nope.qasm\n", false, "read qasm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.src), "testdata")
			if err == nil {
				// bitstring and phase-length problems surface when the check validates
				_, err = s.Run(context.Background(), verify.Options{})
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.validation {
				var verr *circuit.ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestParseQASMErrorsKeepLine(t *testing.T) {
	_, err := Parse([]byte("qasm: bad.qasm\nqubits: 2\n"), "testdata")
	var perr *qasm.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 4, perr.Line)
	assert.ErrorIs(t, err, qasm.ErrUnsupported)
	assert.ErrorContains(t, err, "bad.qasm: qasm line 4")

	_, err = Load("testdata/missing.yaml")
	assert.ErrorContains(t, err, "read suite")
}

func TestWidenKeepsQASMAnnotations(t *testing.T) {
	c, err := qasm.Parse("qreg a[1];\nqreg b[1];\ncx a[0], b[0];")
	require.NoError(t, err)
	wide, err := widen(c, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, wide.NumQubits())
	assert.Equal(t, 1, wide.NumGates())
	name, ok := wide.Annotation(1, circuit.AnnotationRegisterName)
	require.True(t, ok)
	assert.Equal(t, "b", name)

	_, err = widen(c, 1)
	var verr *circuit.ValidationError
	assert.ErrorAs(t, err, &verr)
}
