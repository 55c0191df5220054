package verify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtermcirq/paulideck/circuit"
)

type ctl struct{ q, v int }

// rangedUnaryIteration builds the L=8 ranged unary iteration over the index
// register [0 1 3 5] with ancillas [2 4 6 7] and system qubits 8..15. Index i
// in [8, 16) applies Y to the first i-8 system qubits.
func rangedUnaryIteration(t *testing.T) *circuit.Circuit {
	t.Helper()
	type step struct {
		kind   circuit.Kind
		target int
		ctls   []ctl
	}
	x := func(target int, ctls ...ctl) step { return step{circuit.KindX, target, ctls} }
	y := func(target int, ctls ...ctl) step { return step{circuit.KindY, target, ctls} }
	steps := []step{
		x(7, ctl{0, 1}),
		x(2, ctl{0, 1}, ctl{1, 0}),
		x(4, ctl{2, 1}, ctl{3, 0}),
		x(6, ctl{4, 1}, ctl{5, 0}),
		x(7, ctl{6, 1}),
		y(8, ctl{7, 1}),
		x(6, ctl{4, 1}),
		x(7, ctl{6, 1}),
		y(9, ctl{7, 1}),
		x(6, ctl{4, 1}, ctl{5, 1}),
		x(4, ctl{2, 1}),
		x(6, ctl{4, 1}, ctl{5, 0}),
		x(7, ctl{6, 1}),
		y(10, ctl{7, 1}),
		x(6, ctl{4, 1}),
		x(7, ctl{6, 1}),
		y(11, ctl{7, 1}),
		x(6, ctl{4, 1}, ctl{5, 1}),
		x(4, ctl{2, 1}, ctl{3, 1}),
		x(2, ctl{0, 1}),
		x(4, ctl{2, 1}, ctl{3, 0}),
		x(6, ctl{4, 1}, ctl{5, 0}),
		x(7, ctl{6, 1}),
		y(12, ctl{7, 1}),
		x(6, ctl{4, 1}),
		x(7, ctl{6, 1}),
		y(13, ctl{7, 1}),
		x(6, ctl{4, 1}, ctl{5, 1}),
		x(4, ctl{2, 1}),
		x(6, ctl{4, 1}, ctl{5, 0}),
		x(7, ctl{6, 1}),
		y(14, ctl{7, 1}),
		x(6, ctl{4, 1}),
		x(7, ctl{6, 1}),
		x(6, ctl{4, 1}, ctl{5, 1}),
		x(4, ctl{2, 1}, ctl{3, 1}),
		x(2, ctl{0, 1}, ctl{1, 1}),
	}

	c := circuit.MustNew(16)
	for _, s := range steps {
		var qs, vs []int
		for _, cv := range s.ctls {
			qs = append(qs, cv.q)
			vs = append(vs, cv.v)
		}
		require.NoError(t, c.Add(s.kind, []int{s.target}, qs, vs))
	}
	return c
}

var (
	unaryIndex   = circuit.Named("index", 0, 1, 3, 5)
	unarySystem  = circuit.Named("system", 8, 9, 10, 11, 12, 13, 14, 15)
	unaryAncilla = circuit.Named("ancilla", 2, 4, 6, 7)
)

func unaryMapping() []Expectation {
	return []Expectation{
		Expect("1000", "00000000"),
		Expect("1001", "10000000"),
		Expect("1010", "11000000"),
		Expect("1011", "11100000"),
		Expect("1100", "11110000"),
		Expect("1101", "11111000"),
		Expect("1110", "11111100"),
		Expect("1111", "11111110"),
	}
}

func TestCheckUnaryIterationPasses(t *testing.T) {
	c := rangedUnaryIteration(t)
	report, err := CheckUnaryIteration(context.Background(), c, unaryIndex, unarySystem, unaryAncilla, unaryMapping(), Options{})
	require.NoError(t, err)
	assert.Equal(t, 8, report.Evaluated())
}

func TestCheckUnaryIterationPhases(t *testing.T) {
	c := rangedUnaryIteration(t)
	mapping := unaryMapping()
	for i := range mapping {
		phase := make([]float64, unarySystem.Len())
		for k := range i {
			phase[k] = 0.5
		}
		mapping[i] = ExpectPhase(mapping[i].Input, mapping[i].Output, phase...)
	}
	_, err := CheckUnaryIteration(context.Background(), c, unaryIndex, unarySystem, unaryAncilla, mapping, Options{Mode: CollectAll, Workers: 3})
	require.NoError(t, err)
}

func TestCheckUnaryIterationDetectsDirtyAncilla(t *testing.T) {
	c := rangedUnaryIteration(t)
	require.NoError(t, c.Add(circuit.KindX, []int{2}, []int{0, 1}, []int{1, 1}))

	_, err := CheckUnaryIteration(context.Background(), c, unaryIndex, unarySystem, unaryAncilla, unaryMapping(), Options{})
	var merr *MismatchError
	require.ErrorAs(t, err, &merr)
	m := merr.First()
	assert.Equal(t, "1100", m.Input)
	assert.Equal(t, "111100000000", m.ExpectedBits)
	assert.Equal(t, "111100001000", m.ActualBits)
	assert.Equal(t, []int{2}, m.ValueQubits)
	assert.True(t, strings.HasPrefix(err.Error(), "ancilla qubits [2] not returned to 0: In bitstring: 1100\n"))

	report, err := CheckUnaryIteration(context.Background(), c, unaryIndex, unarySystem, unaryAncilla, unaryMapping(), Options{Mode: ReportOnly})
	require.NoError(t, err)
	var failed []string
	for _, mm := range report.Mismatches {
		failed = append(failed, mm.Input)
	}
	assert.Equal(t, []string{"1100", "1101", "1110", "1111"}, failed)
}

func TestCheckUnaryIterationRejectsOverlap(t *testing.T) {
	c := rangedUnaryIteration(t)
	tests := []struct {
		name                   string
		index, system, ancilla circuit.Register
		mapping                []Expectation
		wantErr                string
	}{
		{"index and ancilla", unaryIndex, unarySystem, circuit.Reg(2, 3), unaryMapping(), "qubit 3 appears in more than one register"},
		{"system and ancilla", unaryIndex, unarySystem, circuit.Reg(2, 8), unaryMapping(), "qubit 8 appears"},
		{"short system bitstring", unaryIndex, unarySystem, unaryAncilla, []Expectation{Expect("1000", "000")}, "has length 3"},
		{"phase list length", unaryIndex, unarySystem, unaryAncilla, []Expectation{ExpectPhase("1000", "00000000", 0)}, "system register has 8 qubits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckUnaryIteration(context.Background(), c, tt.index, tt.system, tt.ancilla, tt.mapping, Options{})
			var verr *circuit.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "check_unary_iteration", verr.Op)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCheckIsZero(t *testing.T) {
	// q2 = q0 AND q1 computed and uncomputed, q3 left dirty when q0=1.
	c := circuit.MustNew(4)
	require.NoError(t, c.Add(circuit.KindX, []int{2}, []int{0, 1}, []int{1, 1}))
	require.NoError(t, c.Add(circuit.KindZ, []int{2}, nil, nil))
	require.NoError(t, c.Add(circuit.KindX, []int{2}, []int{0, 1}, []int{1, 1}))
	require.NoError(t, c.Add(circuit.KindX, []int{3}, []int{0}, []int{1}))

	in := circuit.Reg(0, 1)
	inputs, err := AllInputs(2)
	require.NoError(t, err)
	_, err = CheckIsZero(context.Background(), c, in, circuit.Reg(2), inputs, Options{})
	require.NoError(t, err)

	report, err := CheckIsZero(context.Background(), c, in, circuit.Register{}, inputs, Options{Mode: ReportOnly})
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 2)
	assert.Equal(t, "10", report.Mismatches[0].Input)
	assert.Equal(t, "01", report.Mismatches[0].ActualBits)
	assert.Equal(t, []int{3}, report.Mismatches[0].ValueQubits)
	assert.Equal(t, "11", report.Mismatches[1].Input)
}

func TestAllInputs(t *testing.T) {
	tests := []struct {
		n    int
		want []string
	}{
		{0, []string{""}},
		{1, []string{"0", "1"}},
		{2, []string{"00", "01", "10", "11"}},
	}
	for _, tt := range tests {
		got, err := AllInputs(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	wide, err := AllInputs(MaxEnumeratedWidth)
	require.NoError(t, err)
	assert.Len(t, wide, 1<<MaxEnumeratedWidth)
	assert.Equal(t, strings.Repeat("1", MaxEnumeratedWidth), wide[len(wide)-1])

	for _, n := range []int{MaxEnumeratedWidth + 1, 63, 64, 65, -1} {
		got, err := AllInputs(n)
		var verr *circuit.ValidationError
		assert.ErrorAs(t, err, &verr, "width %d", n)
		assert.Nil(t, got, "width %d", n)
	}
}
