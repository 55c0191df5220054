package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qtermcirq/paulideck/circuit"
)

func gate(kind circuit.Kind, targets []int, controls []int, values []int) circuit.Gate {
	return circuit.MustGate(kind, targets, controls, values)
}

func stateOf(values ...int) *circuit.State {
	s := circuit.NewState(len(values))
	for q, v := range values {
		if v == 1 {
			s.Flip(q)
		}
	}
	return s
}

func TestSingleQubitTransforms(t *testing.T) {
	tests := []struct {
		name      string
		kind      circuit.Kind
		prior     int
		wantValue int
		wantPhase float64
	}{
		{"x on 0", circuit.KindX, 0, 1, 0},
		{"x on 1", circuit.KindX, 1, 0, 0},
		{"y on 0", circuit.KindY, 0, 1, 0.5},
		{"y on 1", circuit.KindY, 1, 0, -0.5},
		{"z on 0", circuit.KindZ, 0, 0, 0},
		{"z on 1", circuit.KindZ, 1, 1, 1},
		{"i on 1", circuit.KindI, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stateOf(tt.prior)
			fired := Step(gate(tt.kind, []int{0}, nil, nil), s)
			assert.True(t, fired, "control-free gates always fire")
			assert.Equal(t, tt.wantValue, s.Value(0))
			assert.Equal(t, tt.wantPhase, s.Phase(0))
		})
	}
}

func TestXIsPhaseNeutral(t *testing.T) {
	s := stateOf(0)
	s.AddPhase(0, 0.5)
	for range 5 {
		Step(gate(circuit.KindX, []int{0}, nil, nil), s)
		assert.Equal(t, 0.5, s.Phase(0))
	}
}

func TestPhaseAccumulatesWithoutWraparound(t *testing.T) {
	s := stateOf(1)
	z := gate(circuit.KindZ, []int{0}, nil, nil)
	Execute([]circuit.Gate{z, z, z}, s)
	assert.Equal(t, 3.0, s.Phase(0))

	y := gate(circuit.KindY, []int{0}, nil, nil)
	Execute([]circuit.Gate{y, y}, s) // 1 -> 0 adds -1/2, 0 -> 1 adds +1/2
	assert.Equal(t, 3.0, s.Phase(0))
	assert.Equal(t, 1, s.Value(0))
}

func TestControlPredicate(t *testing.T) {
	x := gate(circuit.KindX, []int{2}, []int{0, 1}, []int{1, 0})

	t.Run("matching controls fire", func(t *testing.T) {
		s := stateOf(1, 0, 0)
		assert.True(t, Fires(x, s))
		assert.True(t, Step(x, s))
		assert.Equal(t, 1, s.Value(2))
	})

	t.Run("non matching controls are identity", func(t *testing.T) {
		for _, init := range [][]int{{0, 0, 1}, {1, 1, 0}, {0, 1, 1}} {
			s := stateOf(init...)
			s.AddPhase(2, 0.5)
			before := s.Clone()
			assert.False(t, Step(x, s))
			assert.True(t, before.Equal(s))
		}
	})

	t.Run("zero valued control", func(t *testing.T) {
		z := gate(circuit.KindZ, []int{1}, []int{0}, []int{0})
		s := stateOf(0, 1)
		assert.True(t, Step(z, s))
		assert.Equal(t, 1.0, s.Phase(1))
	})
}

func TestMultiTargetUsesEachTargetsOwnValue(t *testing.T) {
	s := stateOf(0, 1, 0)
	Step(gate(circuit.KindY, []int{0, 1, 2}, nil, nil), s)
	assert.Equal(t, []int{1, 0, 1}, s.Values())
	assert.Equal(t, []float64{0.5, -0.5, 0.5}, s.Phases())
}

func TestSwapExchangesPairs(t *testing.T) {
	s := stateOf(1, 0, 0)
	s.AddPhase(0, 1)
	s.AddPhase(2, -0.5)
	Step(gate(circuit.KindSwap, []int{2, 0}, nil, nil), s)
	assert.Equal(t, []int{0, 0, 1}, s.Values())
	assert.Equal(t, []float64{-0.5, 0, 1}, s.Phases())
}

func TestRunRecordsFiredFlags(t *testing.T) {
	gates := []circuit.Gate{
		gate(circuit.KindX, []int{0}, nil, nil),
		gate(circuit.KindX, []int{1}, []int{0}, []int{0}),
		gate(circuit.KindZ, []int{0}, []int{1}, []int{0}),
	}
	tr := Run(gates, stateOf(0, 0))
	assert.Equal(t, []bool{true, false, true}, tr.Fired)
	assert.Equal(t, 2, tr.FiredCount())
	assert.Equal(t, []int{1, 0}, tr.State.Values())
	assert.Equal(t, []float64{1, 0}, tr.State.Phases())
}

func TestExecuteIsDeterministic(t *testing.T) {
	const n = 6
	rng := rand.New(rand.NewPCG(7, 11))
	kinds := []circuit.Kind{circuit.KindI, circuit.KindX, circuit.KindY, circuit.KindZ, circuit.KindSwap}

	var gates []circuit.Gate
	for range 200 {
		kind := kinds[rng.IntN(len(kinds))]
		perm := rng.Perm(n)
		targets := perm[:1]
		if kind == circuit.KindSwap {
			targets = perm[:2]
		}
		nc := rng.IntN(3)
		controls := perm[len(targets) : len(targets)+nc]
		values := make([]int, nc)
		for i := range values {
			values[i] = rng.IntN(2)
		}
		gates = append(gates, gate(kind, targets, controls, values))
	}

	for input := range 1 << n {
		init := circuit.NewState(n)
		for q := range n {
			if input>>q&1 == 1 {
				init.Flip(q)
			}
		}
		a := Run(gates, init.Clone())
		b := Run(gates, init.Clone())
		require.True(t, a.State.Equal(b.State), "input %06b", input)
		require.Equal(t, a.Fired, b.Fired)
	}
}
