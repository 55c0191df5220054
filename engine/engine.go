// Package engine executes Pauli gate lists against classical qubit states.
//
// A gate fires when every control qubit holds its required value. A firing
// gate transforms each target using only that target's prior value; phases
// accumulate without wraparound.
package engine

import "github.com/qtermcirq/paulideck/circuit"

// transform applies a firing gate to the state.
type transform func(g circuit.Gate, s *circuit.State)

// transforms is indexed by gate kind. New kinds extend this table.
var transforms = map[circuit.Kind]transform{
	circuit.KindI:    func(circuit.Gate, *circuit.State) {},
	circuit.KindX:    eachTarget(applyX),
	circuit.KindY:    eachTarget(applyY),
	circuit.KindZ:    eachTarget(applyZ),
	circuit.KindSwap: applySwap,
}

func eachTarget(fn func(s *circuit.State, q int)) transform {
	return func(g circuit.Gate, s *circuit.State) {
		for i := range g.NumTargets() {
			fn(s, g.Target(i))
		}
	}
}

func applyX(s *circuit.State, q int) {
	s.Flip(q)
}

// applyY adds +pi/2 on |0> and -pi/2 on |1>, then flips.
func applyY(s *circuit.State, q int) {
	if s.Value(q) == 0 {
		s.AddPhase(q, 0.5)
	} else {
		s.AddPhase(q, -0.5)
	}
	s.Flip(q)
}

func applyZ(s *circuit.State, q int) {
	if s.Value(q) == 1 {
		s.AddPhase(q, 1)
	}
}

func applySwap(g circuit.Gate, s *circuit.State) {
	s.Swap(g.Target(0), g.Target(1))
}

// Fires reports whether g's control predicate holds on s.
func Fires(g circuit.Gate, s *circuit.State) bool {
	for i := range g.NumControls() {
		q, v := g.Control(i)
		if s.Value(q) != v {
			return false
		}
	}
	return true
}

// Step applies one gate to s and reports whether it fired.
func Step(g circuit.Gate, s *circuit.State) bool {
	if !Fires(g, s) {
		return false
	}
	transforms[g.Kind()](g, s)
	return true
}

// Execute applies gates to s in order and returns s.
func Execute(gates []circuit.Gate, s *circuit.State) *circuit.State {
	for _, g := range gates {
		Step(g, s)
	}
	return s
}

// Trace is the outcome of a run: the final state and, per gate, whether it
// fired.
type Trace struct {
	State *circuit.State
	Fired []bool
}

// Run applies gates to s in order and records which of them fired.
func Run(gates []circuit.Gate, s *circuit.State) Trace {
	fired := make([]bool, len(gates))
	for i, g := range gates {
		fired[i] = Step(g, s)
	}
	return Trace{State: s, Fired: fired}
}

// FiredCount returns how many gates fired.
func (t Trace) FiredCount() int {
	n := 0
	for _, f := range t.Fired {
		if f {
			n++
		}
	}
	return n
}
