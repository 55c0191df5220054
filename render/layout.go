package render

import (
	"github.com/qtermcirq/paulideck/circuit"
)

// layout packs gates into columns. A gate depends on the last earlier gate
// whose qubit span overlaps its own and lands one column after the latest
// of those, so gates sharing a column never share a wire segment.
type layout struct {
	column []int   // column of each gate
	owner  [][]int // owner[col][qubit] is the gate drawn there, -1 when free
}

func layoutGates(gates []circuit.Gate, numQubits int) layout {
	lay := layout{column: make([]int, len(gates))}
	next := make([]int, numQubits) // first free column per qubit
	for i, g := range gates {
		lo, hi := g.Span()
		col := 0
		for q := lo; q <= hi; q++ {
			col = max(col, next[q])
		}
		for len(lay.owner) <= col {
			free := make([]int, numQubits)
			for q := range free {
				free[q] = -1
			}
			lay.owner = append(lay.owner, free)
		}
		for q := lo; q <= hi; q++ {
			lay.owner[col][q] = i
			next[q] = col + 1
		}
		lay.column[i] = col
	}
	return lay
}

func (l layout) numColumns() int { return len(l.owner) }

// cellRole is what a gate draws on one qubit of its span.
type cellRole int

const (
	rolePass cellRole = iota // wire crossing the connector
	roleControl
	roleTarget // ⊕ of a controlled X
	roleSwap
	roleBox
)

// cellInfo describes what occupies a single cell in the grid.
type cellInfo struct {
	gate      int // gate index, -1 when the cell is bare wire
	role      cellRole
	name      string
	value     int // control value
	vertAbove bool
	vertBelow bool
}

func (l layout) cell(gates []circuit.Gate, col, qubit int) cellInfo {
	idx := l.owner[col][qubit]
	if idx < 0 {
		return cellInfo{gate: -1}
	}
	g := gates[idx]
	lo, hi := g.Span()
	info := cellInfo{gate: idx, vertAbove: qubit > lo, vertBelow: qubit < hi}
	for i := range g.NumControls() {
		if q, v := g.Control(i); q == qubit {
			info.role, info.value = roleControl, v
			return info
		}
	}
	if !g.References(qubit) {
		return info
	}
	switch {
	case g.Kind() == circuit.KindSwap:
		info.role = roleSwap
	case g.Kind() == circuit.KindX && g.NumControls() > 0:
		info.role = roleTarget
	default:
		info.role, info.name = roleBox, g.Kind().String()
	}
	return info
}

func (c cellInfo) symbol() string {
	switch c.role {
	case roleControl:
		if c.value == 0 {
			return "○"
		}
		return "●"
	case roleTarget:
		return "⊕"
	case roleSwap:
		return "×"
	}
	return "┼"
}
