// Package render draws circuits as text diagrams: one wire per qubit, gates
// packed into columns, the initial value on the left and the final value and
// phase on the right.
package render

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/qtermcirq/paulideck/circuit"
	"github.com/qtermcirq/paulideck/engine"
	"github.com/qtermcirq/paulideck/verify"
)

// Marks lists output qubits whose value or phase did not match.
type Marks struct {
	Value []int
	Phase []int
}

// MarksOf extracts the marked qubits of a mismatch.
func MarksOf(m verify.Mismatch) Marks {
	return Marks{Value: m.ValueQubits, Phase: m.PhaseQubits}
}

// Visualizer renders circuits and implements verify.Reporter.
type Visualizer struct {
	out   io.Writer
	wires ColorRule
	color bool
	err   error
}

var _ verify.Reporter = (*Visualizer)(nil)

// Option configures a Visualizer.
type Option func(*Visualizer)

// WithWireColors adds a color rule consulted after mismatch highlighting and
// before register colors.
func WithWireColors(rule ColorRule) Option {
	return func(v *Visualizer) { v.wires = rule }
}

// WithColor toggles ANSI styling. Without it every rendered string is plain.
func WithColor(on bool) Option {
	return func(v *Visualizer) { v.color = on }
}

// New returns a Visualizer writing to out.
func New(out io.Writer, opts ...Option) *Visualizer {
	v := &Visualizer{out: out, color: true}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Err returns the first write error hit while reporting.
func (v *Visualizer) Err() error { return v.err }

// scene is everything one diagram shows.
type scene struct {
	c       *circuit.Circuit
	gates   []circuit.Gate
	initial *circuit.State
	current *circuit.State
	fired   []bool // fired flags of the gates applied so far
	cursor  int    // gate to frame, -1 for none
	marks   Marks
}

// Render returns the diagram of a finished run. tr.Fired may be nil when the
// run was not traced.
func (v *Visualizer) Render(c *circuit.Circuit, initial *circuit.State, tr engine.Trace, marks Marks) string {
	fired := tr.Fired
	if fired == nil {
		fired = make([]bool, c.NumGates())
		for i := range fired {
			fired[i] = true
		}
	}
	return v.render(scene{
		c:       c,
		gates:   c.Gates(),
		initial: initial,
		current: tr.State,
		fired:   fired,
		cursor:  -1,
		marks:   marks,
	})
}

// Draw writes the diagram of a finished run.
func (v *Visualizer) Draw(c *circuit.Circuit, initial *circuit.State, tr engine.Trace, marks Marks) error {
	_, err := io.WriteString(v.out, v.Render(c, initial, tr, marks)+"\n")
	return err
}

// DrawInputs runs the circuit once per input bitstring written to in and
// draws each run under an "input <bits>" heading. A nil inputs list means
// every bitstring of in's width. All inputs are checked before anything is
// drawn.
func (v *Visualizer) DrawInputs(c *circuit.Circuit, in circuit.Register, inputs []string) error {
	const op = "draw_inputs"
	if err := c.CheckRegister(in); err != nil {
		return err
	}
	if inputs == nil {
		all, err := verify.AllInputs(in.Len())
		if err != nil {
			return err
		}
		inputs = all
	}
	states := make([]*circuit.State, len(inputs))
	for i, bits := range inputs {
		if err := in.CheckBitstring(op, bits); err != nil {
			return err
		}
		s, err := circuit.StateFromBits(c.NumQubits(), in, bits)
		if err != nil {
			return err
		}
		states[i] = s
	}

	gates := c.Gates()
	for i, bits := range inputs {
		heading := "input " + bits
		if v.color {
			heading = titleStyle.Render(heading)
		}
		if _, err := fmt.Fprintf(v.out, "%s\n", heading); err != nil {
			return err
		}
		if err := v.Draw(c, states[i], engine.Run(gates, states[i].Clone()), Marks{}); err != nil {
			return err
		}
	}
	return nil
}

// ReportMismatch draws the failing evaluation with its mismatched qubits
// highlighted, under the mismatch message.
func (v *Visualizer) ReportMismatch(c *circuit.Circuit, ev verify.Evaluation, m verify.Mismatch) {
	if v.err != nil {
		return
	}
	lines := strings.Split(m.String(), "\n")
	for i, line := range lines {
		if v.color {
			lines[i] = messageStyle.Render(line)
		}
	}
	if _, err := fmt.Fprintf(v.out, "%s\n", strings.Join(lines, "\n")); err != nil {
		v.err = err
		return
	}
	if err := v.Draw(c, ev.Initial, ev.Trace, MarksOf(m)); err != nil {
		v.err = err
	}
}

// Frame is one step of a gate-by-gate run.
type Frame struct {
	Step  int // gates applied so far
	Gate  int // index of the gate just applied, -1 for the initial frame
	State *circuit.State
	Fired []bool
	Text  string
}

// GateFired reports whether the gate applied in this frame fired.
func (f Frame) GateFired() bool {
	return f.Gate >= 0 && f.Fired[f.Gate]
}

// Plain returns the frame text without ANSI styling.
func (f Frame) Plain() string { return ansi.Strip(f.Text) }

// Frames runs the circuit one gate at a time from initial and yields
// len(gates)+1 frames, the first before any gate. final marks mismatched
// qubits on the last frame only. initial is not modified. Each frame owns
// its State and Fired slices.
func (v *Visualizer) Frames(c *circuit.Circuit, initial *circuit.State, final Marks) iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		gates := c.Gates()
		state := initial.Clone()
		fired := make([]bool, 0, len(gates))
		sc := scene{c: c, gates: gates, initial: initial, cursor: -1}

		frame := func(gate int) Frame {
			sc.current, sc.fired, sc.cursor = state, fired, gate
			sc.marks = Marks{}
			if gate == len(gates)-1 {
				sc.marks = final
			}
			return Frame{
				Step:  len(fired),
				Gate:  gate,
				State: state.Clone(),
				Fired: slices.Clone(fired),
				Text:  v.render(sc),
			}
		}

		if !yield(frame(-1)) {
			return
		}
		for i, g := range gates {
			fired = append(fired, engine.Step(g, state))
			if !yield(frame(i)) {
				return
			}
		}
	}
}

func (v *Visualizer) render(sc scene) string {
	n := sc.c.NumQubits()
	lay := layoutGates(sc.gates, n)
	wires := FirstOf(MismatchColors(sc.marks), v.wires, RegisterColors(sc.c))

	labels := make([]string, n)
	labelW := 0
	for q := range n {
		labels[q] = qubitLabel(sc.c, q)
		labelW = max(labelW, ansi.StringWidth(labels[q]))
	}
	labelW++
	leadW := labelW + ansi.StringWidth(ket(0)) + 1

	var sb strings.Builder
	title := fmt.Sprintf("%d qubits, %d gates", n, len(sc.gates))
	if sc.cursor >= 0 {
		title += fmt.Sprintf(", step %d: %s", sc.cursor+1, sc.gates[sc.cursor])
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	header := strings.Repeat(" ", leadW)
	for col := range lay.numColumns() {
		header += dimStyle.Render(padCenter(strconv.Itoa(col), cellW))
	}
	sb.WriteString(strings.TrimRight(header, " ") + "\n")

	for q := range n {
		wire := lipgloss.NewStyle()
		label := qubitLabelStyle
		if color, ok := wires(q); ok {
			wire = wire.Foreground(color)
			label = label.Foreground(color)
		}

		topLine := strings.Repeat(" ", leadW)
		midLine := label.Render(padRight(labels[q], labelW)) + ket(sc.initial.Value(q)) + wire.Render("─")
		botLine := strings.Repeat(" ", leadW)

		for col := range lay.numColumns() {
			info := lay.cell(sc.gates, col, q)
			top, mid, bot := renderCell(info, v.pen(sc, info, wire))
			topLine += top
			midLine += mid
			botLine += bot
		}
		midLine += wire.Render("─") + " " + v.outcome(sc, q)

		sb.WriteString(strings.TrimRight(topLine, " ") + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(strings.TrimRight(botLine, " "))
		if q < n-1 {
			sb.WriteString("\n")
		}
	}

	if !v.color {
		return ansi.Strip(sb.String())
	}
	return sb.String()
}

func (v *Visualizer) pen(sc scene, info cellInfo, wire lipgloss.Style) pen {
	p := pen{wire: wire, gate: pendingStyle}
	if info.gate < 0 {
		return p
	}
	if info.gate < len(sc.fired) {
		if sc.fired[info.gate] {
			p.gate = gateStyle
		} else {
			p.gate = dimStyle
		}
	}
	p.cursor = info.gate == sc.cursor
	return p
}

// outcome is the value and phase column at the right of a wire.
func (v *Visualizer) outcome(sc scene, q int) string {
	value := strconv.Itoa(sc.current.Value(q))
	if slices.Contains(sc.marks.Value, q) {
		value = valueMismatchStyle.Render(value + "✗")
	}
	phase := FormatPhase(sc.current.Phase(q))
	if slices.Contains(sc.marks.Phase, q) {
		phase = phaseMismatchStyle.Render(phase + "✗")
	}
	return value + " " + phase
}

func ket(value int) string { return "|" + strconv.Itoa(value) + "⟩" }

// qubitLabel is "q[i]", prefixed by the register name when annotated.
func qubitLabel(c *circuit.Circuit, q int) string {
	label := fmt.Sprintf("q[%d]", q)
	if name, ok := c.Annotation(q, circuit.AnnotationRegisterName); ok {
		if s, ok := name.(string); ok && s != "" {
			label = s + " " + label
		}
	}
	return label
}
