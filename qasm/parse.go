// Package qasm imports and exports the OpenQASM 2.0 subset that maps onto
// classically controlled Pauli gates: id, x, y, z, swap and their cx, cy,
// cz, ccx and cswap controlled forms.
package qasm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/qtermcirq/paulideck/circuit"
)

// Pre-compiled regexps for QASM parsing.
var (
	keywordRegex = regexp.MustCompile(`^\w+`)
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex    = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	gateRegex    = regexp.MustCompile(`^(\w+)\s+(.+)$`)
	operandRegex = regexp.MustCompile(`^(\w+)\s*(?:\[\s*(\d+)\s*\])?$`)
	paramRegex   = regexp.MustCompile(`^\w+\s*\(`)
)

var (
	// ErrUnsupported marks statements outside the Pauli subset.
	ErrUnsupported = errors.New("unsupported statement")
	// ErrNoRegister is returned when the program declares no qreg.
	ErrNoRegister = errors.New("no qreg declared")
)

// ParseError locates a failed statement.
type ParseError struct {
	Line int // 1-based, 0 when the error is not tied to a line
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("qasm: %v", e.Err)
	}
	return fmt.Sprintf("qasm line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// gateForm describes how a QASM gate name maps onto a Pauli gate: operands
// are the controls followed by the targets.
type gateForm struct {
	kind     circuit.Kind
	controls int
}

var gateForms = map[string]gateForm{
	"id":    {circuit.KindI, 0},
	"x":     {circuit.KindX, 0},
	"y":     {circuit.KindY, 0},
	"z":     {circuit.KindZ, 0},
	"swap":  {circuit.KindSwap, 0},
	"cx":    {circuit.KindX, 1},
	"cy":    {circuit.KindY, 1},
	"cz":    {circuit.KindZ, 1},
	"ccx":   {circuit.KindX, 2},
	"cswap": {circuit.KindSwap, 1},
}

func (f gateForm) numTargets() int { return max(f.kind.Arity(), 1) }

type qreg struct {
	name   string
	offset int
	size   int
}

type statement struct {
	line int
	text string
	rec  circuit.GateRecord
}

type parser struct {
	regs  map[string]qreg
	order []qreg
	size  int
	stmts []statement
}

// Parse reads a QASM program into a circuit with one qubit per declared
// quantum register bit, registers laid out in declaration order. When more
// than one qreg is declared each qubit is annotated with its register name.
// Every control parsed from QASM has control value 1.
func Parse(src string) (*circuit.Circuit, error) {
	p := &parser{regs: make(map[string]qreg)}
	for i, line := range strings.Split(src, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		for stmt := range strings.SplitSeq(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt, i+1); err != nil {
				return nil, &ParseError{Line: i + 1, Text: stmt, Err: err}
			}
		}
	}
	return p.build()
}

func (p *parser) statement(stmt string, line int) error {
	switch keyword := keywordRegex.FindString(stmt); keyword {
	case "OPENQASM", "include", "barrier":
		return nil
	case "qreg":
		return p.declare(stmt)
	case "creg":
		if cregRegex.MatchString(stmt) {
			return nil
		}
		return errors.New("malformed creg declaration")
	case "measure", "reset", "if", "gate", "opaque":
		return fmt.Errorf("%w: %s", ErrUnsupported, keyword)
	}

	if paramRegex.MatchString(stmt) {
		return fmt.Errorf("%w: parameterized gate", ErrUnsupported)
	}
	matches := gateRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return fmt.Errorf("%w: cannot parse", ErrUnsupported)
	}
	name := strings.ToLower(matches[1])
	form, ok := gateForms[name]
	if !ok {
		return fmt.Errorf("%w: gate %s", ErrUnsupported, name)
	}

	var operands [][]int
	for op := range strings.SplitSeq(matches[2], ",") {
		qubits, err := p.resolve(strings.TrimSpace(op))
		if err != nil {
			return err
		}
		operands = append(operands, qubits)
	}

	rec := circuit.GateRecord{Name: form.kind.String()}
	want := form.controls + form.numTargets()
	switch {
	case len(operands) == 1 && want == 1:
		// x q; broadcasts over the whole register
		rec.TargetQubit = operands[0]
	case len(operands) != want:
		return fmt.Errorf("%s takes %d operands, got %d", name, want, len(operands))
	default:
		for i, op := range operands {
			if len(op) != 1 {
				return fmt.Errorf("%s: register operands cannot be broadcast", name)
			}
			if i < form.controls {
				rec.ControlQubit = append(rec.ControlQubit, op[0])
				rec.ControlValue = append(rec.ControlValue, 1)
			} else {
				rec.TargetQubit = append(rec.TargetQubit, op[0])
			}
		}
	}
	p.stmts = append(p.stmts, statement{line: line, text: stmt, rec: rec})
	return nil
}

func (p *parser) declare(stmt string) error {
	matches := qregRegex.FindStringSubmatch(stmt)
	if matches == nil {
		return errors.New("malformed qreg declaration")
	}
	name := matches[1]
	if _, dup := p.regs[name]; dup {
		return fmt.Errorf("qreg %s declared twice", name)
	}
	size, err := strconv.Atoi(matches[2])
	if err != nil || size == 0 {
		return fmt.Errorf("qreg %s has invalid size %s", name, matches[2])
	}
	r := qreg{name: name, offset: p.size, size: size}
	p.regs[name] = r
	p.order = append(p.order, r)
	p.size += size
	return nil
}

// resolve maps "q[3]" to one qubit id and a bare "q" to the whole register.
func (p *parser) resolve(operand string) ([]int, error) {
	matches := operandRegex.FindStringSubmatch(operand)
	if matches == nil {
		return nil, fmt.Errorf("malformed operand %q", operand)
	}
	r, ok := p.regs[matches[1]]
	if !ok {
		return nil, fmt.Errorf("unknown qreg %s", matches[1])
	}
	if matches[2] == "" {
		qubits := make([]int, r.size)
		for i := range qubits {
			qubits[i] = r.offset + i
		}
		return qubits, nil
	}
	idx, err := strconv.Atoi(matches[2])
	if err != nil || idx >= r.size {
		return nil, fmt.Errorf("index %s out of range for qreg %s[%d]", matches[2], r.name, r.size)
	}
	return []int{r.offset + idx}, nil
}

func (p *parser) build() (*circuit.Circuit, error) {
	if p.size == 0 {
		return nil, &ParseError{Err: ErrNoRegister}
	}
	c, err := circuit.New(p.size)
	if err != nil {
		return nil, err
	}
	for _, s := range p.stmts {
		if err := c.AddGateRecord(s.rec); err != nil {
			return nil, &ParseError{Line: s.line, Text: s.text, Err: err}
		}
	}
	if len(p.order) > 1 {
		for _, r := range p.order {
			reg := circuit.Named(r.name)
			for i := range r.size {
				reg.Qubits = append(reg.Qubits, r.offset+i)
			}
			if err := c.AnnotateRegister(reg); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}
