// Package verify checks a circuit against declared input to output mappings
// by simulating every input on its own state.
package verify

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/qtermcirq/paulideck/circuit"
	"github.com/qtermcirq/paulideck/engine"
)

// Mode selects how a check reacts to mismatches.
type Mode int

const (
	// FailFast stops at the first mismatch in declaration order.
	FailFast Mode = iota
	// CollectAll evaluates every input and returns all mismatches as one error.
	CollectAll
	// ReportOnly evaluates every input and never returns a mismatch error.
	ReportOnly
)

var modeNames = map[Mode]string{
	FailFast:   "fail-fast",
	CollectAll: "collect-all",
	ReportOnly: "report-only",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names printed by Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return m, nil
		}
	}
	return 0, circuit.Invalidf("mode", "unknown mode %q (want fail-fast, collect-all or report-only)", s)
}

// Evaluation is one simulated input: the state it started from and the run.
type Evaluation struct {
	Input   string
	Initial *circuit.State
	Trace   engine.Trace
}

// Reporter receives every mismatch in declaration order, whatever the mode.
type Reporter interface {
	ReportMismatch(c *circuit.Circuit, ev Evaluation, m Mismatch)
}

// Options configures Check. The zero value is a sequential fail-fast check
// with exact phase comparison.
type Options struct {
	Mode     Mode
	Reporter Reporter
	// PhaseTolerance is the largest accepted phase difference in units of
	// pi. Zero means exact equality.
	PhaseTolerance float64
	// Workers bounds parallel evaluation in CollectAll and ReportOnly.
	// Values below 2 run sequentially.
	Workers int
	Logger  *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

// Result is the outcome of one expectation.
type Result struct {
	Expectation
	Evaluation  Evaluation
	ActualBits  string
	ActualPhase []float64
	Mismatch    *Mismatch
}

// Report lists the evaluated expectations in declaration order.
type Report struct {
	Results    []Result
	Mismatches []Mismatch
}

// Passed reports whether every evaluated expectation matched.
func (r *Report) Passed() bool { return len(r.Mismatches) == 0 }

// Evaluated returns how many expectations were simulated.
func (r *Report) Evaluated() int { return len(r.Results) }

// Check simulates every expectation input on the circuit and compares the
// output register against the expected bits and, when given, phases.
//
// All inputs are validated before the first simulation; a malformed register
// or expectation yields a *circuit.ValidationError. Mismatches yield a
// *MismatchError except in ReportOnly mode. The circuit is never modified.
func Check(ctx context.Context, c *circuit.Circuit, in, out circuit.Register, exps []Expectation, opts Options) (*Report, error) {
	if err := validate(c, in, out, exps); err != nil {
		return nil, err
	}
	if opts.PhaseTolerance < 0 || math.IsNaN(opts.PhaseTolerance) {
		return nil, circuit.Invalidf("check", "phase tolerance must be a non-negative number, got %v", opts.PhaseTolerance)
	}

	log := opts.logger()
	ev := evaluator{
		gates: c.Gates(),
		n:     c.NumQubits(),
		in:    in,
		out:   out,
		tol:   opts.PhaseTolerance,
	}

	var (
		report *Report
		err    error
	)
	if opts.Mode == FailFast {
		report, err = ev.sequential(ctx, c, exps, opts.Reporter, log)
	} else {
		report, err = ev.all(ctx, c, exps, opts, log)
	}
	if err != nil {
		return report, err
	}

	log.Info().
		Str("mode", opts.Mode.String()).
		Int("evaluated", report.Evaluated()).
		Int("mismatches", len(report.Mismatches)).
		Msg("circuit check finished")

	if len(report.Mismatches) > 0 && opts.Mode != ReportOnly {
		return report, &MismatchError{Mismatches: report.Mismatches}
	}
	return report, nil
}

type evaluator struct {
	gates []circuit.Gate
	n     int
	in    circuit.Register
	out   circuit.Register
	tol   float64
}

// sequential evaluates in declaration order and stops at the first mismatch.
func (e evaluator) sequential(ctx context.Context, c *circuit.Circuit, exps []Expectation, rep Reporter, log *zerolog.Logger) (*Report, error) {
	report := &Report{}
	for _, exp := range exps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := e.evaluate(exp)
		logResult(log, res)
		report.Results = append(report.Results, res)
		if res.Mismatch != nil {
			report.Mismatches = append(report.Mismatches, *res.Mismatch)
			if rep != nil {
				rep.ReportMismatch(c, res.Evaluation, *res.Mismatch)
			}
			break
		}
	}
	return report, nil
}

// all evaluates every expectation, in parallel when opts.Workers > 1, and
// reports in declaration order.
func (e evaluator) all(ctx context.Context, c *circuit.Circuit, exps []Expectation, opts Options, log *zerolog.Logger) (*Report, error) {
	results := make([]Result, len(exps))
	if opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i, exp := range exps {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = e.evaluate(exp)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return &Report{}, err
		}
	} else {
		for i, exp := range exps {
			if err := ctx.Err(); err != nil {
				return &Report{}, err
			}
			results[i] = e.evaluate(exp)
		}
	}

	report := &Report{Results: results}
	for _, res := range results {
		logResult(log, res)
		if res.Mismatch == nil {
			continue
		}
		report.Mismatches = append(report.Mismatches, *res.Mismatch)
		if opts.Reporter != nil {
			opts.Reporter.ReportMismatch(c, res.Evaluation, *res.Mismatch)
		}
	}
	return report, nil
}

// evaluate runs one expectation on a fresh state.
func (e evaluator) evaluate(exp Expectation) Result {
	// Inputs were validated, so this cannot fail.
	start, _ := circuit.StateFromBits(e.n, e.in, exp.Input)
	tr := engine.Run(e.gates, start.Clone())

	res := Result{
		Expectation: exp,
		Evaluation:  Evaluation{Input: exp.Input, Initial: start, Trace: tr},
		ActualBits:  tr.State.Bits(e.out),
	}
	if exp.ChecksPhase() {
		res.ActualPhase = tr.State.PhasesOf(e.out)
	}
	res.Mismatch = e.diff(exp, res)
	return res
}

func (e evaluator) diff(exp Expectation, res Result) *Mismatch {
	var valueQubits, phaseQubits []int
	for i, q := range e.out.Qubits {
		if exp.Output[i] != res.ActualBits[i] {
			valueQubits = append(valueQubits, q)
		}
		if exp.ChecksPhase() && !e.phaseEqual(exp.Phase[i], res.ActualPhase[i]) {
			phaseQubits = append(phaseQubits, q)
		}
	}
	if valueQubits == nil && phaseQubits == nil {
		return nil
	}
	return &Mismatch{
		Input:         exp.Input,
		ExpectedBits:  exp.Output,
		ActualBits:    res.ActualBits,
		ExpectedPhase: exp.Phase,
		ActualPhase:   res.ActualPhase,
		ValueQubits:   valueQubits,
		PhaseQubits:   phaseQubits,
	}
}

func (e evaluator) phaseEqual(want, got float64) bool {
	if e.tol == 0 {
		return want == got
	}
	return math.Abs(want-got) <= e.tol
}

func logResult(log *zerolog.Logger, res Result) {
	log.Debug().
		Str("input", res.Input).
		Str("expected", res.Output).
		Str("actual", res.ActualBits).
		Int("fired", res.Evaluation.Trace.FiredCount()).
		Bool("match", res.Mismatch == nil).
		Msg("evaluated input")
}
