// Command paulideck checks Pauli-gate circuits against YAML test suites.
//
//	paulideck [flags] SUITE.yaml...
//
// Exit status is 0 when every suite passes, 1 when a check finds a
// mismatch, 2 for usage, configuration or suite errors and 3 when a check
// is interrupted or fails to run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/qtermcirq/paulideck/circuit"
	"github.com/qtermcirq/paulideck/internal/config"
	"github.com/qtermcirq/paulideck/internal/logger"
	"github.com/qtermcirq/paulideck/internal/tui"
	"github.com/qtermcirq/paulideck/qasm"
	"github.com/qtermcirq/paulideck/render"
	"github.com/qtermcirq/paulideck/suite"
	"github.com/qtermcirq/paulideck/verify"
)

const (
	exitPass     = 0
	exitMismatch = 1
	exitUsage    = 2
	exitAborted  = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// flags are the command-line settings. Those left unset fall back to the
// suite file, then the environment.
type flags struct {
	envFile   string
	mode      string
	workers   int
	tolerance float64
	logLevel  string
	noColor   bool
	draw      bool
	step      string
	export    string
	set       map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, []string, error) {
	f := &flags{set: map[string]bool{}}
	fs := flag.NewFlagSet("paulideck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.envFile, "env", "", "env file to load instead of ./.env")
	fs.StringVar(&f.mode, "mode", "", "fail-fast, collect-all or report-only (overrides the suite file)")
	fs.IntVar(&f.workers, "workers", 0, "parallel evaluations for collect-all and report-only")
	fs.Float64Var(&f.tolerance, "tolerance", 0, "accepted phase difference in units of pi (overrides the suite file)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVar(&f.noColor, "no-color", false, "disable ANSI colors in diagrams")
	fs.BoolVar(&f.draw, "render", false, "draw the circuit run for every suite input before checking")
	fs.StringVar(&f.step, "step", "", "step through the circuit interactively from this input bitstring")
	fs.StringVar(&f.export, "export", "", "write the circuit as OpenQASM 2.0 to this path (- for stdout)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: paulideck [flags] SUITE.yaml...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	paths := fs.Args()
	switch {
	case len(paths) == 0:
		fs.Usage()
		return nil, nil, errors.New("no suite files given")
	case len(paths) > 1 && (f.step != "" || (f.export != "" && f.export != "-")):
		return nil, nil, errors.New("-step and -export to a file take a single suite")
	}
	return f, paths, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, paths, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitUsage
	}

	var envFiles []string
	if f.envFile != "" {
		envFiles = append(envFiles, f.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if err := f.apply(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		NoColor: !cfg.Color,
		Out:     stderr,
	})

	code := exitPass
	for _, path := range paths {
		code = max(code, runSuite(ctx, path, f, cfg, &log, stdout))
	}
	return code
}

// apply copies explicitly set flags over the environment settings.
func (f *flags) apply(cfg *config.Config) error {
	if f.set["workers"] {
		cfg.Workers = f.workers
	}
	if f.set["tolerance"] {
		cfg.PhaseTolerance = f.tolerance
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.noColor {
		cfg.Color = false
	}
	if f.set["mode"] {
		if _, err := verify.ParseMode(f.mode); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

// options layers flags over the suite file over the environment.
func (f *flags) options(s *suite.Suite, cfg *config.Config, log *zerolog.Logger) verify.Options {
	opts := s.Options(verify.Options{
		Workers:        cfg.Workers,
		PhaseTolerance: cfg.PhaseTolerance,
		Logger:         log,
	})
	if f.set["mode"] {
		opts.Mode, _ = verify.ParseMode(f.mode)
	}
	if f.set["tolerance"] {
		opts.PhaseTolerance = f.tolerance
	}
	return opts
}

func runSuite(ctx context.Context, path string, f *flags, cfg *config.Config, log *zerolog.Logger, stdout io.Writer) int {
	s, err := suite.Load(path)
	if err != nil {
		log.Error().Err(err).Str("suite", path).Msg("Failed to load suite")
		return exitUsage
	}
	suiteLog := log.With().Str("suite", s.Name).Logger()
	viz := render.New(stdout, render.WithColor(cfg.Color))
	opts := f.options(s, cfg, &suiteLog)

	if f.export != "" {
		if err := export(s, f.export, stdout); err != nil {
			suiteLog.Error().Err(err).Msg("Failed to export circuit")
			return exitUsage
		}
		return exitPass
	}

	if f.step != "" {
		if err := step(ctx, s, f.step, viz, opts); err != nil {
			suiteLog.Error().Err(err).Msg("Failed to step circuit")
			return exitUsage
		}
		return exitPass
	}

	if f.draw {
		if err := viz.DrawInputs(s.Circuit, stepRegister(s), suiteInputs(s)); err != nil {
			suiteLog.Error().Err(err).Msg("Failed to draw circuit")
			return exitUsage
		}
	}

	opts.Reporter = viz
	report, err := s.Run(ctx, opts)
	if werr := viz.Err(); werr != nil {
		suiteLog.Warn().Err(werr).Msg("Mismatch report was cut short")
	}

	var (
		merr *verify.MismatchError
		verr *circuit.ValidationError
	)
	switch {
	case errors.As(err, &merr):
		fmt.Fprintf(stdout, "FAIL %s: %d of %d inputs mismatched\n", s.Name, len(merr.Mismatches), report.Evaluated())
		return exitMismatch
	case errors.As(err, &verr):
		suiteLog.Error().Err(err).Msg("Invalid suite")
		return exitUsage
	case err != nil:
		suiteLog.Error().Err(err).Msg("Check did not finish")
		return exitAborted
	case !report.Passed():
		fmt.Fprintf(stdout, "REPORT %s: %d of %d inputs mismatched\n", s.Name, len(report.Mismatches), report.Evaluated())
		return exitPass
	default:
		fmt.Fprintf(stdout, "PASS %s: %d inputs\n", s.Name, report.Evaluated())
		return exitPass
	}
}

func export(s *suite.Suite, path string, stdout io.Writer) error {
	src, err := qasm.Write(s.Circuit)
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = io.WriteString(stdout, src)
		return err
	}
	return os.WriteFile(path, []byte(src), 0o644)
}

// suiteInputs lists the inputs a suite checks, in file order.
func suiteInputs(s *suite.Suite) []string {
	if s.Kind == suite.IsZero {
		return s.Inputs
	}
	inputs := make([]string, len(s.Expect))
	for i, e := range s.Expect {
		inputs[i] = e.Input
	}
	return inputs
}

// stepRegister is the register suite inputs are written to.
func stepRegister(s *suite.Suite) circuit.Register {
	name := "input"
	if s.Kind == suite.UnaryIteration {
		name = "index"
	}
	reg, _ := s.Register(name)
	return reg
}

func step(ctx context.Context, s *suite.Suite, input string, viz *render.Visualizer, opts verify.Options) error {
	initial, err := circuit.StateFromBits(s.Circuit.NumQubits(), stepRegister(s), input)
	if err != nil {
		return err
	}
	summary, marks, err := stepSummary(ctx, s, input, opts)
	if err != nil {
		return err
	}
	frames := slices.Collect(viz.Frames(s.Circuit, initial, marks))
	title := fmt.Sprintf("%s  input %s", s.Name, input)
	return tui.Run(title, frames, summary)
}

// stepSummary checks the suite on input alone and describes the mismatch,
// if any, with the qubits to mark on the last frame.
func stepSummary(ctx context.Context, s *suite.Suite, input string, opts verify.Options) (string, render.Marks, error) {
	one := *s
	if s.Kind == suite.IsZero {
		one.Inputs = []string{input}
	} else {
		one.Expect = nil
		for _, e := range s.Expect {
			if e.Input == input {
				one.Expect = append(one.Expect, e)
			}
		}
		if len(one.Expect) == 0 {
			return "no expectation for input " + input, render.Marks{}, nil
		}
	}
	opts.Mode = verify.ReportOnly
	opts.Reporter = nil
	report, err := one.Run(ctx, opts)
	if err != nil {
		return "", render.Marks{}, err
	}
	if report.Passed() {
		return "", render.Marks{}, nil
	}
	m := report.Mismatches[0]
	return m.String(), render.MarksOf(m), nil
}
