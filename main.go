package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/sirupsen/logrus"

	"github.com/arbor-sat/arbor/internal/dimacs"
	"github.com/arbor-sat/arbor/internal/sat"
)

type cliArgs struct {
	Instance string `arg:"positional" help:"DIMACS CNF file to solve ('-' or omitted for stdin)"`

	Gzip         bool          `arg:"--gzip" help:"the instance file is gzip-compressed"`
	Verbose      string        `arg:"--verbose" default:"warn" help:"log level: trace, debug, info, warn, error"`
	DimacsOutput bool          `arg:"--dimacs" help:"print the DIMACS-style 's SATISFIABLE'/'s UNSATISFIABLE' and 'v ...' lines instead of a bare SAT/UNSAT"`
	MaxConflicts int64         `arg:"--max-conflicts" default:"-1" help:"give up (exit as unknown) after this many conflicts; -1 for unbounded"`
	Timeout      time.Duration `arg:"--timeout" default:"-1ns" help:"give up after this much wall-clock time; negative for unbounded"`
	NoRestarts   bool          `arg:"--no-restarts" help:"disable the Luby restart schedule"`
	PhaseSaving  bool          `arg:"--phase-saving" help:"reuse a variable's last polarity as its decision default"`

	CPUProfile string `arg:"--cpuprofile" help:"write a CPU profile to this file"`
	MemProfile string `arg:"--memprofile" help:"write a heap profile to this file"`
}

func (cliArgs) Version() string {
	return "arbor"
}

func main() {
	var cfg cliArgs
	arg.MustParse(&cfg)

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Verbose); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown log level %q, defaulting to warn", cfg.Verbose)
	}

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	status, elapsed, solver, err := run(cfg, log)
	if err != nil {
		log.Fatal(err)
	}

	printResult(cfg, status, elapsed, solver)

	if cfg.MemProfile != "" {
		f, err := os.Create(cfg.MemProfile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
	}
}

func run(cfg cliArgs, log *logrus.Logger) (sat.LBool, time.Duration, *sat.Solver, error) {
	opts := sat.DefaultOptions
	opts.PhaseSaving = cfg.PhaseSaving
	opts.Restarts = !cfg.NoRestarts
	opts.MaxConflicts = cfg.MaxConflicts
	opts.Timeout = cfg.Timeout

	s := sat.NewSolver(opts, sat.NewDiagnostics(log))

	filename := cfg.Instance
	if filename == "" {
		filename = "-"
	}
	if err := dimacs.Load(filename, cfg.Gzip, s); err != nil {
		return 0, 0, nil, err
	}

	log.WithFields(logrus.Fields{
		"variables": s.NumVariables(),
		"clauses":   s.NumConstraints(),
	}).Info("instance loaded")

	start := time.Now()
	status := s.Solve()
	return status, time.Since(start), s, nil
}

func printResult(cfg cliArgs, status sat.LBool, elapsed time.Duration, s *sat.Solver) {
	if cfg.DimacsOutput {
		switch status {
		case sat.True:
			fmt.Println("s SATISFIABLE")
			printModel(s)
		case sat.False:
			fmt.Println("s UNSATISFIABLE")
		default:
			fmt.Println("s UNKNOWN")
		}
		return
	}

	switch status {
	case sat.True:
		fmt.Println("SAT")
	case sat.False:
		fmt.Println("UNSAT")
	default:
		fmt.Println("UNKNOWN")
	}
	_ = elapsed
}

func printModel(s *sat.Solver) {
	if len(s.Models) == 0 {
		return
	}
	model := s.Models[len(s.Models)-1]
	fmt.Print("v")
	for v, val := range model {
		if val {
			fmt.Printf(" %d", v+1)
		} else {
			fmt.Printf(" -%d", v+1)
		}
	}
	fmt.Println(" 0")
}
