// Package dimacs loads DIMACS CNF and model files into a SAT solver.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"

	"github.com/arbor-sat/arbor/internal/sat"
)

// Solver is the subset of *sat.Solver's API a CNF file needs to be loaded
// into one.
type Solver interface {
	AddVariable() int
	AddClause([]sat.Literal) error
}

// open returns a readable stream for filename, or standard input when
// filename is "-".
func open(filename string, gzipped bool) (io.ReadCloser, error) {
	var rc io.ReadCloser
	if filename == "-" {
		rc = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		rc = file
	}
	if gzipped {
		gz, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, err
		}
		rc = gz
	}
	return rc, nil
}

// Load parses the DIMACS CNF file at filename and loads its formula into
// solver, one variable and clause at a time.
func Load(filename string, gzipped bool, solver Solver) error {
	r, err := open(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{solver: solver}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return fmt.Errorf("dimacs: parsing %q: %w", filename, err)
	}
	return nil
}

// builder adapts a Solver to the dimacs.Builder interface expected by
// dimacs.ReadBuilder.
type builder struct {
	solver Solver
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: unsupported problem type %q", problem)
	}
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmp []int) error {
	clause := make([]sat.Literal, len(tmp))
	for i, l := range tmp {
		if l < 0 {
			clause[i] = sat.NegativeLiteral(-l - 1)
		} else {
			clause[i] = sat.PositiveLiteral(l - 1)
		}
	}
	return b.solver.AddClause(clause)
}

func (b *builder) Comment(string) error {
	return nil
}

// ReadModels parses a file of DIMACS-style model lines (one satisfying
// assignment per line, one signed literal per variable in order, each line
// terminated by 0, with no problem line) and returns the list of models it
// contains.
func ReadModels(filename string) ([][]bool, error) {
	r, err := open(filename, false)
	if err != nil {
		return nil, fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(r, b); err != nil {
		return nil, fmt.Errorf("dimacs: parsing %q: %w", filename, err)
	}
	return b.models, nil
}

type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return fmt.Errorf("dimacs: model files must not have a problem line")
}

func (b *modelBuilder) Comment(string) error {
	return nil
}

func (b *modelBuilder) Clause(tmp []int) error {
	model := make([]bool, len(tmp))
	for i, l := range tmp {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}
