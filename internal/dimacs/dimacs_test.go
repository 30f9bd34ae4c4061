package dimacs

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arbor-sat/arbor/internal/sat"
)

// instance records exactly what Load reports, the same spy pattern the
// teacher's dimacs_test.go uses.
type instance struct {
	Variables int
	Clauses   [][]sat.Literal
}

func (i *instance) AddVariable() int {
	i.Variables++
	return i.Variables - 1
}

func (i *instance) AddClause(lits []sat.Literal) error {
	i.Clauses = append(i.Clauses, append([]sat.Literal(nil), lits...))
	return nil
}

const testCNF = `c a tiny test instance
p cnf 3 3
1 2 3 0
1 2 -3 0
1 -2 3 0
`

var want = instance{
	Variables: 3,
	Clauses: [][]sat.Literal{
		{0, 2, 4},
		{0, 2, 5},
		{0, 3, 4},
	},
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%q): %s", path, err)
	}
	return path
}

func TestLoad_cnf(t *testing.T) {
	path := writeTemp(t, "test.cnf", testCNF)

	got := instance{}
	if err := Load(path, false, &got); err != nil {
		t.Fatalf("Load(): %s", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(testCNF)); err != nil {
		t.Fatalf("gzip.Write(): %s", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip.Close(): %s", err)
	}
	path := filepath.Join(t.TempDir(), "test.cnf.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile(): %s", err)
	}

	got := instance{}
	if err := Load(path, true, &got); err != nil {
		t.Fatalf("Load(): %s", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_missingFile(t *testing.T) {
	got := instance{}
	if err := Load(filepath.Join(t.TempDir(), "does-not-exist.cnf"), false, &got); err == nil {
		t.Errorf("Load() = nil error, want a file-not-found error")
	}
}

func TestLoad_gzipOnNonGzipFileErrors(t *testing.T) {
	path := writeTemp(t, "test.cnf", testCNF)

	got := instance{}
	if err := Load(path, true, &got); err == nil {
		t.Errorf("Load() = nil error, want a gzip-header error")
	}
}

func TestLoad_stdin(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe(): %s", err)
	}
	origStdin := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = origStdin }()

	go func() {
		w.Write([]byte(testCNF))
		w.Close()
	}()

	got := instance{}
	if err := Load("-", false, &got); err != nil {
		t.Fatalf("Load(\"-\"): %s", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load(\"-\") mismatch (-want +got):\n%s", diff)
	}
}

func TestReadModels(t *testing.T) {
	path := writeTemp(t, "test.cnf.models", "1 -2 3 0\n-1 2 -3 0\n")

	got, err := ReadModels(path)
	if err != nil {
		t.Fatalf("ReadModels(): %s", err)
	}
	want := [][]bool{
		{true, false, true},
		{false, true, false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadModels() mismatch (-want +got):\n%s", diff)
	}
}
