package sat

import (
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestDiagnostics_NilIsSafe(t *testing.T) {
	var d *Diagnostics
	s := NewDefaultSolver()
	s.AddVariable()

	// None of these must panic on a nil *Diagnostics.
	d.restart(s)
	d.conflict(s, 0, 1)
	d.done(s, True, 0.01)
}

func TestDiagnostics_NilLoggerIsSafe(t *testing.T) {
	d := NewDiagnostics(nil)
	s := NewDefaultSolver()
	s.AddVariable()

	d.restart(s)
	d.conflict(s, 0, 1)
	d.done(s, False, 0.01)
}

func TestDiagnostics_Done_LogsFinalStatus(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	d := NewDiagnostics(logger)

	s := NewDefaultSolver()
	s.AddVariable()
	s.TotalConflicts = 3
	s.TotalRestarts = 1

	d.done(s, True, 1.5)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("done() logged nothing")
	}
	if got := entry.Message; got != "solve finished" {
		t.Errorf("message = %q, want %q", got, "solve finished")
	}
	if got := entry.Data["status"]; got != "true" {
		t.Errorf("status field = %v, want %q", got, "true")
	}
	if got := entry.Data["conflicts"]; got != int64(3) {
		t.Errorf("conflicts field = %v, want 3", got)
	}
}

func TestDiagnostics_Conflict_LogsOnlyAtTraceLevel(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel) // below Trace: conflict() must be suppressed
	d := NewDiagnostics(logger)

	s := NewDefaultSolver()
	s.AddVariable()

	d.conflict(s, 2, 4)

	if got := len(hook.AllEntries()); got != 0 {
		t.Errorf("AllEntries() = %d, want 0 at Debug level (conflict logs at Trace)", got)
	}
}
