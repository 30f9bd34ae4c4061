package sat

import "github.com/sirupsen/logrus"

// Diagnostics reports search progress to a structured logger, keeping
// logging entirely out of the core search loop's own concerns (the spec
// treats logging as an external collaborator, specified only by what it is
// given). A nil *Diagnostics, or one built with a nil logger, reports
// nothing: callers that don't care about progress output never pay for it.
type Diagnostics struct {
	log *logrus.Logger
}

// NewDiagnostics wraps log. Passing nil yields a Diagnostics that reports
// nothing.
func NewDiagnostics(log *logrus.Logger) *Diagnostics {
	return &Diagnostics{log: log}
}

func (d *Diagnostics) enabled() bool {
	return d != nil && d.log != nil
}

// restart logs a summary of progress so far at the start of a new restart.
func (d *Diagnostics) restart(s *Solver) {
	if !d.enabled() {
		return
	}
	d.log.WithFields(logrus.Fields{
		"iterations": s.TotalIterations,
		"conflicts":  s.TotalConflicts,
		"restarts":   s.TotalRestarts,
		"learnts":    s.store.Count() - s.numOriginal,
	}).Debug("restart")
}

// conflict logs a single conflict event at trace granularity, cheap enough
// to be called on every conflict but verbose enough that it should stay
// off by default.
func (d *Diagnostics) conflict(s *Solver, backjumpLevel int, lbd int) {
	if !d.enabled() {
		return
	}
	d.log.WithFields(logrus.Fields{
		"conflict":  s.TotalConflicts,
		"backjump":  backjumpLevel,
		"lbd":       lbd,
	}).Trace("conflict")
}

// done logs the final decision.
func (d *Diagnostics) done(s *Solver, status LBool, elapsedSeconds float64) {
	if !d.enabled() {
		return
	}
	d.log.WithFields(logrus.Fields{
		"status":     status.String(),
		"iterations": s.TotalIterations,
		"conflicts":  s.TotalConflicts,
		"restarts":   s.TotalRestarts,
		"seconds":    elapsedSeconds,
	}).Info("solve finished")
}
