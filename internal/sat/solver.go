package sat

import (
	"errors"
	"time"
)

var errAddClauseNotAtRoot = errors.New("sat: AddClause called above the root decision level")

// Options controls the search strategy. The zero value is not meaningful;
// use DefaultOptions as a starting point.
type Options struct {
	// VariableDecay is the per-conflict decay factor applied to variable
	// activities, in (0, 1]. Smaller values forget older conflicts faster.
	VariableDecay float64

	// PhaseSaving, when true, has the heuristic default an unassigned
	// variable to its last-held polarity instead of always negative.
	PhaseSaving bool

	// Restarts enables the Luby restart schedule. Disabling it lets a
	// single Search call run until SAT, UNSAT, or a stop condition fires.
	Restarts bool

	// RestartBase scales the Luby sequence into a conflict count.
	RestartBase float64

	// MaxConflicts stops the search after this many conflicts, returning
	// Unknown. A negative value means unbounded.
	MaxConflicts int64

	// Timeout stops the search after this much wall-clock time, returning
	// Unknown. A negative value means unbounded.
	Timeout time.Duration
}

// DefaultOptions is a reasonable starting configuration.
var DefaultOptions = Options{
	VariableDecay: 0.95,
	PhaseSaving:   false,
	Restarts:      true,
	RestartBase:   100,
	MaxConflicts:  -1,
	Timeout:       -1,
}

// Solver is a CDCL SAT solver assembled from independently testable
// components: a ClauseStore owns clause memory, a Trail owns the
// assignment stack, a WatchIndex implements Boolean constraint
// propagation, a Heuristic picks decision literals, an LBDManager scores
// and evicts learned clauses, and a LubyRestart schedules restarts. The
// solver itself holds none of their state directly; it only orchestrates
// the search loop and conflict analysis over them.
type Solver struct {
	store     *ClauseStore
	trail     *Trail
	watch     *WatchIndex
	heuristic *Heuristic
	lbdMgr    *LBDManager
	propQueue *Queue[Literal]
	seenVar   *ResetSet
	restart   *LubyRestart
	diag      *Diagnostics

	useRestarts bool

	hasStopCond bool
	maxConflict int64
	timeout     time.Duration

	unsat       bool
	numOriginal int

	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64
	startTime       time.Time

	// Models accumulates one entry per satisfying assignment found so far,
	// indexed by variable.
	Models [][]bool

	// tmpLearnts, tmpReason, and tmpReason2 are scratch buffers reused
	// across conflict analysis to avoid allocating on every conflict.
	tmpLearnts []Literal
	tmpReason  []Literal
	tmpReason2 []Literal
}

// NewSolver returns an empty solver. diag may be nil, in which case search
// progress is not reported anywhere.
func NewSolver(opts Options, diag *Diagnostics) *Solver {
	store := NewClauseStore()
	trail := NewTrail()
	watch := NewWatchIndex()
	heuristic := NewHeuristic(opts.VariableDecay, opts.PhaseSaving)
	lbdMgr := NewLBDManager()

	// Registration order doesn't matter for correctness (subscribers don't
	// observe each other), but the trail is kept last since it is the
	// cheapest to notify.
	store.Subscribe(watch)
	store.Subscribe(lbdMgr)
	store.Subscribe(trail)

	s := &Solver{
		store:       store,
		trail:       trail,
		watch:       watch,
		heuristic:   heuristic,
		lbdMgr:      lbdMgr,
		propQueue:   NewQueue[Literal](128),
		seenVar:     &ResetSet{},
		restart:     NewLubyRestart(opts.RestartBase),
		diag:        diag,
		useRestarts: opts.Restarts,
		maxConflict: -1,
		timeout:     -1,
	}
	if opts.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = opts.MaxConflicts
	}
	if opts.Timeout >= 0 {
		s.hasStopCond = true
		s.timeout = opts.Timeout
	}
	return s
}

// NewDefaultSolver returns a solver configured with DefaultOptions and no
// diagnostics.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions, nil)
}

// AddVariable registers a new Boolean variable and returns its ID.
func (s *Solver) AddVariable() int {
	v := s.trail.NumVariables()
	s.trail.AddVariable()
	s.watch.AddVariable()
	s.heuristic.AddVariable()
	s.lbdMgr.AddVariable()
	s.seenVar.Expand()
	return v
}

// NumVariables returns the number of registered variables.
func (s *Solver) NumVariables() int { return s.trail.NumVariables() }

// NumAssigns returns the number of currently assigned variables.
func (s *Solver) NumAssigns() int { return s.trail.NumAssigned() }

// NumConstraints returns the number of original (non-learned) clauses.
func (s *Solver) NumConstraints() int { return s.numOriginal }

// NumLearnts returns the number of currently live learned clauses.
func (s *Solver) NumLearnts() int { return s.store.Count() - s.numOriginal }

// VarValue returns the current value of variable v.
func (s *Solver) VarValue(v int) LBool { return s.trail.VarValue(v) }

// LitValue returns the current value of literal l.
func (s *Solver) LitValue(l Literal) LBool { return s.trail.Value(l) }

// AddClause adds an original clause over the given literals. It must not be
// called above the root decision level (i.e. not during or between
// Search calls that have made decisions without returning). A clause found
// trivially true (a tautology, or already satisfied at the root) is
// silently dropped, consistent with it imposing no constraint.
func (s *Solver) AddClause(lits []Literal) error {
	if s.trail.DecisionLevel() != 0 {
		return errAddClauseNotAtRoot
	}

	prepared, trivial := prepareClause(s.trail, lits)
	if trivial {
		return nil
	}

	switch len(prepared) {
	case 0:
		// Every literal was false at the root: the empty clause.
		s.unsat = true
	case 1:
		if !s.trail.Enqueue(prepared[0], ReasonDecision) {
			s.unsat = true
		} else {
			s.propQueue.Push(prepared[0])
		}
	default:
		h := s.store.Insert(prepared, false)
		s.numOriginal++
		if conflict := s.watch.Register(s.store, s.trail, s.propQueue, h); conflict != NoHandle {
			s.unsat = true
		}
	}
	return nil
}

// prepareClause dedups lits, drops complementary-pair and already-true
// clauses as trivially satisfied, and drops literals already false at the
// root level of trail (they can never become true, so they add nothing to
// the clause). It returns the prepared literals and whether the clause was
// found trivial.
func prepareClause(trail *Trail, lits []Literal) ([]Literal, bool) {
	out := append([]Literal(nil), lits...)
	seen := make(map[Literal]struct{}, len(out))
	size := len(out)

	for i := size - 1; i >= 0; i-- {
		if _, ok := seen[out[i].Opposite()]; ok {
			return nil, true
		}
		if _, ok := seen[out[i]]; ok {
			size--
			out[i], out[size] = out[size], out[i]
			continue
		}
		seen[out[i]] = struct{}{}

		switch trail.Value(out[i]) {
		case True:
			return nil, true
		case False:
			size--
			out[i], out[size] = out[size], out[i]
		}
	}
	return out[:size], false
}

// Simplify removes satisfied learned clauses at the root decision level.
// Original clauses are never removed. It returns false if propagating at
// the root uncovers a conflict (the problem is unsatisfiable).
func (s *Solver) Simplify() bool {
	if s.trail.DecisionLevel() != 0 {
		panic("sat: Simplify called above the root decision level")
	}
	if s.unsat {
		return false
	}
	if conflict := s.watch.Propagate(s.store, s.trail, s.propQueue); conflict != NoHandle {
		s.unsat = true
		return false
	}

	locked := s.trail.ReasonClauses()
	s.store.Compact(func(h Handle) bool {
		if !s.store.IsLearnt(h) {
			return true
		}
		if _, ok := locked[h]; ok {
			return true
		}
		return !s.isSatisfied(h)
	})
	return true
}

func (s *Solver) isSatisfied(h Handle) bool {
	for _, l := range s.store.Literals(h) {
		if s.trail.Value(l) == True {
			return true
		}
	}
	return false
}

func (s *Solver) maybeReduce(maxLearnts int) {
	if s.NumLearnts() >= maxLearnts {
		s.lbdMgr.ReduceDB(s.store, s.trail)
	}
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.TotalConflicts >= s.maxConflict {
		return true
	}
	if s.timeout >= 0 && time.Since(s.startTime) >= s.timeout {
		return true
	}
	return false
}

// Solve searches for a satisfying assignment, restarting (per the Luby
// schedule, if enabled) and periodically shrinking the learned clause
// database as the search deepens, until it finds one (True), proves none
// exists (False), or a configured stop condition fires first (Unknown).
func (s *Solver) Solve() LBool {
	s.startTime = time.Now()

	maxLearnts := s.numOriginal / 3
	if maxLearnts < 100 {
		maxLearnts = 100
	}

	status := Unknown
	for status == Unknown {
		budget := -1
		if s.useRestarts {
			budget = s.restart.Next()
		}
		status = s.Search(budget, maxLearnts)
		maxLearnts += maxLearnts / 20

		if status == Unknown && s.shouldStop() {
			break
		}
	}

	s.diag.done(s, status, time.Since(s.startTime).Seconds())
	return status
}

// Search runs unit propagation and decision-making until it finds a model
// (True), proves the problem unsatisfiable (False), exhausts maxConflicts
// conflicts without resolving either way (Unknown, caller should restart),
// or a configured stop condition fires (Unknown). A negative maxConflicts
// means unlimited.
func (s *Solver) Search(maxConflicts int, maxLearnts int) LBool {
	if s.unsat {
		return False
	}

	s.TotalRestarts++
	s.diag.restart(s)
	conflicts := 0

	for {
		if s.shouldStop() {
			return Unknown
		}
		s.TotalIterations++

		if conflict := s.watch.Propagate(s.store, s.trail, s.propQueue); conflict != NoHandle {
			conflicts++
			s.TotalConflicts++

			if s.trail.DecisionLevel() == 0 {
				s.unsat = true
				return False
			}

			learnt, backjumpLevel := s.analyze(conflict)
			lbd := s.lbdMgr.CalculateLBD(s.trail, learnt)

			s.heuristic.Decay()
			s.trail.PopTo(backjumpLevel, s.onUndo)
			s.record(learnt, lbd)
			s.diag.conflict(s, backjumpLevel, lbd)
			continue
		}

		if s.trail.DecisionLevel() == 0 {
			if !s.Simplify() {
				return False
			}
		}

		s.maybeReduce(maxLearnts)

		if maxConflicts >= 0 && conflicts > maxConflicts {
			s.trail.PopTo(0, s.onUndo)
			return Unknown
		}

		l := s.heuristic.Pick(s.trail)
		if l == NoLiteral {
			s.saveModel()
			s.trail.PopTo(0, s.onUndo)
			return True
		}
		s.trail.PushDecision(l)
		s.propQueue.Push(l)
	}
}

func (s *Solver) onUndo(l Literal) {
	s.heuristic.Reinsert(l.VarID(), Lift(l.IsPositive()))
}

func (s *Solver) saveModel() {
	model := make([]bool, s.NumVariables())
	for v := range model {
		lb := s.VarValue(v)
		if lb == Unknown {
			panic("sat: saveModel called on a partial assignment")
		}
		model[v] = lb == True
	}
	s.Models = append(s.Models, model)
}

// record inserts a freshly learned clause into the store, registers its
// watches, and pushes its unit implication (the first-UIP literal) onto
// the trail at the decision level search has just backjumped to. lbd must
// have been computed before the backjump, while every literal of learnt
// was still false.
func (s *Solver) record(learnt []Literal, lbd int) Handle {
	h := s.store.Insert(learnt, true)
	lits := s.store.Literals(h)
	s.lbdMgr.Set(h, lbd)

	if len(lits) >= 2 {
		s.watch.Register(s.store, s.trail, s.propQueue, h)
	}
	s.trail.PushImplication(lits[0], h)
	s.propQueue.Push(lits[0])

	return h
}

// Explain returns, appended to out[:0], the negation of every literal of
// clause h other than the one belonging to variable impliedVar. Pass -1
// for impliedVar to explain a conflicting clause itself (no literal is its
// own implied variable, so none is skipped); pass the implied variable's
// ID to explain why h forced that variable's assignment.
func Explain(store *ClauseStore, h Handle, impliedVar int, out []Literal) []Literal {
	out = out[:0]
	for _, l := range store.Literals(h) {
		if l.VarID() == impliedVar {
			continue
		}
		out = append(out, l.Opposite())
	}
	return out
}

// analyze walks the trail backward from a conflict to derive a learned
// clause via first-UIP resolution, minimizes it, and returns it along with
// the decision level search should backjump to (the second-highest level
// among the learned clause's literals, or 0 if it has only one literal).
func (s *Solver) analyze(conflict Handle) ([]Literal, int) {
	s.seenVar.Clear()
	currentLevel := s.trail.DecisionLevel()
	trailLits := s.trail.Literals()

	s.tmpLearnts = append(s.tmpLearnts[:0], NoLiteral) // placeholder for the UIP

	reasonHandle := conflict
	impliedVar := -1
	nImplicationPoints := 0
	nextIdx := len(trailLits) - 1

	var uipLit Literal
	for {
		s.tmpReason = Explain(s.store, reasonHandle, impliedVar, s.tmpReason)
		for _, q := range s.tmpReason {
			v := q.VarID()
			if s.seenVar.Contains(v) {
				continue
			}
			s.seenVar.Add(v)
			s.heuristic.Bump(v)

			if s.trail.LevelOf(v) == currentLevel {
				nImplicationPoints++
			} else {
				s.tmpLearnts = append(s.tmpLearnts, q.Opposite())
			}
		}

		for {
			uipLit = trailLits[nextIdx]
			nextIdx--
			if s.seenVar.Contains(uipLit.VarID()) {
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}
		impliedVar = uipLit.VarID()
		reasonHandle = Handle(s.trail.ReasonOf(impliedVar))
	}

	s.tmpLearnts[0] = uipLit.Opposite()
	learnt := s.minimize(s.tmpLearnts)
	backjumpLevel := s.trail.MaxLevelIn(learnt[1:])
	return learnt, backjumpLevel
}

// minimize drops every literal of learnt (other than the UIP at index 0)
// whose variable's reason clause is itself fully explained by variables
// already in learnt, a single-level self-subsumption pass: it does not
// recurse into the reasons of literals it keeps, trading a smaller
// reduction for a cheap, non-recursive check.
func (s *Solver) minimize(learnt []Literal) []Literal {
	out := learnt[:1]
	for _, lit := range learnt[1:] {
		if !s.isRedundant(lit) {
			out = append(out, lit)
		}
	}
	return out
}

func (s *Solver) isRedundant(lit Literal) bool {
	v := lit.VarID()
	r := s.trail.ReasonOf(v)
	if r < 0 {
		return false
	}
	s.tmpReason2 = Explain(s.store, Handle(r), v, s.tmpReason2)
	for _, q := range s.tmpReason2 {
		if !s.seenVar.Contains(q.VarID()) {
			return false
		}
	}
	return true
}
