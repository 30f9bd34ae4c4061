package sat

import (
	"github.com/rhartert/yagh"
)

// Heuristic picks the next decision literal using a VSIDS-style scheme:
// every variable has an activity score that is bumped whenever it
// participates in conflict analysis and globally decayed between
// conflicts; the variable with the highest activity among the unassigned
// is selected next. A binary heap (keyed on negative activity, so the
// minimum key is the maximum activity) keeps that selection at
// O(log n) instead of a linear scan.
type Heuristic struct {
	order *yagh.IntMap[float64]

	scores  []float64 // in [0, 1e100)
	inc     float64   // in (0, 1e100)
	decay   float64   // in (0, 1]

	phases      []LBool
	phaseSaving bool
}

// NewHeuristic returns an empty heuristic. decay must be in (0, 1]; smaller
// values forget older conflicts faster. When phaseSaving is true, a
// variable's last-assigned polarity is reused as its default the next time
// it is decided; otherwise the default polarity is always negative, per
// the spec's recommended default.
func NewHeuristic(decay float64, phaseSaving bool) *Heuristic {
	return &Heuristic{
		order:       yagh.New[float64](0),
		inc:         1,
		decay:       decay,
		phaseSaving: phaseSaving,
	}
}

// AddVariable registers a new variable with zero initial activity and
// negative default phase.
func (h *Heuristic) AddVariable() {
	v := len(h.phases)
	h.scores = append(h.scores, 0)
	h.phases = append(h.phases, False)
	h.order.GrowBy(1)
	h.order.Put(v, -h.scores[v])
}

// Bump increases v's activity by the current bump increment, rescaling all
// activities (and the increment itself) if the bumped score would overflow
// a fixed threshold. This is called once per literal touched during
// conflict analysis (the conflicting clause and every clause resolved
// against it), per the spec's bumping rule.
func (h *Heuristic) Bump(v int) {
	h.scores[v] += h.inc
	if h.order.Contains(v) {
		h.order.Put(v, -h.scores[v])
	}
	if h.scores[v] > 1e100 {
		h.rescale()
	}
}

// Decay increases the bump increment geometrically, which is equivalent to
// (and cheaper than) multiplying every activity by a decay factor each
// conflict.
func (h *Heuristic) Decay() {
	h.inc /= h.decay
	if h.inc > 1e100 {
		h.rescale()
	}
}

func (h *Heuristic) rescale() {
	h.inc *= 1e-100
	for v, s := range h.scores {
		h.scores[v] = s * 1e-100
		if h.order.Contains(v) {
			h.order.Put(v, -h.scores[v])
		}
	}
}

// Reinsert makes v a decision candidate again after it is unassigned by a
// backjump. If phase saving is enabled, val (the polarity v held just
// before being unassigned) becomes its new default phase.
func (h *Heuristic) Reinsert(v int, val LBool) {
	if h.phaseSaving && val != Unknown {
		h.phases[v] = val
	}
	h.order.Put(v, -h.scores[v])
}

// Pick returns the next decision literal: the highest-activity unassigned
// variable, signed by its saved (or default) phase. It returns NoLiteral if
// every variable is already assigned.
func (h *Heuristic) Pick(trail *Trail) Literal {
	for {
		next, ok := h.order.Pop()
		if !ok {
			return NoLiteral
		}
		if trail.VarValue(next.Elem) != Unknown {
			continue // stale: already assigned, not yet removed from the heap
		}
		if h.phases[next.Elem] == True {
			return PositiveLiteral(next.Elem)
		}
		return NegativeLiteral(next.Elem)
	}
}
