package sat

// LBDManager scores every learned clause by its literal block distance
// (LBD) — the number of distinct decision levels represented among its
// literals — and periodically evicts the lowest-quality learned clauses to
// keep the clause database from growing without bound.
type LBDManager struct {
	lbd []uint32

	// presentLevels is reused across CalculateLBD calls to count distinct
	// decision levels without allocating a set each time; it is sized like
	// a variable-indexed set because a decision level can never exceed the
	// number of variables.
	presentLevels *ResetSet
}

// NewLBDManager returns an empty manager.
func NewLBDManager() *LBDManager {
	return &LBDManager{presentLevels: &ResetSet{}}
}

// AddVariable keeps presentLevels sized to the variable count.
func (m *LBDManager) AddVariable() {
	m.presentLevels.Expand()
}

// Set records h's LBD score, computed at the time h was learned.
func (m *LBDManager) Set(h Handle, lbd int) {
	m.lbd[h] = uint32(lbd)
}

// Get returns h's stored LBD score.
func (m *LBDManager) Get(h Handle) int {
	return int(m.lbd[h])
}

// CalculateLBD returns the number of distinct decision levels represented
// by lits under trail. Every literal is expected to be false under trail
// (this is called right after a clause is learned or a conflict found, so
// every literal of the clause is false by construction).
func (m *LBDManager) CalculateLBD(trail *Trail, lits []Literal) int {
	m.presentLevels.Clear()
	count := 0
	for _, l := range lits {
		lvl := trail.LevelOf(l.VarID())
		if !m.presentLevels.Contains(lvl) {
			m.presentLevels.Add(lvl)
			count++
		}
	}
	return count
}

// ReduceDB evicts roughly half of the learned clauses, preferring to keep
// those with the lowest LBD: it buckets learned clauses by LBD, finds the
// cutoff LBD value at which the retained count first reaches half the
// learned population, and keeps every clause below that cutoff plus
// exactly enough clauses at the cutoff to reach it. A clause currently
// serving as a reason on the trail is always kept, and original clauses
// are never candidates for eviction in the first place.
func (m *LBDManager) ReduceDB(store *ClauseStore, trail *Trail) {
	var learnt []Handle
	maxLBD := 0
	for i := 0; i < store.Count(); i++ {
		h := Handle(i)
		if !store.IsLearnt(h) {
			continue
		}
		learnt = append(learnt, h)
		if l := int(m.lbd[h]); l > maxLBD {
			maxLBD = l
		}
	}
	if len(learnt) == 0 {
		return
	}

	buckets := make([]int, maxLBD+1)
	for _, h := range learnt {
		buckets[m.lbd[h]]++
	}

	desired := len(learnt) / 2
	cutoffLBD := maxLBD
	cutoffCount := 0
	seen := 0
	for lbd := 0; lbd <= maxLBD; lbd++ {
		cutoffLBD = lbd
		if seen+buckets[lbd] > desired {
			cutoffCount = desired - seen
			break
		}
		seen += buckets[lbd]
		cutoffCount = buckets[lbd]
	}

	locked := trail.ReasonClauses()
	remainingAtCutoff := cutoffCount

	keep := func(h Handle) bool {
		if !store.IsLearnt(h) {
			return true
		}
		if _, ok := locked[h]; ok {
			return true
		}
		lbd := int(m.lbd[h])
		if lbd < cutoffLBD {
			return true
		}
		if lbd == cutoffLBD && remainingAtCutoff > 0 {
			remainingAtCutoff--
			return true
		}
		return false
	}

	store.Compact(keep)
}

// OnGrow implements subscriber.
func (m *LBDManager) OnGrow(newCapacity int) {
	for len(m.lbd) < newCapacity {
		m.lbd = append(m.lbd, 0)
	}
}

// OnCompact implements subscriber.
func (m *LBDManager) OnCompact(perm []int, newCount int) {
	newLBD := make([]uint32, newCount)
	for old, np := range perm {
		if np < 0 {
			continue
		}
		newLBD[np] = m.lbd[old]
	}
	m.lbd = newLBD
}
