package sat

// watchEntry is one node of a per-literal watch list: the watching clause,
// plus a cached "blocker" literal (the clause's other watched literal).
// When the blocker is already true the clause is known satisfied without
// ever touching the clause's own literals — the same optimization the
// teacher's solver calls a watcher's guard.
type watchEntry struct {
	clause  Handle
	blocker Literal
}

// WatchIndex maintains, for every literal, the set of clauses currently
// watching it, and implements Boolean constraint propagation over a
// ClauseStore and Trail. A clause of size >= 2 always keeps its two
// watched literals at positions 0 and 1 of its own literal segment in the
// store — propagation swaps literals within that segment as it searches
// for replacements, rather than keeping watch positions in a side table,
// mirroring how the teacher keeps c.literals[0]/c.literals[1] canonical.
type WatchIndex struct {
	lists   [][]watchEntry // indexed by Literal
	scratch []watchEntry   // reused buffer for the list being processed
}

// NewWatchIndex returns an empty index.
func NewWatchIndex() *WatchIndex {
	return &WatchIndex{}
}

// AddVariable registers the two new literals of a newly added variable.
func (idx *WatchIndex) AddVariable() {
	idx.lists = append(idx.lists, nil, nil)
}

// Register attaches clause h to the watch lists of its first two literals,
// or — for a unit clause — enqueues or reports it directly. It returns h
// itself if the clause is a top-level conflict (a false unit clause),
// NoHandle otherwise.
func (idx *WatchIndex) Register(store *ClauseStore, trail *Trail, queue *Queue[Literal], h Handle) Handle {
	lits := store.Literals(h)
	if len(lits) == 1 {
		switch trail.Value(lits[0]) {
		case False:
			return h
		case Unknown:
			trail.PushImplication(lits[0], h)
			queue.Push(lits[0])
		}
		return NoHandle
	}

	idx.watch(lits[0].Opposite(), h, lits[1])
	idx.watch(lits[1].Opposite(), h, lits[0])
	return NoHandle
}

func (idx *WatchIndex) watch(onFalseOf Literal, h Handle, blocker Literal) {
	idx.lists[onFalseOf] = append(idx.lists[onFalseOf], watchEntry{clause: h, blocker: blocker})
}

// Propagate drains queue, processing each newly-true literal's falsified
// watch list, until the queue empties (no conflict, NoHandle) or a clause
// is found with every literal false (Handle of the conflicting clause).
func (idx *WatchIndex) Propagate(store *ClauseStore, trail *Trail, queue *Queue[Literal]) Handle {
	for queue.Size() > 0 {
		l := queue.Pop()
		if h := idx.propagateLiteral(store, trail, queue, l); h != NoHandle {
			return h
		}
	}
	return NoHandle
}

func (idx *WatchIndex) propagateLiteral(store *ClauseStore, trail *Trail, queue *Queue[Literal], lTrue Literal) Handle {
	// Clauses are registered under the opposite of their watched literal, so
	// a clause watching falseLit is found here, under the literal (lTrue)
	// that just became true and falsified it.
	falseLit := lTrue.Opposite()

	idx.scratch = idx.scratch[:0]
	idx.scratch = append(idx.scratch, idx.lists[lTrue]...)
	idx.lists[lTrue] = idx.lists[lTrue][:0]

	for i := 0; i < len(idx.scratch); i++ {
		entry := idx.scratch[i]
		h := entry.clause

		if trail.Value(entry.blocker) == True {
			idx.lists[lTrue] = append(idx.lists[lTrue], entry)
			continue
		}

		lits := store.Literals(h)
		// Canonicalize so that lits[1] is the literal that just became
		// false; lits[0] is then the clause's other watched literal.
		if lits[0] == falseLit {
			lits[0], lits[1] = lits[1], lits[0]
		}

		if trail.Value(lits[0]) == True {
			idx.lists[lTrue] = append(idx.lists[lTrue], watchEntry{clause: h, blocker: lits[0]})
			continue
		}

		replaced := false
		for k := 2; k < len(lits); k++ {
			if trail.Value(lits[k]) != False {
				lits[1], lits[k] = lits[k], lits[1]
				idx.watch(lits[1].Opposite(), h, lits[0])
				replaced = true
				break
			}
		}
		if replaced {
			continue
		}

		// lits[0] is the only non-false literal left.
		idx.lists[lTrue] = append(idx.lists[lTrue], watchEntry{clause: h, blocker: lits[0]})
		switch trail.Value(lits[0]) {
		case Unknown:
			trail.PushImplication(lits[0], h)
			queue.Push(lits[0])
		case False:
			idx.lists[lTrue] = append(idx.lists[lTrue], idx.scratch[i+1:]...)
			queue.Clear()
			return h
		}
	}

	return NoHandle
}

// OnGrow implements subscriber. Watch lists are indexed by literal, not by
// clause Handle, so clause-store growth never requires resizing them.
func (idx *WatchIndex) OnGrow(newCapacity int) {}

// OnCompact implements subscriber: every list is filtered to drop entries
// for deleted clauses and rewritten with the surviving clauses' new
// Handles.
func (idx *WatchIndex) OnCompact(perm []int, newCount int) {
	for lit := range idx.lists {
		src := idx.lists[lit]
		if len(src) == 0 {
			continue
		}
		kept := src[:0]
		for _, e := range src {
			if np := perm[e.clause]; np >= 0 {
				e.clause = Handle(np)
				kept = append(kept, e)
			}
		}
		idx.lists[lit] = kept
	}
}
