package sat

import "math"

// LubyRestart schedules restart intervals using the universal sequence of
// Luby, Sinclair, and Zuckerman: a sequence of powers of two, repeated and
// doubled in a pattern that is provably within a constant factor of the
// best fixed restart policy an adversary could pick. Each call to Next
// advances the sequence and returns the next interval, scaled by base
// conflicts.
type LubyRestart struct {
	base  float64
	index int
}

// NewLubyRestart returns a restart schedule whose intervals are base times
// the Luby sequence.
func NewLubyRestart(base float64) *LubyRestart {
	return &LubyRestart{base: base}
}

// Next returns the number of conflicts to allow before the next restart.
func (r *LubyRestart) Next() int {
	v := luby(r.index)
	r.index++
	return int(r.base * v)
}

// luby returns the i-th term (0-indexed) of the Luby sequence:
// 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ...
func luby(i int) float64 {
	size, seq := 1, 0
	for size < i+1 {
		seq++
		size = 2*size + 1
	}
	for size-1 != i {
		size = (size - 1) / 2
		seq--
		i = i % size
	}
	return math.Pow(2, float64(seq))
}
