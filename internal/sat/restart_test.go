package sat

import "testing"

func TestLubyRestart_Sequence(t *testing.T) {
	// The Luby sequence (1-indexed): 1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8, ...
	want := []int{1, 1, 2, 1, 1, 2, 4, 1, 1, 2, 1, 1, 2, 4, 8}

	r := NewLubyRestart(1)
	for i, w := range want {
		if got := r.Next(); got != w {
			t.Errorf("Next() #%d = %d, want %d", i+1, got, w)
		}
	}
}

func TestLubyRestart_ScalesByBase(t *testing.T) {
	r := NewLubyRestart(100)
	if got, want := r.Next(), 100; got != want {
		t.Errorf("Next() = %d, want %d", got, want)
	}
}
