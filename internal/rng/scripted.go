package rng

// Scripted is a Source that replays a fixed sequence of draws. It exists for
// deterministic engine tests: each Float64 call consumes the next scripted
// value, and integer draws consume a float and scale it into range. When the
// script is exhausted the last value repeats.
type Scripted struct {
	Values []float64
	pos    int
}

// NewScripted creates a Scripted source that yields the given values in order.
func NewScripted(values ...float64) *Scripted {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &Scripted{Values: values}
}

func (s *Scripted) next() float64 {
	v := s.Values[s.pos]
	if s.pos < len(s.Values)-1 {
		s.pos++
	}
	return v
}

// Float64 returns the next scripted value.
func (s *Scripted) Float64() float64 { return s.next() }

// IntRange scales the next scripted value into [min, max].
func (s *Scripted) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(s.next()*float64(max-min+1))
}

// Pick scales the next scripted value into [0, n).
func (s *Scripted) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	idx := int(s.next() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return idx
}
