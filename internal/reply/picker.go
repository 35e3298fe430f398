package reply

import "math/rand/v2"

// Picker chooses one of n phrasing variants.
type Picker interface {
	Pick(n int) int
}

// RandomPicker picks uniformly at random.
type RandomPicker struct{}

// Pick returns a random index in [0, n).
func (RandomPicker) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.IntN(n)
}

// FixedPicker always picks the same index, clamped to the pool size.
type FixedPicker int

// Pick returns the fixed index.
func (f FixedPicker) Pick(n int) int {
	i := int(f)
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// SequencePicker cycles through indexes, useful for exercising every variant.
type SequencePicker struct {
	next int
}

// Pick returns the next index modulo n.
func (s *SequencePicker) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	i := s.next % n
	s.next++
	return i
}
