package population

import "github.com/rpreen/xcsf/classifier"

// Set is a non-owning view over a subset of the population -- the match
// set M or action set A of the design. It references members by
// handle so removals elsewhere in the population are observed rather than
// leaving a Set holding a stale pointer.
type Set struct {
	pop     *Population
	handles []Handle
}

// NewSet returns an empty Set bound to pop.
func NewSet(pop *Population) *Set {
	return &Set{pop: pop}
}

// Add appends h to the set.
func (s *Set) Add(h Handle) { s.handles = append(s.handles, h) }

// Len returns the number of handles, not numerosity-weighted.
func (s *Set) Len() int { return len(s.handles) }

// Handles returns the underlying handle slice; callers must not retain it
// past the next mutation of s.
func (s *Set) Handles() []Handle { return s.handles }

// Each visits every still-live member, skipping handles the population has
// since removed.
func (s *Set) Each(fn func(Handle, *classifier.Classifier)) {
	for _, h := range s.handles {
		if cl, ok := s.pop.Get(h); ok {
			fn(h, cl)
		}
	}
}

// NumerositySum returns Σnum over the set's still-live members.
func (s *Set) NumerositySum() int {
	total := 0
	s.Each(func(_ Handle, cl *classifier.Classifier) { total += cl.Numerosity })
	return total
}

// MeanTime returns the numerosity-weighted mean of Time over the set,
// used by the EA trigger in the design.
func (s *Set) MeanTime() float64 {
	var num, weighted int
	s.Each(func(_ Handle, cl *classifier.Classifier) {
		num += cl.Numerosity
		weighted += cl.Numerosity * cl.Time
	})
	if num == 0 {
		return 0
	}
	return float64(weighted) / float64(num)
}

// SetTime stamps every live member's Time field, used when the EA fires.
func (s *Set) SetTime(t int) {
	s.Each(func(_ Handle, cl *classifier.Classifier) { cl.Time = t })
}
