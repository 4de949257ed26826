package engine

import (
	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/population"
)

// MatchWithoutCovering builds a match set with no covering fallback, for
// prediction-only trials (the design). empty is true iff no
// existing classifier matched, in which case the caller should emit a
// neutral prediction rather than dereference the returned set.
func (e *Engine) MatchWithoutCovering(x []float64) (m *population.Set, empty bool) {
	m = population.NewSet(e.pop)
	e.pop.Each(func(h population.Handle, cl *classifier.Classifier) {
		if cl.Match(x) {
			m.Add(h)
		}
	})
	return m, m.Len() == 0
}
