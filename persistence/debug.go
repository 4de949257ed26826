package persistence

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rpreen/xcsf/classifier"
	"github.com/rpreen/xcsf/engine"
	"github.com/rpreen/xcsf/population"
)

// summaryRecord is a human-readable projection of one classifier, for
// inspection rather than round-tripping -- the binary format in
// persistence.go is the load-bearing one.
type summaryRecord struct {
	Numerosity    int     `yaml:"numerosity"`
	Experience    int     `yaml:"experience"`
	Error         float64 `yaml:"error"`
	Fitness       float64 `yaml:"fitness"`
	ActionSetSize float64 `yaml:"actionSetSize"`
	Condition     string  `yaml:"condition"`
	Prediction    string  `yaml:"prediction"`
}

type summary struct {
	Clock         int             `yaml:"clock"`
	Count         int             `yaml:"count"`
	NumerosityPop int             `yaml:"numerositySum"`
	MeanFitness   float64         `yaml:"meanFitness"`
	Classifiers   []summaryRecord `yaml:"classifiers"`
}

// DumpSummary writes a YAML snapshot of eng's population to path, for
// operators inspecting a run without a full binary-format reader on hand.
func DumpSummary(path string, eng *engine.Engine) error {
	s := summary{
		Clock:         eng.Time(),
		Count:         eng.Population().Count(),
		NumerosityPop: eng.Population().NumerositySum(),
		MeanFitness:   eng.Population().MeanFitness(),
	}
	eng.Population().Each(func(_ population.Handle, cl *classifier.Classifier) {
		s.Classifiers = append(s.Classifiers, summaryRecord{
			Numerosity:    cl.Numerosity,
			Experience:    cl.Experience,
			Error:         cl.Error,
			Fitness:       cl.Fitness,
			ActionSetSize: cl.ActionSetSize,
			Condition:     cl.Cond.String(),
			Prediction:    cl.Pred.String(),
		})
	})

	out, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
