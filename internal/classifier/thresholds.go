package classifier

import (
	"fmt"

	"github.com/leadsend/replytag/internal/label"
)

// Thresholds controls when the statistical stages are trusted and what the
// fallbacks return
type Thresholds struct {
	BayesMargin        float64        `yaml:"bayes_margin"`         // minimum log-probability lead
	BayesMaxConfidence float64        `yaml:"bayes_max_confidence"` // cap on 0.5 + margin/4
	SimilarityMin      float64        `yaml:"similarity_min"`       // minimum Jaccard score
	DefaultLabel       label.Category `yaml:"default_label"`
	DefaultConfidence  float64        `yaml:"default_confidence"`
	EmptyLabel         label.Category `yaml:"empty_label"`
	EmptyConfidence    float64        `yaml:"empty_confidence"`
}

// DefaultThresholds returns the calibrated defaults
func DefaultThresholds() Thresholds {
	return Thresholds{
		BayesMargin:        1.0,
		BayesMaxConfidence: 0.9,
		SimilarityMin:      0.25,
		DefaultLabel:       label.NotInterested,
		DefaultConfidence:  0.25,
		EmptyLabel:         label.NotInterested,
		EmptyConfidence:    0.1,
	}
}

// Validate checks ranges and labels
func (t Thresholds) Validate() error {
	if t.BayesMargin < 0 {
		return fmt.Errorf("thresholds: bayes_margin must be >= 0, got %.2f", t.BayesMargin)
	}
	// a zero-overlap example is never a match, so 0 would be a silent no-op
	if t.SimilarityMin <= 0 || t.SimilarityMin > 1 {
		return fmt.Errorf("thresholds: similarity_min must be within (0,1], got %.2f", t.SimilarityMin)
	}
	for name, v := range map[string]float64{
		"bayes_max_confidence": t.BayesMaxConfidence,
		"default_confidence":   t.DefaultConfidence,
		"empty_confidence":     t.EmptyConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("thresholds: %s must be within [0,1], got %.2f", name, v)
		}
	}
	if !label.Valid(t.DefaultLabel) {
		return fmt.Errorf("thresholds: unknown default_label %q", t.DefaultLabel)
	}
	if !label.Valid(t.EmptyLabel) {
		return fmt.Errorf("thresholds: unknown empty_label %q", t.EmptyLabel)
	}
	return nil
}
