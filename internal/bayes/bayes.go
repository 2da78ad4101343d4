// Package bayes is the multinomial naive Bayes backstop used when no rule
// fires. The model is built once from a corpus and never updated.
package bayes

import (
	"fmt"
	"math"

	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/label"
	"github.com/leadsend/replytag/internal/tokenize"
)

// classStats holds the token counts of one category
type classStats struct {
	label    label.Category
	freq     map[string]int
	total    int
	logPrior float64
}

// Model is a read-only token-frequency model. Safe for concurrent use.
type Model struct {
	classes   []classStats // first-appearance order in the corpus
	vocab     map[string]struct{}
	documents int
}

// Prediction is the best category and its lead over the runner-up
type Prediction struct {
	Label label.Category
	// Margin is the log-probability gap to the second best category.
	// +Inf when the model knows a single category.
	Margin float64
}

// Build counts tokens per category over the whole corpus
func Build(c corpus.Corpus) (*Model, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build bayes model: %w", err)
	}

	index := make(map[label.Category]int)
	docs := make(map[label.Category]int)
	m := &Model{
		vocab:     make(map[string]struct{}),
		documents: len(c),
	}

	for _, ex := range c {
		i, ok := index[ex.Label]
		if !ok {
			i = len(m.classes)
			index[ex.Label] = i
			m.classes = append(m.classes, classStats{label: ex.Label, freq: make(map[string]int)})
		}
		docs[ex.Label]++

		s := &m.classes[i]
		for _, tok := range tokenize.Tokenize(ex.Text) {
			s.freq[tok]++
			s.total++
			m.vocab[tok] = struct{}{}
		}
	}

	for i := range m.classes {
		s := &m.classes[i]
		s.logPrior = math.Log(float64(docs[s.label]) / float64(m.documents))
	}

	return m, nil
}

// Classify scores tokens against every category with Laplace smoothing.
// Unknown tokens still count. It abstains (false) only when tokens is empty;
// the caller decides whether the margin is worth trusting.
func (m *Model) Classify(tokens []string) (Prediction, bool) {
	if len(tokens) == 0 {
		return Prediction{}, false
	}

	vocabSize := float64(len(m.vocab))
	best, second := math.Inf(-1), math.Inf(-1)
	var bestLabel label.Category

	for _, s := range m.classes {
		score := s.logPrior
		denom := float64(s.total) + vocabSize
		for _, tok := range tokens {
			score += math.Log((float64(s.freq[tok]) + 1) / denom)
		}

		// strict > keeps the earlier category on ties
		if score > best {
			second = best
			best = score
			bestLabel = s.label
		} else if score > second {
			second = score
		}
	}

	return Prediction{Label: bestLabel, Margin: best - second}, true
}

// Categories returns the modelled categories in corpus order
func (m *Model) Categories() []label.Category {
	out := make([]label.Category, len(m.classes))
	for i, s := range m.classes {
		out[i] = s.label
	}
	return out
}

// VocabularySize is the number of distinct tokens seen in training
func (m *Model) VocabularySize() int { return len(m.vocab) }

// Documents is the number of training examples
func (m *Model) Documents() int { return m.documents }
