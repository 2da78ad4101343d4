// Package similarity is the lexical fallback: the reply's token set is
// compared with every training example by Jaccard similarity.
package similarity

import (
	"fmt"
	"math"

	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/label"
	"github.com/leadsend/replytag/internal/tokenize"
)

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

type entry struct {
	label  label.Category
	tokens map[string]struct{}
}

// Index holds the pre-tokenised corpus. Read-only after BuildIndex.
type Index struct {
	entries []entry
}

// Match is the best-scoring example's category
type Match struct {
	Label label.Category
	Score float64 // rounded to two decimals
	// Example is the corpus position of the best example
	Example int
}

// BuildIndex tokenises every example once
func BuildIndex(c corpus.Corpus) (*Index, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build similarity index: %w", err)
	}

	idx := &Index{entries: make([]entry, len(c))}
	for i, ex := range c {
		idx.entries[i] = entry{
			label:  ex.Label,
			tokens: tokenize.Set(tokenize.Tokenize(ex.Text)),
		}
	}
	return idx, nil
}

// Classify finds the most similar example. The earliest example wins ties.
// It returns false when the best score is below threshold or when no example
// shares a token with the input.
func (idx *Index) Classify(tokens map[string]struct{}, threshold float64) (Match, bool) {
	best := Match{Example: -1}
	bestRaw := 0.0

	for i, e := range idx.entries {
		score := Jaccard(tokens, e.tokens)
		if score > bestRaw {
			bestRaw = score
			best = Match{Label: e.label, Example: i}
		}
	}

	if best.Example < 0 || bestRaw < threshold {
		return Match{}, false
	}
	best.Score = round2(bestRaw)
	return best, true
}

// Len is the number of indexed examples
func (idx *Index) Len() int { return len(idx.entries) }

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
