// Package corpus supplies the labelled training examples the statistical
// stages are built from.
package corpus

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/leadsend/replytag/internal/label"
	"gopkg.in/yaml.v3"
)

//go:embed default_corpus.yaml
var defaultCorpusYAML []byte

var (
	// ErrEmpty is returned when a corpus has no examples
	ErrEmpty = errors.New("corpus is empty")
	// ErrUnknownLabel is returned when an example carries a label outside the closed set
	ErrUnknownLabel = errors.New("unknown label")
)

// Example is one labelled training reply
type Example struct {
	Text  string
	Label label.Category
}

// Corpus is an ordered list of examples. Order matters: similarity ties are
// broken by earliest example.
type Corpus []Example

// rawExample is the on-disk shape. Tag is the legacy "label||INTEREST" form.
type rawExample struct {
	Text  string `yaml:"text"`
	Label string `yaml:"label,omitempty"`
	Tag   string `yaml:"tag,omitempty"`
}

type corpusFile struct {
	Examples []rawExample `yaml:"examples"`
}

// Default returns the embedded corpus, parsed once.
func Default() Corpus {
	c := defaultCorpus()
	out := make(Corpus, len(c))
	copy(out, c)
	return out
}

var defaultCorpus = sync.OnceValue(func() Corpus {
	c, err := Parse(defaultCorpusYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded corpus: %v", err))
	}
	return c
})

// LoadFile reads a YAML corpus file
func LoadFile(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML corpus document
func Parse(data []byte) (Corpus, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	c := make(Corpus, 0, len(f.Examples))
	for i, raw := range f.Examples {
		name := raw.Label
		if name == "" {
			name = labelFromTag(raw.Tag)
		}
		cat, err := label.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("example %d: %w %q", i, ErrUnknownLabel, name)
		}
		c = append(c, Example{Text: raw.Text, Label: cat})
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// labelFromTag extracts the label from "interested||POSITIVE"
func labelFromTag(tag string) string {
	name, _, _ := strings.Cut(tag, "||")
	return name
}

// Validate checks that the corpus can be used to build a model
func (c Corpus) Validate() error {
	if len(c) == 0 {
		return ErrEmpty
	}
	for i, ex := range c {
		if strings.TrimSpace(ex.Text) == "" {
			return fmt.Errorf("example %d: text is required", i)
		}
		if !label.Valid(ex.Label) {
			return fmt.Errorf("example %d: %w %q", i, ErrUnknownLabel, ex.Label)
		}
	}
	return nil
}

// Labels returns the distinct labels in order of first appearance
func (c Corpus) Labels() []label.Category {
	seen := make(map[label.Category]bool)
	var out []label.Category
	for _, ex := range c {
		if !seen[ex.Label] {
			seen[ex.Label] = true
			out = append(out, ex.Label)
		}
	}
	return out
}

// CountByLabel returns the number of examples per label
func (c Corpus) CountByLabel() map[label.Category]int {
	counts := make(map[label.Category]int)
	for _, ex := range c {
		counts[ex.Label]++
	}
	return counts
}
