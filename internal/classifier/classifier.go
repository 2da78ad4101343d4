// Package classifier assigns an intent label and confidence to an inbound
// email reply. Stages run in a fixed order and the first one that accepts
// decides:
//
//	empty input -> rule table -> naive Bayes -> Jaccard similarity -> default
//
// A Classifier is immutable once built and safe for concurrent use.
package classifier

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/leadsend/replytag/internal/bayes"
	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/label"
	"github.com/leadsend/replytag/internal/rules"
	"github.com/leadsend/replytag/internal/similarity"
	"github.com/leadsend/replytag/internal/tokenize"
	"go.uber.org/zap"
)

// Stage names which step of the pipeline produced a result
type Stage string

const (
	StageEmpty      Stage = "empty"
	StageRule       Stage = "rule"
	StageBayes      Stage = "bayes"
	StageSimilarity Stage = "similarity"
	StageDefault    Stage = "default"
)

// Result is what downstream lead tracking consumes
type Result struct {
	Label        label.Category     `json:"label"`
	Confidence   float64            `json:"confidence"`
	InterestType label.InterestType `json:"interestType"`
}

// Decision is a Result plus the evidence behind it
type Decision struct {
	Result
	Stage   Stage   `json:"stage"`
	Matcher string  `json:"matcher,omitempty"` // rule matcher that fired
	Margin  float64 `json:"margin,omitempty"`  // Bayes log-probability lead
	Score   float64 `json:"score,omitempty"`   // Jaccard score
	Example int     `json:"example,omitempty"` // corpus index of the similar example
}

// Classifier runs the staged pipeline. Build with New.
type Classifier struct {
	rules      *rules.Table
	model      *bayes.Model
	index      *similarity.Index
	thresholds Thresholds
}

type options struct {
	corpus     corpus.Corpus
	rules      *rules.Table
	thresholds Thresholds
	logger     *zap.Logger
}

// Option configures New
type Option func(*options)

// WithCorpus replaces the embedded training corpus
func WithCorpus(c corpus.Corpus) Option {
	return func(o *options) { o.corpus = c }
}

// WithRules replaces the built-in rule table
func WithRules(t *rules.Table) Option {
	return func(o *options) { o.rules = t }
}

// WithThresholds replaces the default acceptance thresholds
func WithThresholds(t Thresholds) Option {
	return func(o *options) { o.thresholds = t }
}

// WithLogger sets the logger used while building the model
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New builds the Bayes model and similarity index. It fails when the corpus
// or thresholds are unusable; a classifier is never returned half built.
func New(opts ...Option) (*Classifier, error) {
	o := options{thresholds: DefaultThresholds()}
	for _, apply := range opts {
		apply(&o)
	}
	if o.corpus == nil {
		o.corpus = corpus.Default()
	}
	if o.rules == nil {
		o.rules = rules.DefaultTable()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	if err := o.thresholds.Validate(); err != nil {
		return nil, err
	}

	model, err := bayes.Build(o.corpus)
	if err != nil {
		return nil, err
	}
	index, err := similarity.BuildIndex(o.corpus)
	if err != nil {
		return nil, err
	}

	o.logger.Info("classifier ready",
		zap.Int("rules", o.rules.Len()),
		zap.Int("examples", model.Documents()),
		zap.Int("categories", len(model.Categories())),
		zap.Int("vocabulary", model.VocabularySize()),
		zap.Float64("bayes_margin", o.thresholds.BayesMargin),
		zap.Float64("similarity_min", o.thresholds.SimilarityMin))

	return &Classifier{
		rules:      o.rules,
		model:      model,
		index:      index,
		thresholds: o.thresholds,
	}, nil
}

// Classify labels text. It never fails.
func (c *Classifier) Classify(text string) Result {
	return c.Explain(text).Result
}

// ClassifyPtr treats a nil text as empty input
func (c *Classifier) ClassifyPtr(text *string) Result {
	if text == nil {
		return c.Classify("")
	}
	return c.Classify(*text)
}

// Explain runs the pipeline and reports which stage decided
func (c *Classifier) Explain(text string) Decision {
	text = tokenize.Normalize(strings.ToValidUTF8(text, " "))
	if text == "" {
		return c.decide(StageEmpty, c.thresholds.EmptyLabel, c.thresholds.EmptyConfidence)
	}

	if hit, ok := c.rules.Explain(text); ok {
		d := c.decide(StageRule, hit.Rule.Category, hit.Rule.Confidence)
		d.Matcher = hit.Matcher.String()
		return d
	}

	tokens := tokenize.Tokenize(text)

	if p, ok := c.model.Classify(tokens); ok && p.Margin >= c.thresholds.BayesMargin {
		conf := math.Min(c.thresholds.BayesMaxConfidence, 0.5+p.Margin/4)
		d := c.decide(StageBayes, p.Label, round2(conf))
		d.Margin = p.Margin
		if math.IsInf(d.Margin, 1) {
			d.Margin = math.MaxFloat64
		}
		return d
	}

	if m, ok := c.index.Classify(tokenize.Set(tokens), c.thresholds.SimilarityMin); ok {
		d := c.decide(StageSimilarity, m.Label, m.Score)
		d.Score = m.Score
		d.Example = m.Example
		return d
	}

	return c.decide(StageDefault, c.thresholds.DefaultLabel, c.thresholds.DefaultConfidence)
}

// ClassifyBatch classifies texts concurrently, preserving order. At most
// GOMAXPROCS items are in flight at once.
func (c *Classifier) ClassifyBatch(texts []string) []Result {
	results := make([]Result, len(texts))
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, text string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i] = c.Classify(text)
		}(i, text)
	}
	wg.Wait()

	return results
}

// Categories returns the rule categories in evaluation order
func (c *Classifier) Categories() []label.Category {
	return c.rules.Categories()
}

func (c *Classifier) decide(stage Stage, cat label.Category, confidence float64) Decision {
	return Decision{
		Result: Result{
			Label:        cat,
			Confidence:   clamp01(confidence),
			InterestType: label.Interest(cat),
		},
		Stage: stage,
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// String is a one-line summary for CLI output
func (d Decision) String() string {
	s := fmt.Sprintf("%s (%s, %.2f) via %s", d.Label, d.InterestType, d.Confidence, d.Stage)
	switch d.Stage {
	case StageRule:
		s += " " + d.Matcher
	case StageBayes:
		s += fmt.Sprintf(" margin=%.2f", d.Margin)
	case StageSimilarity:
		s += fmt.Sprintf(" example=%d", d.Example)
	}
	return s
}
