// Package rules implements the deterministic first stage of reply
// classification: an ordered table of categories, each owning a list of
// matchers. The first category with any firing matcher wins.
package rules

import (
	"errors"
	"fmt"

	"github.com/leadsend/replytag/internal/label"
)

// ErrInvalidRule is returned when a rule table cannot be built
var ErrInvalidRule = errors.New("invalid rule")

// Rule binds a category to its matchers and calibrated confidence
type Rule struct {
	Category   label.Category
	Confidence float64
	Matchers   []Matcher
}

// FirstMatch returns the first matcher that fires against text
func (r Rule) FirstMatch(text string) (Matcher, bool) {
	for _, m := range r.Matchers {
		if m.Match(text) {
			return m, true
		}
	}
	return nil, false
}

// Table is an ordered, read-only list of rules
type Table struct {
	rules []Rule
}

// NewTable validates rules and freezes their order. Rules are evaluated in
// the order given; put the categories that are most costly to get wrong first.
func NewTable(rules ...Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: table has no rules", ErrInvalidRule)
	}

	seen := make(map[label.Category]bool, len(rules))
	frozen := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if !label.Valid(r.Category) {
			return nil, fmt.Errorf("%w: rule %d: unknown category %q", ErrInvalidRule, i, r.Category)
		}
		if seen[r.Category] {
			return nil, fmt.Errorf("%w: rule %d: duplicate category %q", ErrInvalidRule, i, r.Category)
		}
		if r.Confidence <= 0 || r.Confidence > 1 {
			return nil, fmt.Errorf("%w: rule %d (%s): confidence %.2f out of range (0,1]", ErrInvalidRule, i, r.Category, r.Confidence)
		}
		if len(r.Matchers) == 0 {
			return nil, fmt.Errorf("%w: rule %d (%s): no matchers", ErrInvalidRule, i, r.Category)
		}
		seen[r.Category] = true

		matchers := make([]Matcher, len(r.Matchers))
		copy(matchers, r.Matchers)
		frozen = append(frozen, Rule{Category: r.Category, Confidence: r.Confidence, Matchers: matchers})
	}

	return &Table{rules: frozen}, nil
}

// Match returns the first rule, in table order, with a firing matcher.
// The second return value is false when no rule fires.
func (t *Table) Match(text string) (Rule, bool) {
	hit, ok := t.Explain(text)
	return hit.Rule, ok
}

// Hit describes which rule and matcher fired
type Hit struct {
	Rule    Rule
	Matcher Matcher
}

// Explain is Match plus the matcher that fired
func (t *Table) Explain(text string) (Hit, bool) {
	if text == "" {
		return Hit{}, false
	}
	for _, r := range t.rules {
		if m, ok := r.FirstMatch(text); ok {
			return Hit{Rule: r, Matcher: m}, true
		}
	}
	return Hit{}, false
}

// Categories returns the categories in evaluation order
func (t *Table) Categories() []label.Category {
	out := make([]label.Category, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Category
	}
	return out
}

// Len returns the number of rules
func (t *Table) Len() int { return len(t.rules) }
