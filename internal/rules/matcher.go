package rules

import (
	"fmt"
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Matcher tests whether a rule fires against reply text
type Matcher interface {
	Match(text string) bool
	String() string
}

// quoteFolder maps typographic quotes to ASCII so "don’t" and "don't" match the same phrase
var quoteFolder = strings.NewReplacer("’", "'", "‘", "'", "“", `"`, "”", `"`)

func foldCase(s string) string {
	return quoteFolder.Replace(strings.ToLower(s))
}

// phraseMatcher fires when any literal phrase occurs as a substring.
// All phrases are compiled into one Aho-Corasick automaton.
type phraseMatcher struct {
	phrases []string
	matcher *ahocorasick.Matcher
}

// Phrases returns a case-insensitive literal substring matcher.
// Blank phrases are ignored; a matcher with no phrases never fires.
func Phrases(phrases ...string) Matcher {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = foldCase(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		normalized = append(normalized, p)
	}

	m := &phraseMatcher{phrases: normalized}
	if len(normalized) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(normalized)
	}
	return m
}

// Match uses MatchThreadSafe: the plain Match keeps per-call state on the automaton.
func (m *phraseMatcher) Match(text string) bool {
	if m.matcher == nil || text == "" {
		return false
	}
	return len(m.matcher.MatchThreadSafe([]byte(foldCase(text)))) > 0
}

func (m *phraseMatcher) String() string {
	return fmt.Sprintf("phrases%q", m.phrases)
}

// patternMatcher fires when its regular expression matches
type patternMatcher struct {
	re *regexp.Regexp
}

// CompilePattern compiles expr as a case-insensitive regular expression
func CompilePattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidRule, expr, err)
	}
	return &patternMatcher{re: re}, nil
}

// Pattern is like CompilePattern but panics on a bad expression.
// Use it for package-level tables.
func Pattern(expr string) Matcher {
	m, err := CompilePattern(expr)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *patternMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

func (m *patternMatcher) String() string {
	return m.re.String()
}
