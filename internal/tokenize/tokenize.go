// Package tokenize turns reply text into the token sequences used by the
// statistical stages of the classifier.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords are dropped after splitting. "i'm" can never survive the
// punctuation pass but is kept so the list matches the corpus tooling.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "to": {}, "for": {}, "of": {}, "and": {},
	"in": {}, "on": {}, "at": {}, "is": {}, "it": {}, "this": {}, "that": {},
	"i": {}, "im": {}, "i'm": {}, "we": {}, "you": {}, "our": {}, "your": {},
	"with": {}, "be": {}, "as": {}, "are": {}, "was": {}, "were": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "have": {}, "has": {},
	"had": {}, "will": {}, "shall": {}, "do": {}, "does": {}, "did": {},
	"from": {}, "by": {}, "about": {}, "please": {}, "thanks": {}, "thank": {},
	"hi": {}, "hello": {},
}

// Normalize trims surrounding whitespace. Case is left alone; matchers decide
// their own case handling.
func Normalize(text string) string {
	return strings.TrimSpace(text)
}

// Tokenize lower-cases text, blanks out everything that is not [a-z0-9] or
// whitespace, splits on whitespace and removes stop words. Order and
// duplicates are preserved.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = strings.ToLower(removeAccents(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, f := range fields {
		if IsStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// Set collapses a token sequence into a set.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// IsStopWord reports whether token is in the fixed stop-word list.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// removeAccents folds "café" to "cafe" so accented words keep their letters.
// The chain is stateful, so a new one is built per call.
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}
