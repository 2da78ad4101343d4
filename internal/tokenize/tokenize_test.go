package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "stop words removed",
			text:     "Yes, I'm interested in learning more about your product",
			expected: []string{"yes", "m", "interested", "learning", "more", "product"},
		},
		{
			name:     "duplicates kept",
			text:     "Call call CALL!",
			expected: []string{"call", "call", "call"},
		},
		{
			name:     "digits kept",
			text:     "Looking forward to our call tomorrow at 10am",
			expected: []string{"looking", "forward", "call", "tomorrow", "10am"},
		},
		{
			name:     "accents folded",
			text:     "Café résumé",
			expected: []string{"cafe", "resume"},
		},
		{
			name:     "non latin dropped",
			text:     "привет мир",
			expected: nil,
		},
		{
			name:     "empty",
			text:     "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     " \t\n ",
			expected: nil,
		},
		{
			name:     "only stop words",
			text:     "Thanks, hi, hello!",
			expected: nil,
		},
		{
			name:     "punctuation splits words",
			text:     "opt-out/remove",
			expected: []string{"opt", "out", "remove"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Tokenize(tt.text))
		})
	}
}

func TestSet(t *testing.T) {
	set := Set([]string{"call", "call", "demo"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "call")
	assert.Contains(t, set, "demo")

	assert.Empty(t, Set(nil))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Out Of Office", Normalize("  Out Of Office \n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestStopWordCount(t *testing.T) {
	assert.GreaterOrEqual(t, len(stopWords), 40)
	assert.True(t, IsStopWord("please"))
	assert.False(t, IsStopWord("pricing"))
}
