package corpus

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/leadsend/replytag/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, Example{
		Text:  "Yes, I'm interested in learning more about your product",
		Label: label.Interested,
	}, c[0])

	counts := c.CountByLabel()
	for _, cat := range label.All() {
		assert.Positive(t, counts[cat], "no examples for %s", cat)
	}

	// Default hands out copies
	c[0].Text = "changed"
	assert.NotEqual(t, "changed", Default()[0].Text)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    Corpus
		wantErr error
	}{
		{
			name: "label field",
			doc: `
examples:
  - text: "Sounds great"
    label: interested
  - text: "Out until Monday"
    label: OUT_OF_OFFICE
`,
			want: Corpus{
				{Text: "Sounds great", Label: label.Interested},
				{Text: "Out until Monday", Label: label.OutOfOffice},
			},
		},
		{
			name: "legacy tag",
			doc: `
examples:
  - text: "I think you have the wrong person"
    tag: "wrong_person||NEGATIVE"
`,
			want: Corpus{{Text: "I think you have the wrong person", Label: label.WrongPerson}},
		},
		{
			name:    "unknown label",
			doc:     "examples:\n  - text: hi\n    label: maybe\n",
			wantErr: ErrUnknownLabel,
		},
		{
			name:    "no examples",
			doc:     "examples: []\n",
			wantErr: ErrEmpty,
		},
		{
			name:    "empty document",
			doc:     "",
			wantErr: ErrEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.doc))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsBlankText(t *testing.T) {
	_, err := Parse([]byte("examples:\n  - text: '  '\n    label: won\n"))
	assert.Error(t, err)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("examples: [unclosed"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("examples:\n  - text: Contract signed\n    label: won\n"), 0600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Corpus{{Text: "Contract signed", Label: label.Won}}, c)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLabels(t *testing.T) {
	c := Corpus{
		{Text: "a", Label: label.Won},
		{Text: "b", Label: label.Lost},
		{Text: "c", Label: label.Won},
	}
	assert.Equal(t, []label.Category{label.Won, label.Lost}, c.Labels())
	assert.Equal(t, map[label.Category]int{label.Won: 2, label.Lost: 1}, c.CountByLabel())
}

func newTestDB(t *testing.T, rows [][2]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "corpus.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE training_examples (id INTEGER PRIMARY KEY, text TEXT, label TEXT)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err = db.Exec(`INSERT INTO training_examples (text, label) VALUES (?, ?)`, r[0], r[1])
		require.NoError(t, err)
	}
	return path
}

func TestLoadSQLite(t *testing.T) {
	path := newTestDB(t, [][2]string{
		{"Please remove me from your list", "unsubscribed"},
		{"Happy to chat next week", "interested||POSITIVE"},
	})

	c, err := LoadSQLite(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, Corpus{
		{Text: "Please remove me from your list", Label: label.Unsubscribed},
		{Text: "Happy to chat next week", Label: label.Interested},
	}, c)
}

func TestLoadSQLiteCustomQuery(t *testing.T) {
	path := newTestDB(t, [][2]string{
		{"Please remove me from your list", "unsubscribed"},
		{"Happy to chat next week", "interested"},
	})

	c, err := LoadSQLite(context.Background(), path,
		`SELECT text, label FROM training_examples WHERE label = 'interested'`)
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, label.Interested, c[0].Label)
}

func TestLoadSQLiteErrors(t *testing.T) {
	empty := newTestDB(t, nil)
	_, err := LoadSQLite(context.Background(), empty, "")
	assert.ErrorIs(t, err, ErrEmpty)

	bad := newTestDB(t, [][2]string{{"hello", "maybe"}})
	_, err = LoadSQLite(context.Background(), bad, "")
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = LoadSQLite(context.Background(), empty, "SELECT nope FROM missing")
	assert.Error(t, err)
}
