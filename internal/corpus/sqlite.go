package corpus

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leadsend/replytag/internal/label"
	_ "modernc.org/sqlite"
)

// DefaultQuery reads examples from a training_examples(text, label) table
const DefaultQuery = `SELECT text, label FROM training_examples ORDER BY rowid`

// LoadSQLite reads a corpus from a SQLite database opened read-only.
// query must return (text, label) rows; an empty query uses DefaultQuery.
func LoadSQLite(ctx context.Context, dbPath, query string) (Corpus, error) {
	if query == "" {
		query = DefaultQuery
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	var c Corpus
	for rows.Next() {
		var text, name sql.NullString
		if err := rows.Scan(&text, &name); err != nil {
			return nil, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		cat, err := label.Parse(labelFromTag(name.String))
		if err != nil {
			return nil, fmt.Errorf("corpus row %d: %w %q", len(c)+1, ErrUnknownLabel, name.String)
		}
		c = append(c, Example{Text: text.String, Label: cat})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus rows: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("corpus database %s: %w", dbPath, err)
	}
	return c, nil
}
