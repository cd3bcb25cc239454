// Package index exports a SQLite database describing which Strong's numbers
// the verse collection uses and which of them have definitions.
package index

import (
	"context"
	"database/sql"
	"os"
	"sort"

	"github.com/FocuswithJustin/strongsdef/core/errors"
	"github.com/FocuswithJustin/strongsdef/core/lexicon"
	"github.com/FocuswithJustin/strongsdef/core/merge"
	"github.com/FocuswithJustin/strongsdef/core/sqlite"
	"github.com/FocuswithJustin/strongsdef/core/verses"
)

const schema = `
CREATE TABLE lexicon (
	strongs     TEXT PRIMARY KEY,
	definition  TEXT,
	occurrences INTEGER NOT NULL
);
CREATE TABLE missing (
	strongs     TEXT PRIMARY KEY,
	occurrences INTEGER NOT NULL
);
CREATE TABLE tokens (
	verse    TEXT NOT NULL,
	position INTEGER NOT NULL,
	strongs  TEXT NOT NULL
);
CREATE INDEX idx_tokens_strongs ON tokens(strongs);
CREATE INDEX idx_tokens_verse ON tokens(verse, position);
`

// Stats reports how many rows were written per table.
type Stats struct {
	Lexicon int
	Missing int
	Tokens  int
}

// Write replaces the database at path with a fresh index built from the
// merged collection.
func Write(ctx context.Context, path string, defs lexicon.Definitions, c *verses.Collection, res *merge.Result) (*Stats, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.NewIO("remove", path, err)
	}

	db, err := sqlite.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewIO("begin transaction on", path, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return nil, errors.Wrap(err, "create index schema")
	}

	stats := &Stats{}
	if stats.Lexicon, err = writeLexicon(ctx, tx, defs, res); err != nil {
		return nil, err
	}
	if stats.Missing, err = writeMissing(ctx, tx, res); err != nil {
		return nil, err
	}
	if stats.Tokens, err = writeTokens(ctx, tx, c); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewIO("commit", path, err)
	}
	return stats, nil
}

func writeLexicon(ctx context.Context, tx *sql.Tx, defs lexicon.Definitions, res *merge.Result) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO lexicon (strongs, definition, occurrences) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare lexicon insert")
	}
	defer stmt.Close()

	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		text, ok := defs.Text(k)
		def := sql.NullString{String: text, Valid: ok}
		if _, err := stmt.ExecContext(ctx, k, def, res.Occurrences[k]); err != nil {
			return 0, errors.Wrapf(err, "insert lexicon %s", k)
		}
	}
	return len(keys), nil
}

func writeMissing(ctx context.Context, tx *sql.Tx, res *merge.Result) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO missing (strongs, occurrences) VALUES (?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare missing insert")
	}
	defer stmt.Close()

	missing := res.MissingSorted()
	for _, k := range missing {
		if _, err := stmt.ExecContext(ctx, k, res.Occurrences[k]); err != nil {
			return 0, errors.Wrapf(err, "insert missing %s", k)
		}
	}
	return len(missing), nil
}

func writeTokens(ctx context.Context, tx *sql.Tx, c *verses.Collection) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tokens (verse, position, strongs) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, "prepare token insert")
	}
	defer stmt.Close()

	n := 0
	for _, v := range c.Verses() {
		for i, tok := range v.Tokens() {
			strongs, ok := tok.Strongs()
			if !ok {
				continue
			}
			if _, err := stmt.ExecContext(ctx, v.Ref, i, strongs); err != nil {
				return 0, errors.Wrapf(err, "insert token %s[%d]", v.Ref, i)
			}
			n++
		}
	}
	return n, nil
}
