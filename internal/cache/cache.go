// Package cache stores checking results in a sqlite database so that a run
// over unchanged inputs can be answered without checking again. A run is
// keyed by a digest of every input tree, the options that affect checking
// and the catalog.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
	"golang.org/x/exp/slices"
	_ "modernc.org/sqlite"

	"github.com/funvibe/mambacheck/internal/catalog"
	"github.com/funvibe/mambacheck/internal/config"
	"github.com/funvibe/mambacheck/internal/diagnostics"
	"github.com/funvibe/mambacheck/internal/pipeline"
	"github.com/funvibe/mambacheck/internal/token"
)

// schemaVersion is mixed into every key; bump it when the stored format or
// the checker's output changes.
const schemaVersion = "mambacheck-cache-1"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	key        TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE TABLE IF NOT EXISTS results (
	key         TEXT    NOT NULL REFERENCES runs(key) ON DELETE CASCADE,
	ordinal     INTEGER NOT NULL,
	file        TEXT    NOT NULL,
	module      TEXT    NOT NULL,
	accepted    INTEGER NOT NULL,
	diagnostics TEXT    NOT NULL,
	PRIMARY KEY (key, ordinal)
);`

type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Key digests the inputs of a run. Sources are hashed in path order so the
// key does not depend on the order files were named on the command line.
func Key(sources []pipeline.Source, opts config.Options, cat *catalog.Catalog) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "%s\n", schemaVersion)
	fmt.Fprintf(h, "strict_optional=%t warn_uncaught_raises=%t\n", opts.StrictOptional, opts.WarnUncaughtRaises)
	if cat != nil {
		data, err := json.Marshal(cat)
		if err != nil {
			return "", fmt.Errorf("hashing catalog: %w", err)
		}
		h.Write(data)
	}
	sorted := slices.Clone(sources)
	slices.SortFunc(sorted, func(a, b pipeline.Source) int {
		return strings.Compare(a.Path, b.Path)
	})
	for _, s := range sorted {
		fmt.Fprintf(h, "\n%s\n%d\n", s.Path, len(s.Data))
		h.Write(s.Data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// record is the stored form of a diagnostic.
type record struct {
	Code      string `json:"code"`
	Severity  int    `json:"severity"`
	File      string `json:"file"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"end_line"`
	EndColumn int    `json:"end_column"`
	Lexeme    string `json:"lexeme,omitempty"`
	Message   string `json:"message"`
}

func encode(diags []*diagnostics.DiagnosticError) (string, error) {
	recs := make([]record, len(diags))
	for i, d := range diags {
		recs[i] = record{
			Code:      string(d.Code),
			Severity:  int(d.Severity),
			File:      d.File,
			Line:      d.Token.Line,
			Column:    d.Token.Column,
			EndLine:   d.Token.EndLine,
			EndColumn: d.Token.EndColumn,
			Lexeme:    d.Token.Lexeme,
			Message:   d.Message,
		}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decode(data string) ([]*diagnostics.DiagnosticError, error) {
	var recs []record
	if err := json.Unmarshal([]byte(data), &recs); err != nil {
		return nil, err
	}
	out := make([]*diagnostics.DiagnosticError, len(recs))
	for i, r := range recs {
		out[i] = &diagnostics.DiagnosticError{
			Code:     diagnostics.ErrorCode(r.Code),
			Severity: diagnostics.Severity(r.Severity),
			File:     r.File,
			Token: token.Token{
				Lexeme:    r.Lexeme,
				Line:      r.Line,
				Column:    r.Column,
				EndLine:   r.EndLine,
				EndColumn: r.EndColumn,
			},
			Message: r.Message,
		}
	}
	return out, nil
}

// Lookup returns the stored results of a run, in their original order.
func (c *Cache) Lookup(ctx context.Context, key string) ([]*pipeline.FileResult, bool, error) {
	var exists int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE key = ?`, key).Scan(&exists)
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	if exists == 0 {
		return nil, false, nil
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT file, module, accepted, diagnostics FROM results WHERE key = ? ORDER BY ordinal`, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	defer rows.Close()

	out := []*pipeline.FileResult{}
	for rows.Next() {
		var (
			r        pipeline.FileResult
			accepted int
			diags    string
		)
		if err := rows.Scan(&r.File, &r.Module, &accepted, &diags); err != nil {
			return nil, false, fmt.Errorf("cache lookup: %w", err)
		}
		if r.Diagnostics, err = decode(diags); err != nil {
			return nil, false, fmt.Errorf("cache entry for %s is corrupt: %w", r.File, err)
		}
		r.Accepted = accepted != 0
		r.Cached = true
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}
	return out, true, nil
}

// Store records the results of a run, replacing an earlier entry with the
// same key.
func (c *Cache) Store(ctx context.Context, key string, results []*pipeline.FileResult) (err error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM results WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO runs (key) VALUES (?)`, key); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	for i, r := range results {
		diags, encErr := encode(r.Diagnostics)
		if encErr != nil {
			err = encErr
			return fmt.Errorf("cache store: %w", err)
		}
		accepted := 0
		if r.Accepted {
			accepted = 1
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO results (key, ordinal, file, module, accepted, diagnostics) VALUES (?, ?, ?, ?, ?, ?)`,
			key, i, r.File, r.Module, accepted, diags); err != nil {
			return fmt.Errorf("cache store: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Prune removes runs other than the most recent keep ones.
func (c *Cache) Prune(ctx context.Context, keep int) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM results WHERE key NOT IN (
			SELECT key FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("cache prune: %w", err)
	}
	_, err = c.db.ExecContext(ctx, `
		DELETE FROM runs WHERE key NOT IN (
			SELECT key FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("cache prune: %w", err)
	}
	return nil
}
