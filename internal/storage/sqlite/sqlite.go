// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps read-modify-write patches serialized and lets
	// ":memory:" databases survive across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create persists a new document.
func (s *SQLiteStore) Create(ctx context.Context, doc storage.Document) (storage.Document, error) {
	if doc.Type() == "" {
		return nil, fmt.Errorf("%w: document type required", storage.ErrInvalidQuery)
	}

	created := doc.Clone()
	id := created.ID()
	if id == "" {
		id = uuid.New().String()
	}
	now := s.now()
	created.Stamp(id, now)

	body, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (id, type, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		id, created.Type(), string(body), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		if isConstraintError(err) {
			return nil, fmt.Errorf("%w: %s", storage.ErrConflict, id)
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	return created, nil
}

// Get retrieves a document by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (storage.Document, error) {
	return getDocument(ctx, s.db, id)
}

// Query returns the documents matching q.
func (s *SQLiteStore) Query(ctx context.Context, q storage.Query) ([]storage.Document, error) {
	f, err := q.Compile()
	if err != nil {
		return nil, err
	}

	query, args := buildSelect(q, f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// Patch applies p to the document inside a transaction.
func (s *SQLiteStore) Patch(ctx context.Context, id string, p storage.Patch) (storage.Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := getDocument(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(doc); err != nil {
		return nil, err
	}
	now := s.now()
	doc.Touch(now)

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE documents SET body = ?, updated_at = ? WHERE id = ?",
		string(body), now.UnixNano(), id,
	); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return doc, nil
}

// Delete removes a document by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}

	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getDocument(ctx context.Context, q queryer, id string) (storage.Document, error) {
	var body string
	err := q.QueryRowContext(ctx, "SELECT body FROM documents WHERE id = ?", id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return decodeBody(body)
}

func decodeBody(body string) (storage.Document, error) {
	doc := storage.Document{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// buildSelect translates a validated query into SQL. Field names are
// interpolated into JSON paths; only declared filter fields and
// storage.ValidField names reach it.
func buildSelect(q storage.Query, f filter.Filter) (string, []any) {
	var b strings.Builder
	args := []any{q.Type}

	b.WriteString("SELECT body FROM documents WHERE type = ?")
	if cond := f.SQL(dialect, len(args)); cond.Clause != "" {
		b.WriteString(" AND ")
		b.WriteString(cond.Clause)
		args = append(args, cond.Params...)
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY json_extract(body, '$.%s') %s, id %s", q.OrderBy, dir, dir)
	} else {
		b.WriteString(" ORDER BY created_at, id")
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return b.String(), args
}

func jsonPath(field string) string {
	return fmt.Sprintf("json_extract(body, '$.%s')", field)
}

var dialect = filter.Dialect{
	Placeholder: func(int) string { return "?" },
	Equal: func(field, ph string) string {
		return fmt.Sprintf("%s = %s", jsonPath(field), ph)
	},
	NotEqual: func(field, ph string) string {
		path := jsonPath(field)
		return fmt.Sprintf("(%s IS NULL OR %s != %s)", path, path, ph)
	},
	Has: func(field, ph string) string {
		return fmt.Sprintf("(json_type(body, '$.%s') = 'array' AND EXISTS (SELECT 1 FROM json_each(body, '$.%s') WHERE json_each.value = %s))", field, field, ph)
	},
}

func isConstraintError(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		// SQLITE_CONSTRAINT and its extended codes share the low byte 19.
		return coded.Code()&0xff == 19
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
