// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
// Documents live in a single JSONB table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

var _ storage.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    body JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_type_created ON documents(type, created_at, id);
CREATE INDEX IF NOT EXISTS idx_documents_body ON documents USING GIN (body jsonb_path_ops);
`

// uniqueViolation is the SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New connects to the database at dsn and runs migrations.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create persists a new document.
func (s *Store) Create(ctx context.Context, doc storage.Document) (storage.Document, error) {
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
		"INSERT INTO documents (id, type, body, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)",
		id, created.Type(), string(body), now,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", storage.ErrConflict, id)
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return created, nil
}

// Get retrieves a document by ID.
func (s *Store) Get(ctx context.Context, id string) (storage.Document, error) {
	return getDocument(ctx, s.db, id, false)
}

// Query returns the documents matching q.
func (s *Store) Query(ctx context.Context, q storage.Query) ([]storage.Document, error) {
	f, err := q.Compile()
	if err != nil {
		return nil, err
	}

	query, args := BuildSelect(q, f)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []storage.Document
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc := storage.Document{}
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// Patch applies p under a row lock.
func (s *Store) Patch(ctx context.Context, id string, p storage.Patch) (storage.Document, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc, err := getDocument(ctx, tx, id, true)
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
		"UPDATE documents SET body = $1, updated_at = $2 WHERE id = $3",
		string(body), now, id,
	); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return doc, nil
}

// Delete removes a document by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
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

func getDocument(ctx context.Context, q queryer, id string, lock bool) (storage.Document, error) {
	query := "SELECT body FROM documents WHERE id = $1"
	if lock {
		query += " FOR UPDATE"
	}
	var body []byte
	err := q.QueryRowContext(ctx, query, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	doc := storage.Document{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

// BuildSelect translates a validated query into SQL with numbered placeholders.
func BuildSelect(q storage.Query, f filter.Filter) (string, []any) {
	b := &selectBuilder{args: []any{q.Type}}
	var sb strings.Builder
	sb.WriteString("SELECT body FROM documents WHERE type = $1")
	if cond := f.SQL(dialect, len(b.args)); cond.Clause != "" {
		sb.WriteString(" AND ")
		sb.WriteString(cond.Clause)
		b.args = append(b.args, cond.Params...)
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY body->>%s %s, id %s", pq.QuoteLiteral(q.OrderBy), dir, dir)
	} else {
		sb.WriteString(" ORDER BY created_at, id")
	}

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %s", b.arg(q.Limit))
	}
	return sb.String(), b.args
}

type selectBuilder struct {
	args []any
}

func (b *selectBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return placeholder(len(b.args))
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

var dialect = filter.Dialect{
	Placeholder: placeholder,
	Equal: func(field, ph string) string {
		return fmt.Sprintf("body->>%s = %s", pq.QuoteLiteral(field), ph)
	},
	NotEqual: func(field, ph string) string {
		return fmt.Sprintf("(body->>%s) IS DISTINCT FROM %s", pq.QuoteLiteral(field), ph)
	},
	Has: func(field, ph string) string {
		f := pq.QuoteLiteral(field)
		return fmt.Sprintf("(jsonb_typeof(body->%s) = 'array' AND body->%s @> jsonb_build_array(%s::text))", f, f, ph)
	},
	// body->>field yields text, so constants are compared in their JSON text form.
	Param: func(v any) any {
		switch v := v.(type) {
		case bool:
			return strconv.FormatBool(v)
		case int64:
			return strconv.FormatInt(v, 10)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return v
	},
}
