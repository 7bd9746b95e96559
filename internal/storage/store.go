// Package storage provides abstractions for the remote document store.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no document has the requested ID.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when creating a document whose ID is already taken.
	ErrConflict = errors.New("document already exists")
	// ErrInvalidQuery is returned for malformed queries and patches.
	ErrInvalidQuery = errors.New("invalid query")
)

// Store defines the primitive operations of the document store.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, a
// remote Connect service) without changing the workflow code.
//
// Every call stands alone: there are no transactions spanning documents.
type Store interface {
	// Query returns the documents of q.Type matching q.Filter.
	Query(ctx context.Context, q Query) ([]Document, error)

	// Get retrieves a document by its ID.
	// Returns ErrNotFound if the document does not exist.
	Get(ctx context.Context, id string) (Document, error)

	// Create persists a new document and returns it with _id and
	// timestamps populated. A caller-supplied _id is kept.
	Create(ctx context.Context, doc Document) (Document, error)

	// Patch applies p to a single document atomically and returns the result.
	// Returns ErrNotFound if the document does not exist.
	Patch(ctx context.Context, id string, p Patch) (Document, error)

	// Delete removes a document.
	// Returns ErrNotFound if the document does not exist.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
