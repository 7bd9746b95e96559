// Package repository provides typed access to the documents of the ledger.
//
// Documents read back from the store are decoded and validated here, so the
// workflow never handles a raw storage.Document. Single lookups of a
// malformed document fail with ErrMalformed; list queries skip and log them.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/kakeibo/internal/storage"
)

// ErrMalformed is returned when a stored document fails validation.
var ErrMalformed = errors.New("malformed document")

// Repository groups the typed repositories sharing one store.
type Repository struct {
	Users        *Users
	Groups       *Groups
	Invitations  *Invitations
	Transactions *Transactions

	store storage.Store
}

// New creates a Repository over store.
func New(store storage.Store, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	b := base{store: store, logger: logger}
	return &Repository{
		Users:        &Users{b},
		Groups:       &Groups{b},
		Invitations:  &Invitations{b},
		Transactions: &Transactions{b},
		store:        store,
	}
}

// Store returns the underlying document store.
func (r *Repository) Store() storage.Store {
	return r.store
}

type base struct {
	store  storage.Store
	logger *slog.Logger
}

// validated is implemented by the model types.
type validated[T any] interface {
	*T
	Validate() error
}

// decode converts doc into a model, checking its type and required fields.
func decode[T any, PT validated[T]](docType string, doc storage.Document) (*T, error) {
	if doc.Type() != docType {
		return nil, fmt.Errorf("%w: %s is a %q, not a %q", storage.ErrNotFound, doc.ID(), doc.Type(), docType)
	}
	v := new(T)
	if err := doc.Decode(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := PT(v).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

// decodeAll decodes a query result, skipping documents that fail validation.
func decodeAll[T any, PT validated[T]](logger *slog.Logger, docType string, docs []storage.Document) []*T {
	out := make([]*T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T, PT](docType, doc)
		if err != nil {
			logger.Warn("Skipping malformed document", "id", doc.ID(), "type", docType, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// get fetches and decodes one document.
func get[T any, PT validated[T]](ctx context.Context, b base, docType, id string) (*T, error) {
	doc, err := b.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return decode[T, PT](docType, doc)
}

// create persists v as a new document of docType and decodes the stored result.
func create[T any, PT validated[T]](ctx context.Context, b base, docType string, v *T) (*T, error) {
	doc, err := storage.NewDocument(docType, v)
	if err != nil {
		return nil, err
	}
	created, err := b.store.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	return decode[T, PT](docType, created)
}

// patch applies p to the document and decodes the result.
func patch[T any, PT validated[T]](ctx context.Context, b base, docType, id string, p *storage.Patch) (*T, error) {
	doc, err := b.store.Patch(ctx, id, *p)
	if err != nil {
		return nil, err
	}
	return decode[T, PT](docType, doc)
}

// query runs q and decodes the valid results.
func query[T any, PT validated[T]](ctx context.Context, b base, q storage.Query) ([]*T, error) {
	docs, err := b.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	return decodeAll[T, PT](b.logger, q.Type, docs), nil
}

// first returns the first valid result of q, or nil when there is none.
func first[T any, PT validated[T]](ctx context.Context, b base, q storage.Query) (*T, error) {
	items, err := query[T, PT](ctx, b, q)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}
