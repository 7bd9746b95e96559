package repository

import (
	"context"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

// Transactions accesses transaction documents.
type Transactions struct{ base }

// Get retrieves a transaction by ID.
func (r *Transactions) Get(ctx context.Context, id string) (*models.Transaction, error) {
	return get[models.Transaction](ctx, r.base, models.TypeTransaction, id)
}

// ListByGroup returns the transactions recorded against groupID, newest first.
func (r *Transactions) ListByGroup(ctx context.Context, groupID string) ([]*models.Transaction, error) {
	return query[models.Transaction](ctx, r.base, storage.Query{
		Type:    models.TypeTransaction,
		Filter:  filter.Eq("groupId", groupID),
		OrderBy: "date",
		Desc:    true,
	})
}

// Create persists a new transaction.
func (r *Transactions) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	return create(ctx, r.base, models.TypeTransaction, tx)
}

// Delete removes a transaction document.
func (r *Transactions) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}
