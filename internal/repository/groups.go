package repository

import (
	"context"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

// Groups accesses group documents.
type Groups struct{ base }

// Get retrieves a group by ID.
func (r *Groups) Get(ctx context.Context, id string) (*models.Group, error) {
	return get[models.Group](ctx, r.base, models.TypeGroup, id)
}

// FindPrivate returns the private group owned by userID, or nil when there is none.
// If several exist the oldest wins.
func (r *Groups) FindPrivate(ctx context.Context, userID string) (*models.Group, error) {
	return first[models.Group](ctx, r.base, storage.Query{
		Type:   models.TypeGroup,
		Filter: filter.And(filter.Eq("owner", userID), filter.Eq("name", models.PrivateGroupName)),
	})
}

// ListAccessible returns the groups userID owns or belongs to, oldest first.
func (r *Groups) ListAccessible(ctx context.Context, userID string) ([]*models.Group, error) {
	return query[models.Group](ctx, r.base, storage.Query{
		Type:   models.TypeGroup,
		Filter: filter.Or(filter.Eq("owner", userID), filter.Has("members", userID)),
	})
}

// Create persists a new group owned by owner with owner as its only member.
// Name validation is left to the caller.
func (r *Groups) Create(ctx context.Context, name, owner string) (*models.Group, error) {
	return create(ctx, r.base, models.TypeGroup, &models.Group{
		Name:    name,
		Owner:   owner,
		Members: []string{owner},
	})
}

// Update applies p to the group document.
func (r *Groups) Update(ctx context.Context, id string, p *storage.Patch) (*models.Group, error) {
	return patch[models.Group](ctx, r.base, models.TypeGroup, id, p)
}

// Delete removes a group document. Dependents are left to the caller.
func (r *Groups) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}
