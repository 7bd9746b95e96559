package repository

import (
	"context"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

// Users accesses user documents.
type Users struct{ base }

// Get retrieves a user by ID.
func (r *Users) Get(ctx context.Context, id string) (*models.User, error) {
	return get[models.User](ctx, r.base, models.TypeUser, id)
}

// FindByUsername returns the user with username, or nil when there is none.
func (r *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, r.base, storage.Query{
		Type:   models.TypeUser,
		Filter: filter.Eq("username", username),
		Limit:  1,
	})
}

// FindByEmail returns the user with email, verified or not, or nil when there is none.
func (r *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, r.base, storage.Query{
		Type:   models.TypeUser,
		Filter: filter.Eq("email", models.NormalizeEmail(email)),
		Limit:  1,
	})
}

// FindVerifiedByEmail returns the verified user with email, or nil when there is none.
func (r *Users) FindVerifiedByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := query[models.User](ctx, r.base, storage.Query{
		Type:   models.TypeUser,
		Filter: filter.Eq("email", models.NormalizeEmail(email)),
	})
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.IsVerified {
			return u, nil
		}
	}
	return nil, nil
}

// Create persists a new user.
func (r *Users) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return create(ctx, r.base, models.TypeUser, u)
}

// Update applies p to the user document.
func (r *Users) Update(ctx context.Context, id string, p *storage.Patch) (*models.User, error) {
	return patch[models.User](ctx, r.base, models.TypeUser, id, p)
}

// Delete removes a user document.
func (r *Users) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}
