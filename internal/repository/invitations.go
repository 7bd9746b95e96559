package repository

import (
	"context"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

// Invitations accesses groupInvitation documents.
type Invitations struct{ base }

// Get retrieves an invitation by ID.
func (r *Invitations) Get(ctx context.Context, id string) (*models.GroupInvitation, error) {
	return get[models.GroupInvitation](ctx, r.base, models.TypeGroupInvitation, id)
}

// ListForInvitee returns the invitations addressed to userID.
func (r *Invitations) ListForInvitee(ctx context.Context, userID string) ([]*models.GroupInvitation, error) {
	return query[models.GroupInvitation](ctx, r.base, storage.Query{
		Type:   models.TypeGroupInvitation,
		Filter: filter.Eq("invitee", userID),
	})
}

// ListForGroup returns the pending invitations into groupID.
func (r *Invitations) ListForGroup(ctx context.Context, groupID string) ([]*models.GroupInvitation, error) {
	return query[models.GroupInvitation](ctx, r.base, storage.Query{
		Type:   models.TypeGroupInvitation,
		Filter: filter.Eq("groupId", groupID),
	})
}

// FindPending returns the invitation of invitee into groupID, or nil when there is none.
func (r *Invitations) FindPending(ctx context.Context, groupID, invitee string) (*models.GroupInvitation, error) {
	return first[models.GroupInvitation](ctx, r.base, storage.Query{
		Type:   models.TypeGroupInvitation,
		Filter: filter.And(filter.Eq("groupId", groupID), filter.Eq("invitee", invitee)),
		Limit:  1,
	})
}

// Create persists a new invitation.
func (r *Invitations) Create(ctx context.Context, inv *models.GroupInvitation) (*models.GroupInvitation, error) {
	return create(ctx, r.base, models.TypeGroupInvitation, inv)
}

// Delete removes an invitation document.
func (r *Invitations) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, id)
}
