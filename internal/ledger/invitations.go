package ledger

import (
	"context"
	"errors"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
)

// Invite invites the verified user with email into groupID on behalf of the
// signed-in user, who must be a member. Private groups cannot be shared.
// If the same invitation is already pending it is returned unchanged.
func (l *Ledger) Invite(ctx context.Context, groupID, email string) (*models.GroupInvitation, error) {
	email = models.NormalizeEmail(email)
	if !models.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	inviterID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	g, err := l.group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.IsPrivate() {
		return nil, ErrPrivateGroup
	}
	if !isMember(g, inviterID) {
		return nil, ErrNotMember
	}

	invitee, err := l.repo.Users.FindVerifiedByEmail(ctx, email)
	if err != nil {
		return nil, l.remote("find invitee", err)
	}
	if invitee == nil {
		return nil, ErrInviteeNotFound
	}
	if isMember(g, invitee.ID) {
		return nil, ErrAlreadyMember
	}

	pending, err := l.repo.Invitations.FindPending(ctx, g.ID, invitee.ID)
	if err != nil {
		return nil, l.remote("find pending invitation", err, "group_id", g.ID)
	}
	if pending != nil {
		return pending, nil
	}

	inv, err := l.repo.Invitations.Create(ctx, &models.GroupInvitation{
		GroupID:   g.ID,
		GroupName: g.Name,
		Invitee:   invitee.ID,
		InvitedBy: inviterID,
	})
	if err != nil {
		return nil, l.remote("create invitation", err, "group_id", g.ID)
	}
	l.logger.Info("Invitation created", "invitation_id", inv.ID, "group_id", g.ID, "invitee", invitee.ID)
	return inv, nil
}

// Invitations lists the invitations addressed to the signed-in user.
func (l *Ledger) Invitations(ctx context.Context) ([]*models.GroupInvitation, error) {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	invs, err := l.repo.Invitations.ListForInvitee(ctx, userID)
	if err != nil {
		return nil, l.remote("list invitations", err, "user_id", userID)
	}
	return invs, nil
}

// Accept adds the signed-in user to the invitation's group and consumes the
// invitation. The membership change has set semantics and runs first, so a
// retry after a failed delete converges without duplicating the member.
func (l *Ledger) Accept(ctx context.Context, invitationID string) (*models.Group, error) {
	inv, userID, err := l.ownInvitation(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	// The target must be a group before anything is written to it.
	if _, err := l.group(ctx, inv.GroupID); err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return nil, l.dropStaleInvitation(ctx, inv)
		}
		return nil, err
	}

	g, err := l.repo.Groups.Update(ctx, inv.GroupID, storage.NewPatch().AddToSetField("members", userID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, l.dropStaleInvitation(ctx, inv)
		}
		return nil, l.remote("join group", err, "group_id", inv.GroupID)
	}

	if err := l.deleteInvitation(ctx, inv.ID); err != nil {
		return nil, err
	}
	l.logger.Info("Invitation accepted", "invitation_id", inv.ID, "group_id", g.ID, "user_id", userID)
	return g, nil
}

// dropStaleInvitation removes an invitation whose group is gone; it can never
// be accepted.
func (l *Ledger) dropStaleInvitation(ctx context.Context, inv *models.GroupInvitation) error {
	if err := l.deleteInvitation(ctx, inv.ID); err != nil {
		return err
	}
	l.logger.Info("Dropped invitation to missing group", "invitation_id", inv.ID, "group_id", inv.GroupID)
	return ErrGroupNotFound
}

// Decline consumes the invitation without joining the group.
func (l *Ledger) Decline(ctx context.Context, invitationID string) error {
	inv, userID, err := l.ownInvitation(ctx, invitationID)
	if err != nil {
		return err
	}
	if err := l.deleteInvitation(ctx, inv.ID); err != nil {
		return err
	}
	l.logger.Info("Invitation declined", "invitation_id", inv.ID, "group_id", inv.GroupID, "user_id", userID)
	return nil
}

// ownInvitation fetches an invitation addressed to the signed-in user.
func (l *Ledger) ownInvitation(ctx context.Context, invitationID string) (*models.GroupInvitation, string, error) {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, "", err
	}
	if invitationID == "" {
		return nil, "", ErrInvitationNotFound
	}
	inv, err := l.repo.Invitations.Get(ctx, invitationID)
	if err != nil {
		return nil, "", l.notFoundOr("get invitation", err, ErrInvitationNotFound, "invitation_id", invitationID)
	}
	if inv.Invitee != userID {
		return nil, "", ErrNotInvitee
	}
	return inv, userID, nil
}

// deleteInvitation deletes an invitation; one that is already gone counts as deleted.
func (l *Ledger) deleteInvitation(ctx context.Context, id string) error {
	if err := l.repo.Invitations.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return l.remote("delete invitation", err, "invitation_id", id)
	}
	return nil
}
