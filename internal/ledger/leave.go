package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
)

// departure says why a user is removed from a group.
type departure int

const (
	// leaving is an explicit leave; the private group cannot be left.
	leaving departure = iota
	// deletingAccount removes the user everywhere, private group included.
	deletingAccount
)

// LeaveGroup removes the signed-in user from groupID.
//
//   - The private group cannot be left.
//   - An owner with other members hands the group to the member with the
//     lowest user ID, in the same patch that removes them.
//   - A sole owner deletes the group after its transactions and pending
//     invitations.
//   - Any other member is removed.
//
// If the group was selected, the selection falls back to the private group.
func (l *Ledger) LeaveGroup(ctx context.Context, groupID string) error {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	g, err := l.group(ctx, groupID)
	if err != nil {
		return err
	}
	if !isMember(g, userID) {
		return ErrNotMember
	}

	if err := l.depart(ctx, g, userID, leaving); err != nil {
		return err
	}

	selected, err := l.session.SelectedGroupID(ctx)
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}
	if selected == groupID {
		private, err := l.FindPrivateGroup(ctx, userID)
		if err != nil {
			return err
		}
		next := ""
		if private != nil {
			next = private.ID
		}
		if err := l.session.SelectGroup(ctx, next); err != nil {
			return fmt.Errorf("update selection: %w", err)
		}
	}
	return nil
}

// depart applies the leave transition of userID to g.
func (l *Ledger) depart(ctx context.Context, g *models.Group, userID string, why departure) error {
	if g.IsPrivate() {
		if why == leaving {
			return ErrLeavePrivateGroup
		}
		return l.deleteGroup(ctx, g)
	}

	if g.Owner != userID {
		if _, err := l.repo.Groups.Update(ctx, g.ID, storage.NewPatch().PullField("members", userID)); err != nil {
			return l.notFoundOr("leave group", err, ErrGroupNotFound, "group_id", g.ID)
		}
		l.logger.Info("Member left group", "group_id", g.ID, "user_id", userID)
		return nil
	}

	others := g.OtherMembers(userID)
	if len(others) == 0 {
		return l.deleteGroup(ctx, g)
	}

	newOwner := others[0]
	p := storage.NewPatch().SetField("owner", newOwner).PullField("members", userID)
	if _, err := l.repo.Groups.Update(ctx, g.ID, p); err != nil {
		return l.notFoundOr("transfer ownership", err, ErrGroupNotFound, "group_id", g.ID)
	}
	l.logger.Info("Ownership transferred", "group_id", g.ID, "from", userID, "to", newOwner)
	return nil
}

// deleteGroup deletes the transactions and pending invitations of g, then g
// itself. The group is kept if any dependent could not be deleted, so
// repeating the call finishes the cascade.
func (l *Ledger) deleteGroup(ctx context.Context, g *models.Group) error {
	txs, err := l.repo.Transactions.ListByGroup(ctx, g.ID)
	if err != nil {
		return l.remote("list group transactions", err, "group_id", g.ID)
	}
	invs, err := l.repo.Invitations.ListForGroup(ctx, g.ID)
	if err != nil {
		return l.remote("list group invitations", err, "group_id", g.ID)
	}

	ids := make([]string, 0, len(txs)+len(invs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	for _, inv := range invs {
		ids = append(ids, inv.ID)
	}

	var failed []error
	for _, id := range ids {
		if err := l.repo.Store().Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			failed = append(failed, err)
		}
	}
	if len(failed) > 0 {
		return l.remote("delete group dependents", errors.Join(failed...),
			"group_id", g.ID, "failed", len(failed), "total", len(ids))
	}

	if err := l.repo.Groups.Delete(ctx, g.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return l.remote("delete group", err, "group_id", g.ID)
	}
	l.logger.Info("Group deleted", "group_id", g.ID, "transactions", len(txs), "invitations", len(invs))
	return nil
}
