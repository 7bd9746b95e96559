package ledger

import (
	"context"
	"fmt"
	"slices"

	"github.com/mmynk/kakeibo/internal/models"
)

// SelectGroup makes groupID the group new transactions are recorded
// against. An empty groupID clears the selection. Switching groups clears
// the locally cached per-group data.
func (l *Ledger) SelectGroup(ctx context.Context, groupID string) error {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return err
	}
	if groupID != "" {
		g, err := l.group(ctx, groupID)
		if err != nil {
			return err
		}
		if !isMember(g, userID) {
			return ErrNotMember
		}
	}
	if err := l.session.SelectGroup(ctx, groupID); err != nil {
		return fmt.Errorf("update selection: %w", err)
	}
	return nil
}

// InitializeSelection resolves the selected group at start-up. A stored
// selection is kept while it names an accessible group; otherwise the
// private group is selected, and created if it is missing.
func (l *Ledger) InitializeSelection(ctx context.Context) (*models.Group, error) {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := l.Groups(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := l.session.SelectedGroupID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	if i := slices.IndexFunc(groups, func(g *models.Group) bool { return g.ID == stored }); stored != "" && i >= 0 {
		if l.state.SelectedGroupID() != stored {
			l.state.SetSelectedGroup(stored)
		}
		return groups[i], nil
	}

	private, err := l.EnsurePrivateGroup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := l.session.SelectGroup(ctx, private.ID); err != nil {
		return nil, fmt.Errorf("update selection: %w", err)
	}
	if !slices.ContainsFunc(groups, func(g *models.Group) bool { return g.ID == private.ID }) {
		l.state.SetGroups(append(groups, private))
	}
	l.logger.Debug("Selection reset to private group", "user_id", userID, "stale", stored, "group_id", private.ID)
	return private, nil
}

// SelectedGroup returns the selected group, resolving the selection first
// if it is unset or stale.
func (l *Ledger) SelectedGroup(ctx context.Context) (*models.Group, error) {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	selected, err := l.session.SelectedGroupID(ctx)
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	if selected != "" {
		g, err := l.group(ctx, selected)
		if err == nil && isMember(g, userID) {
			if l.state.SelectedGroupID() != selected {
				l.state.SetSelectedGroup(selected)
			}
			return g, nil
		}
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}
	return l.InitializeSelection(ctx)
}
