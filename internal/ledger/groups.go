package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
)

// ValidateGroupName trims name and rejects empty and reserved names.
func ValidateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", ErrEmptyGroupName
	case name == models.PrivateGroupName:
		return "", ErrReservedGroupName
	}
	return name, nil
}

// CreateGroup creates a shared group owned by the signed-in user.
func (l *Ledger) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	name, err := ValidateGroupName(name)
	if err != nil {
		return nil, err
	}
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	g, err := l.repo.Groups.Create(ctx, name, userID)
	if err != nil {
		return nil, l.remote("create group", err, "name", name)
	}
	l.logger.Info("Group created", "group_id", g.ID, "owner", userID)
	return g, nil
}

// RenameGroup renames a shared group. Only the owner may rename it.
func (l *Ledger) RenameGroup(ctx context.Context, groupID, name string) (*models.Group, error) {
	name, err := ValidateGroupName(name)
	if err != nil {
		return nil, err
	}
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}

	g, err := l.group(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.IsPrivate() {
		return nil, ErrRenamePrivate
	}
	if g.Owner != userID {
		return nil, ErrNotOwner
	}

	g, err = l.repo.Groups.Update(ctx, groupID, storage.NewPatch().SetField("name", name))
	if err != nil {
		return nil, l.notFoundOr("rename group", err, ErrGroupNotFound, "group_id", groupID)
	}
	return g, nil
}

// Groups lists the groups the signed-in user owns or belongs to and caches
// them in the shared state.
func (l *Ledger) Groups(ctx context.Context) ([]*models.Group, error) {
	userID, err := l.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := l.repo.Groups.ListAccessible(ctx, userID)
	if err != nil {
		return nil, l.remote("list groups", err, "user_id", userID)
	}
	l.state.SetGroups(groups)
	return groups, nil
}

// FindPrivateGroup returns the private group of userID, or nil when it is missing.
func (l *Ledger) FindPrivateGroup(ctx context.Context, userID string) (*models.Group, error) {
	g, err := l.repo.Groups.FindPrivate(ctx, userID)
	if err != nil {
		return nil, l.remote("find private group", err, "user_id", userID)
	}
	return g, nil
}

// EnsurePrivateGroup returns the private group of userID, creating it when
// it is missing.
func (l *Ledger) EnsurePrivateGroup(ctx context.Context, userID string) (*models.Group, error) {
	g, err := l.FindPrivateGroup(ctx, userID)
	if err != nil || g != nil {
		return g, err
	}
	g, err = l.repo.Groups.Create(ctx, models.PrivateGroupName, userID)
	if err != nil {
		return nil, l.remote("create private group", err, "user_id", userID)
	}
	l.logger.Info("Private group created", "group_id", g.ID, "user_id", userID)
	return g, nil
}

// group fetches a group, mapping a missing document to ErrGroupNotFound.
func (l *Ledger) group(ctx context.Context, groupID string) (*models.Group, error) {
	if groupID == "" {
		return nil, ErrGroupNotFound
	}
	g, err := l.repo.Groups.Get(ctx, groupID)
	if err != nil {
		return nil, l.notFoundOr("get group", err, ErrGroupNotFound, "group_id", groupID)
	}
	return g, nil
}

// notFoundOr maps storage.ErrNotFound to notFound and anything else to ErrRemote.
func (l *Ledger) notFoundOr(op string, err, notFound error, args ...any) error {
	if errors.Is(err, storage.ErrNotFound) {
		return notFound
	}
	return l.remote(op, err, args...)
}

// isMember reports whether userID belongs to g, as a member or as its owner.
func isMember(g *models.Group, userID string) bool {
	return g.Owner == userID || g.HasMember(userID)
}
