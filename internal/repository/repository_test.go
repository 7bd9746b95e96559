package repository

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/sqlite"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, slog.New(slog.DiscardHandler))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	alice, err := repo.Users.Create(ctx, &models.User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "hash", IsVerified: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, alice.ID)

	_, err = repo.Users.Create(ctx, &models.User{
		Username: "bob", Email: "bob@example.com", PasswordHash: "hash",
	})
	require.NoError(t, err)

	found, err := repo.Users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, alice.ID, found.ID)

	missing, err := repo.Users.FindByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, missing)

	verified, err := repo.Users.FindVerifiedByEmail(ctx, " Alice@Example.com ")
	require.NoError(t, err)
	require.NotNil(t, verified)
	assert.Equal(t, alice.ID, verified.ID)

	unverified, err := repo.Users.FindVerifiedByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, unverified, "unverified users cannot be found for invitations")

	anyBob, err := repo.Users.FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.NotNil(t, anyBob)

	updated, err := repo.Users.Update(ctx, alice.ID, storage.NewPatch().SetField("username", "alice2"))
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
}

func TestGroups(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	private, err := repo.Groups.Create(ctx, models.PrivateGroupName, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, private.Members)

	trip, err := repo.Groups.Create(ctx, "Trip", "u2")
	require.NoError(t, err)
	_, err = repo.Groups.Update(ctx, trip.ID, storage.NewPatch().AddToSetField("members", "u1"))
	require.NoError(t, err)

	_, err = repo.Groups.Create(ctx, "Other", "u3")
	require.NoError(t, err)

	t.Run("find private", func(t *testing.T) {
		g, err := repo.Groups.FindPrivate(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, g)
		assert.Equal(t, private.ID, g.ID)

		none, err := repo.Groups.FindPrivate(ctx, "u2")
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("list accessible", func(t *testing.T) {
		groups, err := repo.Groups.ListAccessible(ctx, "u1")
		require.NoError(t, err)
		ids := []string{}
		for _, g := range groups {
			ids = append(ids, g.ID)
		}
		assert.ElementsMatch(t, []string{private.ID, trip.ID}, ids)
	})

	t.Run("get wrong type", func(t *testing.T) {
		inv, err := repo.Invitations.Create(ctx, &models.GroupInvitation{
			GroupID: trip.ID, GroupName: "Trip", Invitee: "u3", InvitedBy: "u2",
		})
		require.NoError(t, err)

		_, err = repo.Groups.Get(ctx, inv.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}

func TestMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	good, err := repo.Groups.Create(ctx, "Trip", "u1")
	require.NoError(t, err)

	// A group without an owner, written around the typed repository.
	bad, err := repo.Store().Create(ctx, storage.Document{
		"_type": models.TypeGroup, "name": "Broken", "members": []any{"u1"},
	})
	require.NoError(t, err)

	groups, err := repo.Groups.ListAccessible(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, good.ID, groups[0].ID)

	_, err = repo.Groups.Get(ctx, bad.ID())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestInvitations(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	inv, err := repo.Invitations.Create(ctx, &models.GroupInvitation{
		GroupID: "g1", GroupName: "Trip", Invitee: "u2", InvitedBy: "u1",
	})
	require.NoError(t, err)
	_, err = repo.Invitations.Create(ctx, &models.GroupInvitation{
		GroupID: "g2", GroupName: "Home", Invitee: "u2", InvitedBy: "u3",
	})
	require.NoError(t, err)

	mine, err := repo.Invitations.ListForInvitee(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	forGroup, err := repo.Invitations.ListForGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, forGroup, 1)
	assert.Equal(t, inv.ID, forGroup[0].ID)

	pending, err := repo.Invitations.FindPending(ctx, "g1", "u2")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "Trip", pending.GroupName)

	require.NoError(t, repo.Invitations.Delete(ctx, inv.ID))
	pending, err = repo.Invitations.FindPending(ctx, "g1", "u2")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, amount := range []int64{100, 250, 980} {
		_, err := repo.Transactions.Create(ctx, &models.Transaction{
			Title:   "Lunch",
			Amount:  decimal.NewFromInt(amount),
			Date:    day.Add(time.Duration(i) * time.Hour),
			UserID:  "u1",
			GroupID: "g1",
		})
		require.NoError(t, err)
	}
	_, err := repo.Transactions.Create(ctx, &models.Transaction{
		Title: "Other", Amount: decimal.NewFromInt(1), Date: day, UserID: "u1", GroupID: "g2",
	})
	require.NoError(t, err)

	txs, err := repo.Transactions.ListByGroup(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(980)), "newest first")
	assert.True(t, txs[2].Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, txs[0].Date.Equal(day.Add(2*time.Hour)))
}
