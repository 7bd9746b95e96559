package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/session"
)

func TestSelectGroup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, aliceUser := h.user("alice")
	bob, _ := h.user("bob")
	l, local := h.client()
	_, err := l.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	bobs, err := bob.CreateGroup(ctx, "Flat")
	require.NoError(t, err)
	assert.ErrorIs(t, l.SelectGroup(ctx, bobs.ID), ErrNotMember)
	assert.ErrorIs(t, l.SelectGroup(ctx, "missing"), ErrGroupNotFound)

	trip, err := l.CreateGroup(ctx, "Trip")
	require.NoError(t, err)
	_, err = l.Transactions(ctx, false)
	require.NoError(t, err)
	keys, _ := local.Keys(ctx)
	assert.Len(t, keys, 3, "session, selection and cached transactions")

	require.NoError(t, l.SelectGroup(ctx, trip.ID))
	stored, _, _ := local.Get(ctx, session.KeySelectedGroupID)
	assert.Equal(t, trip.ID, stored)
	assert.Equal(t, trip.ID, l.State().SelectedGroupID())
	keys, _ = local.Keys(ctx)
	assert.Equal(t, []string{session.KeySelectedGroupID, session.KeyUserID}, keys, "cache cleared on switch")

	require.NoError(t, l.SelectGroup(ctx, ""))
	assert.Empty(t, l.State().SelectedGroupID())

	g, err := l.SelectedGroup(ctx)
	require.NoError(t, err)
	private, err := l.FindPrivateGroup(ctx, aliceUser.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, g.ID, "cleared selection resolves to the private group")
}

func TestInitializeSelection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	_, aliceUser := h.user("alice")
	l, local := h.client()
	_, err := l.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	original, err := l.FindPrivateGroup(ctx, aliceUser.ID)
	require.NoError(t, err)

	t.Run("valid selection survives a restart", func(t *testing.T) {
		trip, err := l.CreateGroup(ctx, "Trip")
		require.NoError(t, err)
		require.NoError(t, l.SelectGroup(ctx, trip.ID))

		restarted := h.clientOn(local)
		g, err := restarted.InitializeSelection(ctx)
		require.NoError(t, err)
		assert.Equal(t, trip.ID, g.ID)
		assert.Equal(t, trip.ID, restarted.State().SelectedGroupID())
	})

	t.Run("stale selection falls back to the private group", func(t *testing.T) {
		require.NoError(t, local.Set(ctx, session.KeySelectedGroupID, "deleted-group"))
		g, err := l.InitializeSelection(ctx)
		require.NoError(t, err)
		assert.Equal(t, original.ID, g.ID)
		stored, _, _ := local.Get(ctx, session.KeySelectedGroupID)
		assert.Equal(t, original.ID, stored)
	})

	t.Run("missing private group is recreated", func(t *testing.T) {
		require.NoError(t, h.repo.Groups.Delete(ctx, original.ID))
		g, err := l.InitializeSelection(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, original.ID, g.ID)
		assert.Equal(t, models.PrivateGroupName, g.Name)
		assert.Equal(t, []string{aliceUser.ID}, g.Members)
		assert.Equal(t, g.ID, l.State().SelectedGroupID())
		assert.Contains(t, l.State().Groups(), g)

		again, err := l.InitializeSelection(ctx)
		require.NoError(t, err)
		assert.Equal(t, g.ID, again.ID, "no second private group")
	})
}
