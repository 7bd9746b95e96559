package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/kakeibo/internal/kv"
	"github.com/mmynk/kakeibo/internal/models"
	"github.com/mmynk/kakeibo/internal/state"
)

func TestCurrentUserID(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := New(store, state.New())

	_, err := s.CurrentUserID(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	require.NoError(t, store.Set(ctx, KeyUserID, "  "))
	_, err = s.CurrentUserID(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	require.NoError(t, s.SignIn(ctx, "u1"))
	id, err := s.CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestSelectGroupClearsCaches(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	st := state.New()
	s := New(store, st)

	require.NoError(t, s.SignIn(ctx, "u1"))
	require.NoError(t, s.SetLanguage(ctx, "ja"))
	require.NoError(t, s.SetPendingSignup(ctx, &PendingSignup{Username: "bob", Email: "bob@example.com"}))
	require.NoError(t, s.SelectGroup(ctx, "g1"))
	require.NoError(t, s.SetCache(ctx, "transactions", []string{"t1"}))
	st.SetTransactions("g1", []*models.Transaction{{ID: "t1"}})

	require.NoError(t, s.SelectGroup(ctx, "g2"))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{KeyAppLanguage, KeySelectedGroupID, KeyTempUser, KeyUserID}, keys)

	selected, err := s.SelectedGroupID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "g2", selected)
	assert.Equal(t, "g2", st.SelectedGroupID())
	_, cached := st.Transactions()
	assert.False(t, cached)

	require.NoError(t, s.SelectGroup(ctx, ""))
	selected, err = s.SelectedGroupID(ctx)
	require.NoError(t, err)
	assert.Empty(t, selected)
	assert.Empty(t, st.SelectedGroupID())
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	s := New(store, state.New())

	var got []string
	ok, err := s.Cache(ctx, "transactions", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetCache(ctx, "transactions", []string{"t1", "t2"}))
	ok, err = s.Cache(ctx, "transactions", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"t1", "t2"}, got)

	require.NoError(t, store.Set(ctx, "cache.transactions", "{not json"))
	ok, err = s.Cache(ctx, "transactions", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	_, present, _ := store.Get(ctx, "cache.transactions")
	assert.False(t, present)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	st := state.New()
	s := New(store, st)

	require.NoError(t, s.SignIn(ctx, "u1"))
	require.NoError(t, s.SetLanguage(ctx, "en"))
	require.NoError(t, s.SelectGroup(ctx, "g1"))
	st.SetUser(&models.User{ID: "u1"})

	require.NoError(t, s.Logout(ctx))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyAppLanguage}, keys)
	assert.Nil(t, st.User())
	assert.Empty(t, st.SelectedGroupID())

	_, err = s.CurrentUserID(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestPendingSignup(t *testing.T) {
	ctx := context.Background()
	s := New(kv.NewMemory(), state.New())

	p, err := s.PendingSignup(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, s.SetPendingSignup(ctx, &PendingSignup{Username: "bob", Email: "bob@example.com", PasswordHash: "h"}))
	p, err = s.PendingSignup(ctx)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "bob@example.com", p.Email)

	require.NoError(t, s.ClearPendingSignup(ctx))
	p, err = s.PendingSignup(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}
