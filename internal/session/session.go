// Package session persists the signed-in identity and the selected group in
// the local key-value store and mirrors them into the shared state.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mmynk/kakeibo/internal/kv"
	"github.com/mmynk/kakeibo/internal/state"
)

// Local keys.
const (
	KeyUserID          = "userId"
	KeySelectedGroupID = "selectedGroupId"
	KeyAppLanguage     = "appLanguage"
	KeyTempUser        = "tempUser"

	cachePrefix = "cache."
)

// durableKeys survive a group switch; every other key is per-group cache.
var durableKeys = []string{KeyUserID, KeySelectedGroupID, KeyAppLanguage, KeyTempUser}

// ErrNotSignedIn is returned when no user identifier is stored.
var ErrNotSignedIn = errors.New("not signed in")

// PendingSignup is a signup waiting for e-mail verification.
type PendingSignup struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
}

// Session is the client's local identity and selection.
type Session struct {
	kv    kv.Store
	state *state.State
}

// New creates a Session over store, mirroring into st.
func New(store kv.Store, st *state.State) *Session {
	return &Session{kv: store, state: st}
}

// State returns the shared state the session mirrors into.
func (s *Session) State() *state.State {
	return s.state
}

// CurrentUserID returns the stored user identifier.
// Returns ErrNotSignedIn when it is absent or empty.
func (s *Session) CurrentUserID(ctx context.Context) (string, error) {
	id, _, err := s.kv.Get(ctx, KeyUserID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", ErrNotSignedIn
	}
	return id, nil
}

// SignIn stores the user identifier.
func (s *Session) SignIn(ctx context.Context, userID string) error {
	return s.kv.Set(ctx, KeyUserID, userID)
}

// SelectedGroupID returns the stored selection, or "".
func (s *Session) SelectedGroupID(ctx context.Context) (string, error) {
	id, _, err := s.kv.Get(ctx, KeySelectedGroupID)
	return id, err
}

// SelectGroup persists groupID as the selection ("" unsets it), mirrors it
// into the shared state, and clears every non-durable local key.
func (s *Session) SelectGroup(ctx context.Context, groupID string) error {
	if groupID == "" {
		if err := s.kv.Remove(ctx, KeySelectedGroupID); err != nil {
			return err
		}
	} else if err := s.kv.Set(ctx, KeySelectedGroupID, groupID); err != nil {
		return err
	}
	s.state.SetSelectedGroup(groupID)
	return s.clearExcept(ctx, durableKeys)
}

// Language returns the stored language tag, or "".
func (s *Session) Language(ctx context.Context) (string, error) {
	lang, _, err := s.kv.Get(ctx, KeyAppLanguage)
	return lang, err
}

// SetLanguage stores the language tag.
func (s *Session) SetLanguage(ctx context.Context, lang string) error {
	return s.kv.Set(ctx, KeyAppLanguage, lang)
}

// PendingSignup returns the stored pending signup, or nil.
func (s *Session) PendingSignup(ctx context.Context) (*PendingSignup, error) {
	raw, ok, err := s.kv.Get(ctx, KeyTempUser)
	if err != nil || !ok {
		return nil, err
	}
	var p PendingSignup
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("failed to decode pending signup: %w", err)
	}
	return &p, nil
}

// SetPendingSignup stores p until it is verified.
func (s *Session) SetPendingSignup(ctx context.Context, p *PendingSignup) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pending signup: %w", err)
	}
	return s.kv.Set(ctx, KeyTempUser, string(raw))
}

// ClearPendingSignup removes the pending signup.
func (s *Session) ClearPendingSignup(ctx context.Context) error {
	return s.kv.Remove(ctx, KeyTempUser)
}

// Cache reads a cached value stored with SetCache into v.
// It reports false when nothing is cached under name.
func (s *Session) Cache(ctx context.Context, name string, v any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, cachePrefix+name)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		// A corrupt cache entry is as good as none.
		return false, s.kv.Remove(ctx, cachePrefix+name)
	}
	return true, nil
}

// SetCache stores v under name until the next group switch or logout.
func (s *Session) SetCache(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache %s: %w", name, err)
	}
	return s.kv.Set(ctx, cachePrefix+name, string(raw))
}

// InvalidateCache removes a cached value.
func (s *Session) InvalidateCache(ctx context.Context, name string) error {
	return s.kv.Remove(ctx, cachePrefix+name)
}

// Logout removes everything except the language preference and resets the
// shared state.
func (s *Session) Logout(ctx context.Context) error {
	s.state.Reset()
	return s.clearExcept(ctx, []string{KeyAppLanguage})
}

func (s *Session) clearExcept(ctx context.Context, keep []string) error {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if slices.Contains(keep, k) {
			continue
		}
		if err := s.kv.Remove(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
