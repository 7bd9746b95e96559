// Package state holds the client's process-wide cache of the signed-in
// user's data. The document store stays the system of record; everything
// here may be discarded at any time. Writes are last-write-wins.
package state

import (
	"slices"
	"sync"

	"github.com/mmynk/kakeibo/internal/models"
)

// State is safe for concurrent use.
type State struct {
	mu sync.RWMutex

	user            *models.User
	selectedGroupID string
	groups          []*models.Group

	// transactions caches the list of the selected group; nil when not fetched.
	transactions []*models.Transaction
}

// New returns an empty State.
func New() *State {
	return &State{}
}

// User returns the signed-in user, or nil.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser records the signed-in user.
func (s *State) SetUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// SelectedGroupID returns the mirrored selection, or "".
func (s *State) SelectedGroupID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedGroupID
}

// SetSelectedGroup mirrors a new selection and drops the cached
// transactions of the previous one.
func (s *State) SetSelectedGroup(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedGroupID = groupID
	s.transactions = nil
}

// Groups returns a copy of the cached group list.
func (s *State) Groups() []*models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.groups)
}

// SetGroups replaces the cached group list.
func (s *State) SetGroups(groups []*models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = slices.Clone(groups)
}

// Transactions returns the cached transactions of the selected group and
// whether they have been fetched.
func (s *State) Transactions() ([]*models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transactions), s.transactions != nil
}

// SetTransactions caches the transactions of groupID. The list is dropped
// if the selection changed while it was being fetched.
func (s *State) SetTransactions(groupID string, txs []*models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if groupID != s.selectedGroupID {
		return
	}
	if txs == nil {
		txs = []*models.Transaction{}
	}
	s.transactions = slices.Clone(txs)
}

// InvalidateTransactions drops the cached transactions.
func (s *State) InvalidateTransactions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = nil
}

// Reset clears everything. Called on logout and account deletion.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.selectedGroupID = ""
	s.groups = nil
	s.transactions = nil
}
