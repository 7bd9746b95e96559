package state

import (
	"sync"
	"testing"

	"github.com/mmynk/kakeibo/internal/models"
)

func TestSelectionDropsTransactions(t *testing.T) {
	s := New()
	s.SetSelectedGroup("g1")
	s.SetTransactions("g1", []*models.Transaction{{ID: "t1"}})

	txs, ok := s.Transactions()
	if !ok || len(txs) != 1 {
		t.Fatalf("expected 1 cached transaction, got %d ok=%v", len(txs), ok)
	}

	s.SetSelectedGroup("g2")
	if _, ok := s.Transactions(); ok {
		t.Error("expected cache to be dropped on selection change")
	}

	// A late result for the old selection is ignored.
	s.SetTransactions("g1", []*models.Transaction{{ID: "t1"}})
	if _, ok := s.Transactions(); ok {
		t.Error("expected stale transactions to be ignored")
	}

	s.SetTransactions("g2", nil)
	txs, ok = s.Transactions()
	if !ok || len(txs) != 0 {
		t.Errorf("expected empty fetched list, got %d ok=%v", len(txs), ok)
	}
}

func TestReset(t *testing.T) {
	s := New()
	s.SetUser(&models.User{ID: "u1"})
	s.SetSelectedGroup("g1")
	s.SetGroups([]*models.Group{{ID: "g1"}})

	s.Reset()

	if s.User() != nil || s.SelectedGroupID() != "" || len(s.Groups()) != 0 {
		t.Error("expected empty state after Reset")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetSelectedGroup("g1")
			s.SetGroups([]*models.Group{{ID: "g1"}})
		}()
		go func() {
			defer wg.Done()
			_ = s.SelectedGroupID()
			_ = s.Groups()
			_, _ = s.Transactions()
		}()
	}
	wg.Wait()
}
