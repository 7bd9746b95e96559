package kv

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStores(t *testing.T) {
	file, err := Open(filepath.Join(t.TempDir(), "state", "kakeibo.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": file,
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, ok, err := s.Get(ctx, "userId"); err != nil || ok {
				t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
			}

			if err := s.Set(ctx, "userId", "u1"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, "userId", "u2"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := s.Set(ctx, "appLanguage", "ja"); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			v, ok, err := s.Get(ctx, "userId")
			if err != nil || !ok || v != "u2" {
				t.Errorf("expected u2, got %q ok=%v err=%v", v, ok, err)
			}

			keys, err := s.Keys(ctx)
			if err != nil {
				t.Fatalf("Keys failed: %v", err)
			}
			if len(keys) != 2 || keys[0] != "appLanguage" || keys[1] != "userId" {
				t.Errorf("expected [appLanguage userId], got %v", keys)
			}

			if err := s.Remove(ctx, "userId"); err != nil {
				t.Fatalf("Remove failed: %v", err)
			}
			if err := s.Remove(ctx, "userId"); err != nil {
				t.Fatalf("second Remove failed: %v", err)
			}
			if _, ok, _ := s.Get(ctx, "userId"); ok {
				t.Error("expected userId to be removed")
			}
		})
	}
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kakeibo.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set(ctx, "selectedGroupId", "g1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	v, ok, err := s.Get(ctx, "selectedGroupId")
	if err != nil || !ok || v != "g1" {
		t.Errorf("expected g1 after reopen, got %q ok=%v err=%v", v, ok, err)
	}
}
