package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "kakeibo-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("Create generates ID and timestamps", func(t *testing.T) {
		doc, err := store.Create(ctx, storage.Document{
			"_type":   "group",
			"name":    "Trip",
			"owner":   "u1",
			"members": []any{"u1"},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if doc.ID() == "" {
			t.Error("Expected document ID to be generated")
		}
		if doc[storage.FieldCreatedAt] == nil || doc[storage.FieldUpdatedAt] == nil {
			t.Error("Expected timestamps to be set")
		}

		t.Logf("Created document: ID=%s", doc.ID())
	})

	t.Run("Create keeps caller ID and rejects duplicates", func(t *testing.T) {
		doc := storage.Document{"_id": "fixed-id", "_type": "user", "username": "alice"}
		if _, err := store.Create(ctx, doc); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err := store.Create(ctx, doc)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("Create requires a type", func(t *testing.T) {
		_, err := store.Create(ctx, storage.Document{"name": "untyped"})
		if !errors.Is(err, storage.ErrInvalidQuery) {
			t.Errorf("Expected ErrInvalidQuery, got %v", err)
		}
	})

	t.Run("Get returns error for nonexistent document", func(t *testing.T) {
		_, err := store.Get(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Query filters by field and membership", func(t *testing.T) {
		shared, err := store.Create(ctx, storage.Document{
			"_type":   "group",
			"name":    "Roommates",
			"owner":   "u2",
			"members": []any{"u2", "u3"},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		docs, err := store.Query(ctx, storage.Query{
			Type:   "group",
			Filter: filter.Has("members", "u3"),
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(docs) != 1 || docs[0].ID() != shared.ID() {
			t.Fatalf("Expected only %s, got %v", shared.ID(), docs)
		}

		docs, err = store.Query(ctx, storage.Query{
			Type:   "group",
			Filter: filter.Or(filter.Eq("owner", "u1"), filter.Has("members", "u3")),
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(docs) != 2 {
			t.Errorf("Expected 2 groups, got %d", len(docs))
		}

		docs, err = store.Query(ctx, storage.Query{
			Type:   "group",
			Filter: filter.And(filter.Eq("owner", "u2"), filter.Neq("name", "Roommates")),
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("Expected no groups, got %d", len(docs))
		}
	})

	t.Run("Query orders and limits", func(t *testing.T) {
		for _, date := range []string{"2024-01-02T00:00:00Z", "2024-01-03T00:00:00Z", "2024-01-01T00:00:00Z"} {
			if _, err := store.Create(ctx, storage.Document{
				"_type":   "transaction",
				"groupId": "g-order",
				"date":    date,
			}); err != nil {
				t.Fatalf("Create failed: %v", err)
			}
		}

		docs, err := store.Query(ctx, storage.Query{
			Type:    "transaction",
			Filter:  filter.Eq("groupId", "g-order"),
			OrderBy: "date",
			Desc:    true,
			Limit:   2,
		})
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("Expected 2 documents, got %d", len(docs))
		}
		if docs[0]["date"] != "2024-01-03T00:00:00Z" || docs[1]["date"] != "2024-01-02T00:00:00Z" {
			t.Errorf("Unexpected order: %v, %v", docs[0]["date"], docs[1]["date"])
		}
	})

	t.Run("Query rejects invalid filters", func(t *testing.T) {
		for _, expr := range []string{
			`name') OR 1=1 -- = "x"`,
			`nickname = "x"`,
			`members = "u1"`,
			`owner:"u1"`,
			`owner = `,
		} {
			_, err := store.Query(ctx, storage.Query{Type: "group", Filter: expr})
			if !errors.Is(err, storage.ErrInvalidQuery) {
				t.Errorf("Filter %q: expected ErrInvalidQuery, got %v", expr, err)
			}
		}
	})

	t.Run("Query has only matches arrays", func(t *testing.T) {
		if _, err := store.Create(ctx, storage.Document{
			"_type":   "group",
			"name":    "Scalar",
			"owner":   "u9",
			"members": "u9",
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		q := storage.Query{Type: "group", Filter: filter.Has("members", "u9")}
		docs, err := store.Query(ctx, q)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("Expected no groups, got %v", docs)
		}
		if q.Match(storage.Document{"_type": "group", "members": "u9"}) {
			t.Error("Match accepted a scalar members field")
		}
	})

	t.Run("Patch sets owner and pulls member", func(t *testing.T) {
		doc, err := store.Create(ctx, storage.Document{
			"_type":   "group",
			"name":    "Patch Me",
			"owner":   "a",
			"members": []any{"a", "b"},
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		patched, err := store.Patch(ctx, doc.ID(), *storage.NewPatch().SetField("owner", "b").PullField("members", "a"))
		if err != nil {
			t.Fatalf("Patch failed: %v", err)
		}
		if patched["owner"] != "b" {
			t.Errorf("Owner mismatch: got %v, want b", patched["owner"])
		}

		retrieved, err := store.Get(ctx, doc.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		members := retrieved["members"].([]any)
		if len(members) != 1 || members[0] != "b" {
			t.Errorf("Members mismatch: got %v, want [b]", members)
		}
		if retrieved[storage.FieldCreatedAt] != doc[storage.FieldCreatedAt] {
			t.Error("Patch must not change the creation timestamp")
		}
	})

	t.Run("Patch add to set is idempotent", func(t *testing.T) {
		doc, err := store.Create(ctx, storage.Document{"_type": "group", "members": []any{"a"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		p := *storage.NewPatch().AddToSetField("members", "b")
		for i := 0; i < 2; i++ {
			if _, err := store.Patch(ctx, doc.ID(), p); err != nil {
				t.Fatalf("Patch %d failed: %v", i, err)
			}
		}

		retrieved, err := store.Get(ctx, doc.ID())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if members := retrieved["members"].([]any); len(members) != 2 {
			t.Errorf("Expected 2 members, got %v", members)
		}
	})

	t.Run("Patch returns error for nonexistent document", func(t *testing.T) {
		_, err := store.Patch(ctx, "nonexistent-id", *storage.NewPatch().SetField("name", "x"))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete removes document once", func(t *testing.T) {
		doc, err := store.Create(ctx, storage.Document{"_type": "groupInvitation"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := store.Delete(ctx, doc.ID()); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := store.Get(ctx, doc.ID()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected deleted document to be gone, got %v", err)
		}
		if err := store.Delete(ctx, doc.ID()); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestInMemoryStore(t *testing.T) {
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	doc, err := store.Create(ctx, storage.Document{"_type": "user", "username": "bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Get(ctx, doc.ID()); err != nil {
		t.Errorf("Get failed: %v", err)
	}
}
