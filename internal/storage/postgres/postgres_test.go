package postgres

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/internal/storage/filter"
)

func TestBuildSelect(t *testing.T) {
	tests := []struct {
		name     string
		query    storage.Query
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "type only",
			query:    storage.Query{Type: "group"},
			wantSQL:  "SELECT body FROM documents WHERE type = $1 ORDER BY created_at, id",
			wantArgs: []any{"group"},
		},
		{
			name: "membership or ownership",
			query: storage.Query{
				Type: "group",
				Filter: filter.Or(filter.Eq("owner", "u1"), filter.Has("members", "u1")),
			},
			wantSQL:  "SELECT body FROM documents WHERE type = $1 AND (body->>'owner' = $2 OR (jsonb_typeof(body->'members') = 'array' AND body->'members' @> jsonb_build_array($3::text))) ORDER BY created_at, id",
			wantArgs: []any{"group", "u1", "u1"},
		},
		{
			name: "order and limit",
			query: storage.Query{
				Type:    "transaction",
				Filter:  filter.And(filter.Eq("groupId", "g1"), filter.Neq("title", "x")),
				OrderBy: "date",
				Desc:    true,
				Limit:   5,
			},
			wantSQL:  "SELECT body FROM documents WHERE type = $1 AND (body->>'groupId' = $2 AND (body->>'title') IS DISTINCT FROM $3) ORDER BY body->>'date' DESC, id DESC LIMIT $4",
			wantArgs: []any{"transaction", "g1", "x", 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := tt.query.Compile()
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			gotSQL, gotArgs := BuildSelect(tt.query, f)
			if gotSQL != tt.wantSQL {
				t.Errorf("SQL mismatch:\n got: %s\nwant: %s", gotSQL, tt.wantSQL)
			}
			if !reflect.DeepEqual(gotArgs, tt.wantArgs) {
				t.Errorf("args mismatch: got %v, want %v", gotArgs, tt.wantArgs)
			}
		})
	}
}

// TestStore runs against a live database when KAKEIBO_TEST_POSTGRES_DSN is set.
func TestStore(t *testing.T) {
	dsn := os.Getenv("KAKEIBO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("KAKEIBO_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	doc, err := store.Create(ctx, storage.Document{"_type": "group", "owner": "pg-a", "members": []any{"pg-a", "pg-b"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer store.Delete(ctx, doc.ID())

	docs, err := store.Query(ctx, storage.Query{Type: "group", Filter: filter.Has("members", "pg-b")})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(docs))
	}

	patched, err := store.Patch(ctx, doc.ID(), *storage.NewPatch().SetField("owner", "pg-b").PullField("members", "pg-a"))
	if err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	if patched["owner"] != "pg-b" {
		t.Errorf("Owner mismatch: got %v", patched["owner"])
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
