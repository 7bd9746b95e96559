package storage

import (
	"errors"
	"reflect"
	"testing"
)

func TestPatchApply(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		patch   *Patch
		want    Document
		wantErr error
	}{
		{
			name:  "set and pull in one patch",
			doc:   Document{"owner": "u1", "members": []any{"u1", "u2"}},
			patch: NewPatch().SetField("owner", "u2").PullField("members", "u1"),
			want:  Document{"owner": "u2", "members": []any{"u2"}},
		},
		{
			name:  "add to set skips existing member",
			doc:   Document{"members": []any{"u1", "u2"}},
			patch: NewPatch().AddToSetField("members", "u2"),
			want:  Document{"members": []any{"u1", "u2"}},
		},
		{
			name:  "add to set creates missing array",
			doc:   Document{"name": "Trip"},
			patch: NewPatch().AddToSetField("members", "u1"),
			want:  Document{"name": "Trip", "members": []any{"u1"}},
		},
		{
			name:  "pull removes duplicates",
			doc:   Document{"members": []any{"u1", "u2", "u1"}},
			patch: NewPatch().PullField("members", "u1"),
			want:  Document{"members": []any{"u2"}},
		},
		{
			name:  "unset",
			doc:   Document{"name": "Trip", "note": "x"},
			patch: NewPatch().UnsetField("note"),
			want:  Document{"name": "Trip"},
		},
		{
			name:  "set normalizes slices",
			doc:   Document{},
			patch: NewPatch().SetField("members", []string{"a", "b"}),
			want:  Document{"members": []any{"a", "b"}},
		},
		{
			name:    "reserved field rejected",
			doc:     Document{"_id": "g1"},
			patch:   NewPatch().SetField("_id", "g2"),
			wantErr: ErrInvalidQuery,
		},
		{
			name:    "pull on scalar rejected",
			doc:     Document{"members": "u1"},
			patch:   NewPatch().PullField("members", "u1"),
			wantErr: ErrInvalidQuery,
		},
		{
			name:    "empty patch rejected",
			doc:     Document{},
			patch:   NewPatch(),
			wantErr: ErrInvalidQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Apply(tt.doc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Apply() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(tt.doc, tt.want) {
				t.Errorf("Apply() = %v, want %v", tt.doc, tt.want)
			}
		})
	}
}

func TestQueryMatch(t *testing.T) {
	group := Document{"_type": "group", "name": "Trip", "owner": "u1", "members": []any{"u1", "u2"}}

	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"type only", Query{Type: "group"}, true},
		{"other type", Query{Type: "transaction"}, false},
		{"eq", Query{Type: "group", Filter: `name = "Trip"`}, true},
		{"eq miss", Query{Type: "group", Filter: `name = "Home"`}, false},
		{"neq on missing field", Query{Type: "group", Filter: `title != "x"`}, true},
		{"has", Query{Type: "group", Filter: `members:"u2"`}, true},
		{"has miss", Query{Type: "group", Filter: `members:"u3"`}, false},
		{"or", Query{Type: "group", Filter: `owner = "u3" OR members:"u2"`}, true},
		{"and", Query{Type: "group", Filter: `owner = "u1" AND name = "Home"`}, false},
		{"not", Query{Type: "group", Filter: `NOT owner = "u3"`}, true},
		{"unparsable", Query{Type: "group", Filter: `owner =`}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Match(group); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryValidate(t *testing.T) {
	bad := []Query{
		{},
		{Type: "group", OrderBy: "date; DROP TABLE documents"},
		{Type: "group", Limit: -1},
		{Type: "group", Filter: `members[0] = "u1"`},
		{Type: "group", Filter: `unknown = "x"`},
		{Type: "group", Filter: `name < "x"`},
	}
	for _, q := range bad {
		if err := q.Validate(); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidQuery", q, err)
		}
	}

	ok := Query{Type: "transaction", Filter: `groupId = "g1"`, OrderBy: "date", Desc: true, Limit: 10}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestNewDocumentAndDecode(t *testing.T) {
	type group struct {
		ID      string   `json:"_id,omitempty"`
		Name    string   `json:"name"`
		Members []string `json:"members"`
	}

	doc, err := NewDocument("group", group{Name: "Trip", Members: []string{"u1"}})
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	if doc.Type() != "group" {
		t.Errorf("Type() = %q, want group", doc.Type())
	}
	if doc.ID() != "" {
		t.Errorf("ID() = %q, want empty", doc.ID())
	}

	clone := doc.Clone()
	clone["members"].([]any)[0] = "changed"
	if doc["members"].([]any)[0] != "u1" {
		t.Error("Clone() shares nested arrays with the original")
	}

	var got group
	if err := doc.Decode(&got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Name != "Trip" || len(got.Members) != 1 {
		t.Errorf("Decode() = %+v", got)
	}
}
