package storage

import (
	"fmt"
	"regexp"

	"github.com/mmynk/kakeibo/internal/storage/filter"
)

// Query selects documents of one type.
type Query struct {
	Type string `json:"type"`

	// Filter is an AIP-160 expression over top-level fields, such as
	// `owner = "u1" OR members:"u1"`. Empty matches every document of Type.
	Filter string `json:"filter,omitempty"`

	// OrderBy names a field to sort by. Documents are ordered by
	// creation time then ID when empty.
	OrderBy string `json:"orderBy,omitempty"`
	Desc    bool   `json:"desc,omitempty"`

	// Limit caps the number of results; zero means no limit.
	Limit int `json:"limit,omitempty"`
}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidField reports whether name can be used as a field in queries and patches.
// Backends interpolate field names into JSON paths, so the set is kept narrow.
func ValidField(name string) bool {
	return fieldPattern.MatchString(name)
}

// Validate checks the query for structural errors.
func (q Query) Validate() error {
	_, err := q.Compile()
	return err
}

// Compile validates q and returns its parsed filter.
func (q Query) Compile() (filter.Filter, error) {
	if q.Type == "" {
		return filter.Filter{}, fmt.Errorf("%w: type required", ErrInvalidQuery)
	}
	if q.OrderBy != "" && !ValidField(q.OrderBy) {
		return filter.Filter{}, fmt.Errorf("%w: bad order field %q", ErrInvalidQuery, q.OrderBy)
	}
	if q.Limit < 0 {
		return filter.Filter{}, fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	f, err := filter.Parse(q.Filter)
	if err != nil {
		return filter.Filter{}, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return f, nil
}

// Match reports whether doc satisfies the query's type and filter.
// A query whose filter does not parse matches nothing.
func (q Query) Match(doc Document) bool {
	if doc.Type() != q.Type {
		return false
	}
	f, err := q.Compile()
	if err != nil {
		return false
	}
	return f.Match(doc)
}
