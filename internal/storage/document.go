package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// Reserved document attributes. They are managed by the store and cannot be patched.
const (
	FieldID        = "_id"
	FieldType      = "_type"
	FieldCreatedAt = "_createdAt"
	FieldUpdatedAt = "_updatedAt"
)

// Document is a schema-less JSON document.
// Values are restricted to what encoding/json produces when decoding into any:
// string, float64, bool, nil, []any and map[string]any.
type Document map[string]any

// NewDocument encodes v (typically a tagged struct) as a document of the given type.
func NewDocument(docType string, v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	doc[FieldType] = docType
	return doc, nil
}

// ID returns the document ID, or "" if unset.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Type returns the document type, or "" if unset.
func (d Document) Type() string {
	t, _ := d[FieldType].(string)
	return t
}

// Decode decodes the document into v.
func (d Document) Decode(v any) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to decode %s document: %w", d.Type(), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s document %s: %w", d.Type(), d.ID(), err)
	}
	return nil
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

// Stamp sets the store-managed attributes on a new document.
func (d Document) Stamp(id string, now time.Time) {
	ts := now.UTC().Format(time.RFC3339Nano)
	d[FieldID] = id
	d[FieldCreatedAt] = ts
	d[FieldUpdatedAt] = ts
}

// Touch refreshes the update timestamp.
func (d Document) Touch(now time.Time) {
	d[FieldUpdatedAt] = now.UTC().Format(time.RFC3339Nano)
}

// normalize converts v to the JSON value model used by documents.
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return out, nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case Document:
		return cloneValue(map[string]any(t))
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return t
	}
}
