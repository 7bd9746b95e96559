package storage

import (
	"fmt"
	"sort"
)

// Patch describes mutations to a single document.
// Mutations are applied in order: Set, Unset, AddToSet, Pull.
type Patch struct {
	Set   map[string]any `json:"set,omitempty"`
	Unset []string       `json:"unset,omitempty"`

	// AddToSet appends the value to the array field unless already present.
	// A missing field is created as an empty array first.
	AddToSet map[string]string `json:"addToSet,omitempty"`

	// Pull removes every occurrence of the value from the array field.
	Pull map[string]string `json:"pull,omitempty"`
}

// NewPatch returns an empty patch.
func NewPatch() *Patch { return &Patch{} }

// SetField sets field to value.
func (p *Patch) SetField(field string, value any) *Patch {
	if p.Set == nil {
		p.Set = map[string]any{}
	}
	p.Set[field] = value
	return p
}

// UnsetField removes field.
func (p *Patch) UnsetField(field string) *Patch {
	p.Unset = append(p.Unset, field)
	return p
}

// AddToSetField adds value to the array field with set semantics.
func (p *Patch) AddToSetField(field, value string) *Patch {
	if p.AddToSet == nil {
		p.AddToSet = map[string]string{}
	}
	p.AddToSet[field] = value
	return p
}

// PullField removes value from the array field.
func (p *Patch) PullField(field, value string) *Patch {
	if p.Pull == nil {
		p.Pull = map[string]string{}
	}
	p.Pull[field] = value
	return p
}

// Empty reports whether the patch has no mutations.
func (p Patch) Empty() bool {
	return len(p.Set) == 0 && len(p.Unset) == 0 && len(p.AddToSet) == 0 && len(p.Pull) == 0
}

// Validate checks that every targeted field is patchable.
func (p Patch) Validate() error {
	if p.Empty() {
		return fmt.Errorf("%w: empty patch", ErrInvalidQuery)
	}
	check := func(field string) error {
		if !ValidField(field) || reservedField(field) {
			return fmt.Errorf("%w: field %q cannot be patched", ErrInvalidQuery, field)
		}
		return nil
	}
	for f := range p.Set {
		if err := check(f); err != nil {
			return err
		}
	}
	for _, f := range p.Unset {
		if err := check(f); err != nil {
			return err
		}
	}
	for f := range p.AddToSet {
		if err := check(f); err != nil {
			return err
		}
	}
	for f := range p.Pull {
		if err := check(f); err != nil {
			return err
		}
	}
	return nil
}

// Apply mutates doc in place.
func (p Patch) Apply(doc Document) error {
	if err := p.Validate(); err != nil {
		return err
	}
	for _, f := range sortedKeys(p.Set) {
		v, err := normalize(p.Set[f])
		if err != nil {
			return err
		}
		doc[f] = v
	}
	for _, f := range p.Unset {
		delete(doc, f)
	}
	for _, f := range sortedKeys(p.AddToSet) {
		arr, err := arrayField(doc, f)
		if err != nil {
			return err
		}
		value := p.AddToSet[f]
		if !containsString(arr, value) {
			arr = append(arr, value)
		}
		doc[f] = arr
	}
	for _, f := range sortedKeys(p.Pull) {
		arr, err := arrayField(doc, f)
		if err != nil {
			return err
		}
		value := p.Pull[f]
		kept := make([]any, 0, len(arr))
		for _, v := range arr {
			if s, ok := v.(string); ok && s == value {
				continue
			}
			kept = append(kept, v)
		}
		doc[f] = kept
	}
	return nil
}

func reservedField(field string) bool {
	switch field {
	case FieldID, FieldType, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return false
}

func arrayField(doc Document, field string) ([]any, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return []any{}, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not an array", ErrInvalidQuery, field)
	}
	return arr, nil
}

func containsString(arr []any, value string) bool {
	for _, v := range arr {
		if s, ok := v.(string); ok && s == value {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
