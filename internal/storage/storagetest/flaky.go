// Package storagetest provides helpers for exercising code against partial
// failures of a storage.Store.
package storagetest

import (
	"context"
	"errors"
	"sync"

	"github.com/mmynk/kakeibo/internal/storage"
)

// ErrInjected is returned by calls failed through a Flaky store.
var ErrInjected = errors.New("injected failure")

// Call identifies one store primitive.
type Call string

const (
	CallQuery  Call = "query"
	CallGet    Call = "get"
	CallCreate Call = "create"
	CallPatch  Call = "patch"
	CallDelete Call = "delete"
)

// Rule decides whether a call fails. docType is empty for calls that only
// carry an ID (patch, delete, get) unless the store could resolve it.
type Rule func(call Call, docType, id string) bool

// Flaky wraps a store and fails calls selected by rules.
// Each rule fires at most once unless it keeps returning true.
type Flaky struct {
	storage.Store

	mu    sync.Mutex
	rules []Rule
	calls []Call
}

// NewFlaky wraps inner.
func NewFlaky(inner storage.Store) *Flaky {
	return &Flaky{Store: inner}
}

// FailOn registers a rule.
func (f *Flaky) FailOn(rule Rule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule)
}

// FailNth fails the n-th (1-based) call of the given kind, counted from now.
func (f *Flaky) FailNth(call Call, n int) {
	seen := 0
	f.FailOn(func(c Call, _, _ string) bool {
		if c != call {
			return false
		}
		seen++
		return seen == n
	})
}

// Reset removes every rule.
func (f *Flaky) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = nil
}

// Calls returns the primitives issued so far, failed ones included.
func (f *Flaky) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns how many calls of the given kind were issued.
func (f *Flaky) Count(call Call) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *Flaky) check(call Call, docType, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	for _, rule := range f.rules {
		if rule(call, docType, id) {
			return ErrInjected
		}
	}
	return nil
}

func (f *Flaky) Query(ctx context.Context, q storage.Query) ([]storage.Document, error) {
	if err := f.check(CallQuery, q.Type, ""); err != nil {
		return nil, err
	}
	return f.Store.Query(ctx, q)
}

func (f *Flaky) Get(ctx context.Context, id string) (storage.Document, error) {
	if err := f.check(CallGet, "", id); err != nil {
		return nil, err
	}
	return f.Store.Get(ctx, id)
}

func (f *Flaky) Create(ctx context.Context, doc storage.Document) (storage.Document, error) {
	if err := f.check(CallCreate, doc.Type(), doc.ID()); err != nil {
		return nil, err
	}
	return f.Store.Create(ctx, doc)
}

func (f *Flaky) Patch(ctx context.Context, id string, p storage.Patch) (storage.Document, error) {
	if err := f.check(CallPatch, f.typeOf(ctx, id), id); err != nil {
		return nil, err
	}
	return f.Store.Patch(ctx, id, p)
}

func (f *Flaky) Delete(ctx context.Context, id string) error {
	if err := f.check(CallDelete, f.typeOf(ctx, id), id); err != nil {
		return err
	}
	return f.Store.Delete(ctx, id)
}

func (f *Flaky) typeOf(ctx context.Context, id string) string {
	doc, err := f.Store.Get(ctx, id)
	if err != nil {
		return ""
	}
	return doc.Type()
}
