package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// Call is one recorded DocumentStore call.
type Call struct {
	Op   string
	Path string
}

type failure struct {
	err    error
	op     string
	prefix string
}

// RecordingStore wraps a DocumentStore, recording every call and failing the
// ones that match an injected failure.
type RecordingStore struct {
	inner    service.DocumentStore
	calls    []Call
	failures []failure
	mu       sync.Mutex
}

// NewRecordingStore wraps inner.
func NewRecordingStore(inner service.DocumentStore) *RecordingStore {
	return &RecordingStore{inner: inner}
}

// FailOn makes every op call on a path starting with prefix fail with a
// remote error wrapping err. An empty op matches every operation.
func (r *RecordingStore) FailOn(op, prefix string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, failure{op: op, prefix: prefix, err: err})
}

// ClearFailures removes every injected failure.
func (r *RecordingStore) ClearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = nil
}

// Reset forgets the recorded calls.
func (r *RecordingStore) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Calls returns the recorded calls in order.
func (r *RecordingStore) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many op calls touched a path starting with prefix.
func (r *RecordingStore) Count(op, prefix string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op && strings.HasPrefix(c.Path, prefix) {
			n++
		}
	}
	return n
}

func (r *RecordingStore) record(op, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: op, Path: path})
	for _, f := range r.failures {
		if (f.op == "" || f.op == op) && strings.HasPrefix(path, f.prefix) {
			return common.NewRemoteError(op, path, f.err)
		}
	}
	return nil
}

// Get implements service.DocumentStore.
func (r *RecordingStore) Get(ctx context.Context, path string) (service.Document, error) {
	if err := r.record("get", path); err != nil {
		return nil, err
	}
	return r.inner.Get(ctx, path)
}

// Set implements service.DocumentStore.
func (r *RecordingStore) Set(ctx context.Context, path string, doc service.Document, opts ...service.SetOption) error {
	if err := r.record("set", path); err != nil {
		return err
	}
	return r.inner.Set(ctx, path, doc, opts...)
}

// Delete implements service.DocumentStore.
func (r *RecordingStore) Delete(ctx context.Context, path string) error {
	if err := r.record("delete", path); err != nil {
		return err
	}
	return r.inner.Delete(ctx, path)
}

// List implements service.DocumentStore.
func (r *RecordingStore) List(ctx context.Context, collectionPath string) ([]service.Document, error) {
	if err := r.record("list", collectionPath); err != nil {
		return nil, err
	}
	return r.inner.List(ctx, collectionPath)
}
