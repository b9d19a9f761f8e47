// Package service defines the contracts between the sync layer and its stores.
package service

import (
	"context"
	"time"
)

// Document is a remote document as a plain nested key-value structure.
// Dates are ISO-8601 strings, never native time values.
type Document map[string]any

// SetOptions controls how Set writes a document.
type SetOptions struct {
	// Merge keeps existing fields that the written document does not mention.
	Merge bool
}

// SetOption configures a Set call.
type SetOption func(*SetOptions)

// WithMerge makes Set merge into an existing document instead of replacing it.
func WithMerge() SetOption {
	return func(o *SetOptions) { o.Merge = true }
}

// ApplySetOptions folds opts into a SetOptions value.
func ApplySetOptions(opts ...SetOption) SetOptions {
	var o SetOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DocumentStore is the remote document database contract. Paths address
// users/{userId}/{collection}[/{id}...] with slash-separated segments.
type DocumentStore interface {
	// Get returns the document at path, or nil when it does not exist.
	Get(ctx context.Context, path string) (Document, error)
	// Set writes the document at path.
	Set(ctx context.Context, path string, doc Document, opts ...SetOption) error
	// Delete removes the document at path. Deleting a missing document is not an error.
	Delete(ctx context.Context, path string) error
	// List returns every document directly inside collectionPath.
	List(ctx context.Context, collectionPath string) ([]Document, error)
}

// CacheStore is a persistent key-value store holding serialized records per user.
type CacheStore interface {
	// GetRecord returns the record value, or found=false when it was never written.
	GetRecord(ctx context.Context, userID, key string) (value []byte, found bool, err error)
	// PutRecord replaces the record value as a whole.
	PutRecord(ctx context.Context, userID, key string, value []byte) error
	// DeleteRecord removes the record if present.
	DeleteRecord(ctx context.Context, userID, key string) error
	// Close releases the store.
	Close() error
}

// Clock supplies the current time. Tokens and recurring processing read time through it.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock is the wall clock.
var SystemClock Clock = ClockFunc(time.Now)
