// Package testutil provides the shared fixtures of the sync tests: an
// in-memory remote store that records its calls, a SQLite-backed cache
// service and a deterministic clock.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/storage"
)

// DefaultUserID is the user every harness is scoped to unless overridden.
const DefaultUserID = "user-1"

// DefaultStart is the default initial time of the harness clock.
var DefaultStart = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// Harness wires one user's remote store, cache store and cache service.
type Harness struct {
	Docs       *docstore.Memory
	Remote     *RecordingStore
	CacheStore *storage.SQLiteStorage
	Cache      *cache.Service
	Clock      *StepClock
	UserID     string
}

// HarnessOption configures NewHarness.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	start  time.Time
	userID string
	step   time.Duration
}

// WithStart sets the initial clock time.
func WithStart(start time.Time) HarnessOption {
	return func(c *harnessConfig) { c.start = start }
}

// WithUser sets the user ID.
func WithUser(userID string) HarnessOption {
	return func(c *harnessConfig) { c.userID = userID }
}

// WithStep sets how far the clock advances on every read.
func WithStep(step time.Duration) HarnessOption {
	return func(c *harnessConfig) { c.step = step }
}

// NewHarness creates a harness. Everything it opens is closed by t.Cleanup.
func NewHarness(t *testing.T, opts ...HarnessOption) *Harness {
	t.Helper()

	cfg := harnessConfig{
		start:  DefaultStart,
		userID: DefaultUserID,
		step:   time.Millisecond,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	cacheStore, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to create cache store: %v", err)
	}
	if err := cacheStore.Migrate(context.Background()); err != nil {
		_ = cacheStore.Close()
		t.Fatalf("failed to migrate cache store: %v", err)
	}
	t.Cleanup(func() { _ = cacheStore.Close() })

	docs := docstore.NewMemory()
	return &Harness{
		Docs:       docs,
		Remote:     NewRecordingStore(docs),
		CacheStore: cacheStore,
		Cache:      cache.New(cacheStore, cfg.userID, nil),
		Clock:      NewStepClock(cfg.start, cfg.step),
		UserID:     cfg.userID,
	}
}
