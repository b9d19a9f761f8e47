// Package cache owns the local cache snapshot of one user: the last-known-good
// copy of every partition together with its freshness token.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// Record keys in the cache store.
const (
	SnapshotKey       = "store"
	RemindersKey      = "reminders"
	RemindersTokenKey = "remindersToken"
)

// Service reads and writes the cache snapshot of a single user.
type Service struct {
	store  service.CacheStore
	logger *slog.Logger
	userID string
}

// New creates a cache service for userID backed by store.
func New(store service.CacheStore, userID string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		userID: userID,
		logger: logger.With("user_id", userID),
	}
}

// UserID returns the user the cache belongs to.
func (s *Service) UserID() string {
	return s.userID
}

// GetSnapshot returns the cached snapshot, or nil when none has been written.
// A snapshot written under another schema version is cleared and reported as
// absent. Storage faults are returned as *common.CacheIOError.
func (s *Service) GetSnapshot(ctx context.Context) (*model.Snapshot, error) {
	data, found, err := s.store.GetRecord(ctx, s.userID, SnapshotKey)
	if err != nil {
		return nil, common.NewCacheIOError("get", SnapshotKey, err)
	}
	if !found {
		return nil, nil
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("Discarding unreadable cache snapshot", "error", err)
		return nil, s.Clear(ctx)
	}
	if snap.SchemaVersion != model.SnapshotSchemaVersion {
		s.logger.Warn("Discarding cache snapshot",
			"error", common.ErrSchemaMismatch,
			"found_version", snap.SchemaVersion,
			"expected_version", model.SnapshotSchemaVersion)
		return nil, s.Clear(ctx)
	}

	snap.Normalize()
	return &snap, nil
}

// PutSnapshot persists snap as a whole, replacing whatever was stored.
func (s *Service) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	if snap == nil {
		snap = model.NewSnapshot()
	}
	snap.SchemaVersion = model.SnapshotSchemaVersion
	snap.Normalize()

	data, err := json.Marshal(snap)
	if err != nil {
		return common.NewCacheIOError("encode", SnapshotKey, err)
	}
	if err := s.store.PutRecord(ctx, s.userID, SnapshotKey, data); err != nil {
		return common.NewCacheIOError("put", SnapshotKey, err)
	}
	return nil
}

// Clear deletes the snapshot and the reminder records.
func (s *Service) Clear(ctx context.Context) error {
	for _, key := range []string{SnapshotKey, RemindersKey, RemindersTokenKey} {
		if err := s.store.DeleteRecord(ctx, s.userID, key); err != nil {
			return common.NewCacheIOError("delete", key, err)
		}
	}
	s.logger.Info("Cache cleared")
	return nil
}

// update applies fn to the current snapshot, or to a fresh one when none
// exists or it cannot be read, and writes the result back. Starting fresh
// drops the other partitions together with their tokens, so they are
// refetched rather than served stale.
func (s *Service) update(ctx context.Context, fn func(*model.Snapshot)) error {
	snap, err := s.GetSnapshot(ctx)
	if err != nil {
		s.logger.Warn("Cache read failed, rebuilding snapshot", "error", err)
		snap = nil
	}
	if snap == nil {
		snap = model.NewSnapshot()
	}
	snap.Normalize()
	fn(snap)
	return s.PutSnapshot(ctx, snap)
}

// UpdateCategories replaces the categories partition and its token.
func (s *Service) UpdateCategories(ctx context.Context, categories []model.CategoryWithType, token string) error {
	if categories == nil {
		categories = []model.CategoryWithType{}
	}
	return s.update(ctx, func(snap *model.Snapshot) {
		snap.Categories = categories
		snap.Tokens.CategoriesToken = token
	})
}

// UpdateTransactions replaces one year of transactions and its token.
func (s *Service) UpdateTransactions(ctx context.Context, year string, txns []model.Transaction, token string) error {
	if txns == nil {
		txns = []model.Transaction{}
	}
	return s.update(ctx, func(snap *model.Snapshot) {
		snap.Transactions[year] = txns
		snap.Tokens.TransactionTokens[year] = token
	})
}

// UpdateRecurringExpenses replaces the recurring-expense partition and its token.
func (s *Service) UpdateRecurringExpenses(ctx context.Context, expenses []model.RecurringExpense, token string) error {
	if expenses == nil {
		expenses = []model.RecurringExpense{}
	}
	return s.update(ctx, func(snap *model.Snapshot) {
		snap.RecurringExpenses = expenses
		snap.Tokens.RecurringToken = token
	})
}
