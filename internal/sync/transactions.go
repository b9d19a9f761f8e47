package sync

import (
	"context"

	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// SyncTransactionsYear returns one year of transactions, serving the cache
// when its token for the year matches the remote one. Without a cached token
// the remote token check is skipped since the fetch re-establishes it.
func (s *Service) SyncTransactionsYear(ctx context.Context, year string) ([]model.Transaction, error) {
	partition := model.TransactionsPartition(year)
	snap := s.loadSnapshot(ctx)
	local := snap.TransactionToken(year)

	if local == "" {
		s.logger.Debug("Cache miss", "partition", partition, "reason", "no local token")
		return s.fetchTransactions(ctx, year, "")
	}

	cached, ok := snap.YearTransactions(year)
	if ok {
		fresh, err := s.isFresh(ctx, partition, local)
		if err != nil {
			return nil, err
		}
		if fresh {
			s.logger.Debug("Cache hit", "partition", partition)
			return cached, nil
		}
	}

	s.logger.Debug("Cache miss", "partition", partition)
	return s.fetchTransactions(ctx, year, "")
}

// fetchTransactions reads one year from the remote store and writes it
// through to the cache under token, or under the current remote token when
// token is empty.
func (s *Service) fetchTransactions(ctx context.Context, year, token string) ([]model.Transaction, error) {
	txns, err := s.store.GetTransactions(ctx, year)
	if err != nil {
		return nil, err
	}

	if token == "" {
		if token, err = s.ensureToken(ctx, model.TransactionsPartition(year)); err != nil {
			return nil, err
		}
	}

	if err := s.cache.UpdateTransactions(ctx, year, txns, token); err != nil {
		return nil, err
	}

	s.logger.Info("Synced transactions", "year", year, "count", len(txns))
	return txns, nil
}

// refreshYear mints a new token for year and refetches it into the cache.
func (s *Service) refreshYear(ctx context.Context, year string) error {
	token, err := s.bumpToken(ctx, model.TransactionsPartition(year))
	if err != nil {
		return err
	}
	_, err = s.fetchTransactions(ctx, year, token)
	return err
}

func (s *Service) prepare(t model.Transaction) (model.Transaction, error) {
	if t.ID == "" {
		t.ID = s.opts.newID()
	}
	t.UserID = s.userID
	return t, model.ValidateTransaction(t)
}

// CreateTransaction writes t into the year of its timestamp. An empty ID is generated.
func (s *Service) CreateTransaction(ctx context.Context, t model.Transaction) (*model.Transaction, error) {
	t, err := s.prepare(t)
	if err != nil {
		return nil, err
	}
	year := t.Year(s.opts.location)

	if err := s.store.SetTransaction(ctx, year, t, false); err != nil {
		return nil, err
	}
	if err := s.refreshYear(ctx, year); err != nil {
		return nil, err
	}

	s.logger.Info("Created transaction", "transaction_id", t.ID, "year", year)
	return &t, nil
}

// UpdateTransaction replaces original with updated. When the timestamp moves
// to another year, or updated carries a different ID, the original document is
// removed before updated is written, so the transaction is never filed twice.
func (s *Service) UpdateTransaction(ctx context.Context, original, updated model.Transaction) (*model.Transaction, error) {
	if updated.ID == "" {
		updated.ID = original.ID
	}
	updated, err := s.prepare(updated)
	if err != nil {
		return nil, err
	}

	oldYear := original.Year(s.opts.location)
	newYear := updated.Year(s.opts.location)

	if oldYear != newYear {
		if err := s.store.DeleteTransaction(ctx, oldYear, original.ID); err != nil {
			return nil, err
		}
		if err := s.refreshYear(ctx, oldYear); err != nil {
			return nil, err
		}
		if err := s.store.SetTransaction(ctx, newYear, updated, false); err != nil {
			return nil, err
		}
		s.logger.Info("Moved transaction", "transaction_id", updated.ID, "from_year", oldYear, "to_year", newYear)
	} else if original.ID != "" && original.ID != updated.ID {
		// The ID changed, so the original document must go.
		if err := s.store.DeleteTransaction(ctx, oldYear, original.ID); err != nil {
			return nil, err
		}
		if err := s.store.SetTransaction(ctx, newYear, updated, false); err != nil {
			return nil, err
		}
	} else if err := s.store.SetTransaction(ctx, newYear, updated, true); err != nil {
		return nil, err
	}

	if err := s.refreshYear(ctx, newYear); err != nil {
		return nil, err
	}

	s.logger.Info("Updated transaction", "transaction_id", updated.ID, "year", newYear)
	return &updated, nil
}

// DeleteTransaction removes the transaction id from year.
func (s *Service) DeleteTransaction(ctx context.Context, id, year string) error {
	if err := s.store.DeleteTransaction(ctx, year, id); err != nil {
		return err
	}
	if err := s.refreshYear(ctx, year); err != nil {
		return err
	}

	s.logger.Info("Deleted transaction", "transaction_id", id, "year", year)
	return nil
}

// UpdateTransactionAndCache writes t, bumps its year's token and resyncs the
// year from the remote store.
func (s *Service) UpdateTransactionAndCache(ctx context.Context, t model.Transaction) error {
	t, err := s.prepare(t)
	if err != nil {
		return err
	}
	year := t.Year(s.opts.location)

	if err := s.store.SetTransaction(ctx, year, t, false); err != nil {
		return err
	}
	if _, err := s.bumpToken(ctx, model.TransactionsPartition(year)); err != nil {
		return err
	}
	_, err = s.fetchTransactions(ctx, year, "")
	return err
}

// DeleteTransactionAndCache removes t from year, bumps the year's token and
// resyncs the year from the remote store.
func (s *Service) DeleteTransactionAndCache(ctx context.Context, t model.Transaction, year string) error {
	if err := s.store.DeleteTransaction(ctx, year, t.ID); err != nil {
		return err
	}
	if _, err := s.bumpToken(ctx, model.TransactionsPartition(year)); err != nil {
		return err
	}
	_, err := s.fetchTransactions(ctx, year, "")
	return err
}
