package sync

import (
	"context"
	"fmt"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// RecurringSync keeps a token-guarded cache of the user's active recurring
// expense definitions.
type RecurringSync struct {
	partitions
}

// NewRecurringSync creates a recurring-expense sync for userID.
func NewRecurringSync(userID string, docs service.DocumentStore, cacheSvc *cache.Service, opts ...Option) *RecurringSync {
	return &RecurringSync{partitions: newPartitions(userID, docs, cacheSvc, opts)}
}

// GetRecurringExpenses returns the active definitions, serving the cache when
// its token matches the remote one and forceRefresh is false.
func (r *RecurringSync) GetRecurringExpenses(ctx context.Context, forceRefresh bool) ([]model.RecurringExpense, error) {
	snap := r.loadSnapshot(ctx)
	local := snap.RecurringToken()

	if !forceRefresh && local != "" && snap.RecurringExpenses != nil {
		fresh, err := r.isFresh(ctx, model.PartitionRecurring, local)
		if err != nil {
			return nil, err
		}
		if fresh {
			r.logger.Debug("Cache hit", "partition", model.PartitionRecurring)
			return snap.RecurringExpenses, nil
		}
	}

	r.logger.Debug("Cache miss", "partition", model.PartitionRecurring, "forced", forceRefresh)
	return r.fetch(ctx, "")
}

func (r *RecurringSync) fetch(ctx context.Context, token string) ([]model.RecurringExpense, error) {
	expenses, err := r.store.GetActiveRecurringExpenses(ctx)
	if err != nil {
		return nil, err
	}

	if token == "" {
		if token, err = r.ensureToken(ctx, model.PartitionRecurring); err != nil {
			return nil, err
		}
	}

	if err := r.cache.UpdateRecurringExpenses(ctx, expenses, token); err != nil {
		return nil, err
	}

	r.logger.Info("Synced recurring expenses", "count", len(expenses))
	return expenses, nil
}

// refresh mints a new recurring token and refetches every active definition.
func (r *RecurringSync) refresh(ctx context.Context) error {
	token, err := r.bumpToken(ctx, model.PartitionRecurring)
	if err != nil {
		return err
	}
	_, err = r.fetch(ctx, token)
	return err
}

// UpdateRecurringExpenseAndCache writes e and then refetches the whole
// partition rather than patching the cached list.
func (r *RecurringSync) UpdateRecurringExpenseAndCache(ctx context.Context, e model.RecurringExpense) error {
	e.UserID = r.userID
	if err := model.ValidateRecurringExpense(e); err != nil {
		return err
	}
	if e.ID == "" {
		return fmt.Errorf("update recurring expense: %w", common.ErrNotFound)
	}

	if err := r.store.SetRecurringExpense(ctx, e); err != nil {
		return err
	}
	return r.refresh(ctx)
}

// AddRecurringExpense creates a definition and returns its ID. A zero
// NextOccurrence starts at StartDate.
func (r *RecurringSync) AddRecurringExpense(ctx context.Context, e model.RecurringExpense) (string, error) {
	e.ID = r.opts.newID()
	e.UserID = r.userID
	if e.NextOccurrence.IsZero() {
		e.NextOccurrence = e.StartDate
	}
	if err := model.ValidateRecurringExpense(e); err != nil {
		return "", err
	}

	if err := r.store.SetRecurringExpense(ctx, e); err != nil {
		return "", err
	}
	if err := r.refresh(ctx); err != nil {
		return "", err
	}

	r.logger.Info("Added recurring expense", "recurring_id", e.ID, "frequency", e.Frequency)
	return e.ID, nil
}

// DeleteRecurringExpense removes a definition and force-refreshes the cache.
func (r *RecurringSync) DeleteRecurringExpense(ctx context.Context, id string) error {
	if err := r.store.DeleteRecurringExpense(ctx, id); err != nil {
		return err
	}
	if _, err := r.bumpToken(ctx, model.PartitionRecurring); err != nil {
		return err
	}
	if _, err := r.GetRecurringExpenses(ctx, true); err != nil {
		return err
	}

	r.logger.Info("Deleted recurring expense", "recurring_id", id)
	return nil
}

// GetRecurringExpenseByID reads one definition from the remote store.
func (r *RecurringSync) GetRecurringExpenseByID(ctx context.Context, id string) (*model.RecurringExpense, error) {
	e, err := r.store.GetRecurringExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("recurring expense %s: %w", id, common.ErrNotFound)
	}
	return e, nil
}

// ProcessExpiredRecurringExpense calls fn while e is active and due, re-reading
// the definition after each call. fn is expected to advance NextOccurrence;
// the loop stops if it does not. The cache is refreshed afterwards and the
// number of processed occurrences is returned.
func (r *RecurringSync) ProcessExpiredRecurringExpense(
	ctx context.Context,
	e model.RecurringExpense,
	fn func(context.Context, model.RecurringExpense) error,
) (int, error) {
	if !e.Frequency.Valid() {
		err := &common.MalformedDefinitionError{ID: e.ID, Frequency: string(e.Frequency)}
		r.logger.Warn("Skipping recurring expense", "recurring_id", e.ID, "error", err)
		return 0, nil
	}

	now := r.opts.clock.Now()
	current := e
	count := 0
	removed := false

	for current.Due(now) {
		if err := fn(ctx, current); err != nil {
			return count, err
		}

		updated, err := r.store.GetRecurringExpense(ctx, current.ID)
		if err != nil {
			return count, err
		}
		if updated == nil || !updated.IsActive {
			removed = true
			break
		}
		count++

		if !updated.NextOccurrence.After(current.NextOccurrence) {
			r.logger.Warn("Recurring expense did not advance", "recurring_id", current.ID,
				"next_occurrence", updated.NextOccurrence)
			current = *updated
			break
		}
		current = *updated
	}

	if removed {
		_, err := r.GetRecurringExpenses(ctx, true)
		return count, err
	}
	return count, r.UpdateRecurringExpenseAndCache(ctx, current)
}

// ClearRecurringExpensesCache empties the cached partition and its token.
func (r *RecurringSync) ClearRecurringExpensesCache(ctx context.Context) error {
	return r.cache.UpdateRecurringExpenses(ctx, []model.RecurringExpense{}, "")
}
