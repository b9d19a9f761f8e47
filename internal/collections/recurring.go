package collections

import (
	"context"

	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// GetActiveRecurringExpenses returns the definitions whose isActive flag is set.
func (s *Store) GetActiveRecurringExpenses(ctx context.Context) ([]model.RecurringExpense, error) {
	docs, err := s.docs.List(ctx, s.RecurringExpensesPath())
	if err != nil {
		return nil, err
	}
	all, err := decodeAll[model.RecurringExpense](docs, recurringCollection)
	if err != nil {
		return nil, err
	}

	active := make([]model.RecurringExpense, 0, len(all))
	for _, e := range all {
		if e.IsActive {
			active = append(active, e)
		}
	}
	return active, nil
}

// GetRecurringExpense returns the definition with id, or nil when it does not exist.
func (s *Store) GetRecurringExpense(ctx context.Context, id string) (*model.RecurringExpense, error) {
	doc, err := s.docs.Get(ctx, docstore.Join(s.RecurringExpensesPath(), id))
	if err != nil || doc == nil {
		return nil, err
	}
	var e model.RecurringExpense
	if err := docstore.FromDocument(doc, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// SetRecurringExpense writes e, replacing any previous version.
func (s *Store) SetRecurringExpense(ctx context.Context, e model.RecurringExpense) error {
	return s.put(ctx, docstore.Join(s.RecurringExpensesPath(), e.ID), e)
}

// DeleteRecurringExpense removes the definition with id.
func (s *Store) DeleteRecurringExpense(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, docstore.Join(s.RecurringExpensesPath(), id))
}
