package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// ProcessResult summarizes one processing run.
type ProcessResult struct {
	// Malformed lists definitions skipped because of an unknown frequency.
	Malformed []string
	Created   int
}

// RecurringProcessor materializes due recurring expenses into transactions.
type RecurringProcessor struct {
	recurring *RecurringSync
	txns      *Service
	opts      options
}

// NewRecurringProcessor creates a processor writing through txns.
func NewRecurringProcessor(recurring *RecurringSync, txns *Service, opts ...Option) *RecurringProcessor {
	o := buildOptions(opts)
	o.logger = o.logger.With("user_id", txns.userID)
	return &RecurringProcessor{
		recurring: recurring,
		txns:      txns,
		opts:      o,
	}
}

// ProcessRecurringExpenses creates one transaction per missed occurrence of
// every active definition, advancing NextOccurrence until it is after now.
// A definition with an unknown frequency is logged and skipped; the others
// are still processed.
func (p *RecurringProcessor) ProcessRecurringExpenses(ctx context.Context) (ProcessResult, error) {
	var result ProcessResult

	expenses, err := p.recurring.GetRecurringExpenses(ctx, false)
	if err != nil {
		return result, fmt.Errorf("failed to load recurring expenses: %w", err)
	}

	now := p.opts.clock.Now()
	for _, expense := range expenses {
		if !expense.Due(now) {
			continue
		}

		created, err := p.process(ctx, expense, now)
		result.Created += created
		if err != nil {
			var malformed *common.MalformedDefinitionError
			if errors.As(err, &malformed) {
				p.opts.logger.Warn("Skipping malformed recurring expense",
					"recurring_id", expense.ID,
					"frequency", expense.Frequency,
					"error", err)
				result.Malformed = append(result.Malformed, expense.ID)
				continue
			}
			return result, err
		}
	}

	p.opts.logger.Info("Processed recurring expenses",
		"definitions", len(expenses),
		"created", result.Created,
		"malformed", len(result.Malformed))
	return result, nil
}

// process catches up a single definition.
func (p *RecurringProcessor) process(ctx context.Context, expense model.RecurringExpense, now time.Time) (int, error) {
	created := 0
	for expense.Due(now) {
		next, ok := expense.Frequency.Advance(expense.NextOccurrence)
		if !ok {
			return created, &common.MalformedDefinitionError{ID: expense.ID, Frequency: string(expense.Frequency)}
		}

		txn := expense.Materialize(p.opts.newID(), p.txns.userID)
		if err := p.txns.UpdateTransactionAndCache(ctx, txn); err != nil {
			return created, fmt.Errorf("failed to create occurrence of %s: %w", expense.ID, err)
		}
		created++

		expense.NextOccurrence = next
		if err := p.recurring.UpdateRecurringExpenseAndCache(ctx, expense); err != nil {
			return created, fmt.Errorf("failed to advance %s: %w", expense.ID, err)
		}
		p.opts.logger.Debug("Advanced recurring expense",
			"recurring_id", expense.ID,
			"next_occurrence", next)
	}
	return created, nil
}
