package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateTransaction checks the fields a transaction needs before it is written.
func ValidateTransaction(t Transaction) error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidTransaction, err)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", common.ErrInvalidTransaction)
	}
	return nil
}

// ValidateRecurringExpense checks a definition before it is created.
func ValidateRecurringExpense(e RecurringExpense) error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid recurring expense: %w", err)
	}
	if e.NextOccurrence.IsZero() {
		return fmt.Errorf("invalid recurring expense: missing next occurrence")
	}
	return nil
}

// ValidateCategory checks a category before it is written.
func ValidateCategory(c Category) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid category: %w", err)
	}
	if c.ParentCategoryID == c.ID {
		return &common.CycleDetectedError{Chain: []string{c.ID, c.ID}}
	}
	return nil
}

// ValidateReminder checks user-supplied reminder fields.
func ValidateReminder(in ReminderInput) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid reminder: %w", err)
	}
	if in.DueTime.IsZero() {
		return fmt.Errorf("invalid reminder: missing due time")
	}
	return nil
}
