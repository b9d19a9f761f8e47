package model

import "time"

// Frequency is how often a recurring expense repeats.
type Frequency string

// Supported frequencies.
const (
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// Advance returns the occurrence following t. Month and year steps use calendar
// arithmetic, so Jan 31 + 1 month normalizes into March like time.AddDate does.
func (f Frequency) Advance(t time.Time) (time.Time, bool) {
	switch f {
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7), true
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0), true
	case FrequencyYearly:
		return t.AddDate(1, 0, 0), true
	default:
		return t, false
	}
}

// RecurringExpense is a template that produces one transaction per period.
type RecurringExpense struct {
	StartDate      time.Time `json:"startDate"`
	NextOccurrence time.Time `json:"nextOccurrence"`
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	CategoryID     string    `json:"categoryId" validate:"required"`
	Description    string    `json:"description,omitempty"`
	Frequency      Frequency `json:"frequency" validate:"required,oneof=WEEKLY MONTHLY YEARLY"`
	Amount         float64   `json:"amount"`
	IsActive       bool      `json:"isActive"`
}

// Due reports whether the definition is active and its next occurrence is at or before now.
func (e RecurringExpense) Due(now time.Time) bool {
	return e.IsActive && !e.NextOccurrence.After(now)
}

// Materialize builds the transaction for the current next occurrence.
func (e RecurringExpense) Materialize(id, userID string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      e.Amount,
		CategoryID:  e.CategoryID,
		Description: e.Description,
		Timestamp:   e.NextOccurrence,
		UserID:      userID,
	}
}
