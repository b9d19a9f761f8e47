package model

import (
	"strconv"
	"time"
)

// Transaction is a single income, expense or investment movement.
type Transaction struct {
	Timestamp   time.Time `json:"timestamp"`
	ID          string    `json:"id" validate:"required"`
	CategoryID  string    `json:"categoryId" validate:"required"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
}

// Year returns the calendar year partition the transaction is filed under.
// A nil loc uses the timestamp's own location.
func (t Transaction) Year(loc *time.Location) string {
	ts := t.Timestamp
	if loc != nil {
		ts = ts.In(loc)
	}
	return strconv.Itoa(ts.Year())
}
