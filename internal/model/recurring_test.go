package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyAdvance(t *testing.T) {
	base := time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		freq Frequency
		want time.Time
		ok   bool
	}{
		{FrequencyWeekly, time.Date(2024, 2, 7, 9, 0, 0, 0, time.UTC), true},
		{FrequencyMonthly, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), true},
		{FrequencyYearly, time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC), true},
		{"DAILY", base, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			got, ok := tt.freq.Advance(base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.ok, tt.freq.Valid())
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestRecurringExpenseDue(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	e := RecurringExpense{NextOccurrence: now, IsActive: true}
	assert.True(t, e.Due(now), "an occurrence exactly at now is due")

	e.NextOccurrence = now.Add(time.Second)
	assert.False(t, e.Due(now))

	e.NextOccurrence = now.Add(-time.Hour)
	e.IsActive = false
	assert.False(t, e.Due(now), "inactive definitions are never due")
}

func TestMaterialize(t *testing.T) {
	next := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	e := RecurringExpense{
		ID:             "rent",
		CategoryID:     "housing",
		Description:    "Rent",
		Amount:         -1200,
		NextOccurrence: next,
	}

	txn := e.Materialize("t1", "u1")
	assert.Equal(t, Transaction{
		ID:          "t1",
		UserID:      "u1",
		CategoryID:  "housing",
		Description: "Rent",
		Amount:      -1200,
		Timestamp:   next,
	}, txn)
	assert.Equal(t, "2024", txn.Year(time.UTC))
}

func TestTransactionYear(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 30, 0, 0, time.UTC)
	txn := Transaction{Timestamp: ts}

	assert.Equal(t, "2023", txn.Year(time.UTC))
	assert.Equal(t, "2024", txn.Year(time.FixedZone("CET", 3600)))
	assert.Equal(t, "2023", txn.Year(nil))
}
