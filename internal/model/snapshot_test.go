package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	s := NewSnapshot()
	assert.Equal(t, SnapshotSchemaVersion, s.SchemaVersion)
	require.NotNil(t, s.Tokens)
	assert.NotNil(t, s.Tokens.TransactionTokens)
	assert.NotNil(t, s.Transactions)
}

func TestSnapshotAccessorsOnNil(t *testing.T) {
	var s *Snapshot
	assert.Empty(t, s.CategoriesToken())
	assert.Empty(t, s.TransactionToken("2024"))
	assert.Empty(t, s.RecurringToken())
	_, ok := s.YearTransactions("2024")
	assert.False(t, ok)
}

func TestSnapshotNormalizesOlderLayout(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"categories":[],"schemaVersion":2}`), &s))
	assert.Nil(t, s.Tokens)

	s.Normalize()
	assert.Empty(t, s.TransactionToken("2024"))
	s.Tokens.TransactionTokens["2024"] = "t1"
	assert.Equal(t, "t1", s.TransactionToken("2024"))
}

func TestSnapshotJSONFieldNames(t *testing.T) {
	s := NewSnapshot()
	s.Tokens.RecurringToken = "r"
	s.Transactions["2024"] = []Transaction{{ID: "a", CategoryID: "c", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recurringTransactionToken":"r"`)
	assert.Contains(t, string(data), `"transactionTokens":{}`)
	assert.Contains(t, string(data), `"timestamp":"2024-01-01T00:00:00Z"`)

	cached, ok := s.YearTransactions("2024")
	require.True(t, ok)
	assert.Len(t, cached, 1)
}
