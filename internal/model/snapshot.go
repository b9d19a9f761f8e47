package model

// SnapshotSchemaVersion is bumped whenever the cached snapshot layout changes.
// Snapshots written with another version are discarded on read.
const SnapshotSchemaVersion = 2

// Tokens holds the last-known freshness token of every cached partition.
type Tokens struct {
	TransactionTokens map[string]string `json:"transactionTokens"`
	CategoriesToken   string            `json:"categoriesToken"`
	RecurringToken    string            `json:"recurringTransactionToken"`
}

// Snapshot is the single cached record holding every partition and its token.
type Snapshot struct {
	Transactions      map[string][]Transaction `json:"transactions"`
	Tokens            *Tokens                  `json:"tokens"`
	Categories        []CategoryWithType       `json:"categories"`
	RecurringExpenses []RecurringExpense       `json:"recurringExpenses"`
	SchemaVersion     int                      `json:"schemaVersion"`
}

// NewSnapshot returns an empty snapshot at the current schema version.
func NewSnapshot() *Snapshot {
	s := &Snapshot{SchemaVersion: SnapshotSchemaVersion}
	s.Normalize()
	return s
}

// Normalize fills in nested structures that a snapshot written by an older
// layout may lack.
func (s *Snapshot) Normalize() {
	if s.Tokens == nil {
		s.Tokens = &Tokens{}
	}
	if s.Tokens.TransactionTokens == nil {
		s.Tokens.TransactionTokens = make(map[string]string)
	}
	if s.Transactions == nil {
		s.Transactions = make(map[string][]Transaction)
	}
}

// CategoriesToken returns the cached categories token, or "" when absent.
func (s *Snapshot) CategoriesToken() string {
	if s == nil || s.Tokens == nil {
		return ""
	}
	return s.Tokens.CategoriesToken
}

// TransactionToken returns the cached token for year, or "" when absent.
func (s *Snapshot) TransactionToken(year string) string {
	if s == nil || s.Tokens == nil {
		return ""
	}
	return s.Tokens.TransactionTokens[year]
}

// RecurringToken returns the cached recurring-expense token, or "" when absent.
func (s *Snapshot) RecurringToken() string {
	if s == nil || s.Tokens == nil {
		return ""
	}
	return s.Tokens.RecurringToken
}

// YearTransactions returns the cached list for year and whether it is present.
func (s *Snapshot) YearTransactions(year string) ([]Transaction, bool) {
	if s == nil || s.Transactions == nil {
		return nil, false
	}
	txns, ok := s.Transactions[year]
	return txns, ok
}
