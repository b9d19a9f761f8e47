package model

// Partition names an independently invalidated slice of user data. Each
// partition has exactly one remote freshness token document.
type Partition string

// Fixed partitions.
const (
	PartitionCategories Partition = "categories"
	PartitionRecurring  Partition = "recurringExpenses"
	PartitionReminders  Partition = "remindersToken"
)

// TransactionsPartition returns the partition of one calendar year of transactions.
func TransactionsPartition(year string) Partition {
	return Partition("transactions_" + year)
}
