// Package collections provides typed access to a user's documents in the
// remote store: categories, per-year transactions, recurring expenses,
// reminders and the freshness token of every partition.
package collections

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

const (
	usersCollection        = "users"
	categoriesCollection   = "categories"
	transactionsCollection = "transactions"
	recurringCollection    = "recurringExpenses"
	remindersCollection    = "reminders"
	tokensCollection       = "tokens"
)

// Store reads and writes one user's documents.
type Store struct {
	docs   service.DocumentStore
	logger *slog.Logger
	userID string
}

// New creates a Store scoped to userID.
func New(docs service.DocumentStore, userID string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		docs:   docs,
		userID: userID,
		logger: logger.With("user_id", userID),
	}
}

// UserID returns the user the store is scoped to.
func (s *Store) UserID() string {
	return s.userID
}

func (s *Store) path(segments ...string) string {
	return docstore.Join(append([]string{usersCollection, s.userID}, segments...)...)
}

// CategoriesPath is the collection holding the user's categories.
func (s *Store) CategoriesPath() string {
	return s.path(categoriesCollection)
}

// TransactionsPath is the collection holding one year of transactions.
func (s *Store) TransactionsPath(year string) string {
	return s.path(transactionsCollection, year, transactionsCollection)
}

// RecurringExpensesPath is the collection holding recurring expense definitions.
func (s *Store) RecurringExpensesPath() string {
	return s.path(recurringCollection)
}

// RemindersPath is the collection holding reminders.
func (s *Store) RemindersPath() string {
	return s.path(remindersCollection)
}

// TokenPath is the token document guarding partition.
func (s *Store) TokenPath(partition model.Partition) string {
	return s.path(tokensCollection, string(partition))
}

func (s *Store) put(ctx context.Context, path string, v any, opts ...service.SetOption) error {
	doc, err := docstore.ToDocument(v)
	if err != nil {
		return err
	}
	return s.docs.Set(ctx, path, doc, opts...)
}

func decodeAll[T any](docs []service.Document, collection string) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := docstore.FromDocument(doc, &item); err != nil {
			return nil, fmt.Errorf("%s/%v: %w", collection, doc["id"], err)
		}
		out = append(out, item)
	}
	return out, nil
}
