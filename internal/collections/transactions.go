package collections

import (
	"context"
	"sort"

	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// GetTransactions returns one year of transactions ordered by timestamp.
func (s *Store) GetTransactions(ctx context.Context, year string) ([]model.Transaction, error) {
	docs, err := s.docs.List(ctx, s.TransactionsPath(year))
	if err != nil {
		return nil, err
	}
	txns, err := decodeAll[model.Transaction](docs, transactionsCollection)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].Timestamp.Before(txns[j].Timestamp)
	})
	return txns, nil
}

// SetTransaction writes t under year. With merge, the document is updated in place.
func (s *Store) SetTransaction(ctx context.Context, year string, t model.Transaction, merge bool) error {
	var opts []service.SetOption
	if merge {
		opts = append(opts, service.WithMerge())
	}
	return s.put(ctx, docstore.Join(s.TransactionsPath(year), t.ID), t, opts...)
}

// DeleteTransaction removes the transaction id from year.
func (s *Store) DeleteTransaction(ctx context.Context, year, id string) error {
	return s.docs.Delete(ctx, docstore.Join(s.TransactionsPath(year), id))
}
