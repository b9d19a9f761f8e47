package ofx

import (
	"context"
	"fmt"

	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// TransactionCreator writes one transaction through the sync layer.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, t model.Transaction) (*model.Transaction, error)
}

// Import writes every entry as a transaction under categoryID. progress, when
// not nil, is called after each written entry. Import stops at the first
// failure and returns how many entries were written before it.
func Import(
	ctx context.Context,
	creator TransactionCreator,
	entries []Entry,
	userID, categoryID string,
	progress func(model.Transaction),
) (int, error) {
	imported := 0

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return imported, err
		}

		created, err := creator.CreateTransaction(ctx, entry.Transaction(userID, categoryID))
		if err != nil {
			return imported, fmt.Errorf("failed to import %s: %w", entry.FITID, err)
		}

		imported++
		if progress != nil {
			progress(*created)
		}
	}
	return imported, nil
}
