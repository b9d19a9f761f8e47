package collections

import (
	"context"

	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// GetToken returns the remote freshness token of partition, or "" when the
// partition has never been tokenized.
func (s *Store) GetToken(ctx context.Context, partition model.Partition) (string, error) {
	doc, err := s.docs.Get(ctx, s.TokenPath(partition))
	if err != nil {
		return "", err
	}
	if doc == nil {
		return "", nil
	}
	token, _ := doc["token"].(string)
	return token, nil
}

// SetToken overwrites the remote freshness token of partition.
func (s *Store) SetToken(ctx context.Context, partition model.Partition, token string) error {
	s.logger.Debug("Setting remote token", "partition", partition, "token", token)
	return s.docs.Set(ctx, s.TokenPath(partition), service.Document{"token": token})
}
