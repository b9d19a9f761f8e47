package sync

import (
	"context"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// Service syncs the categories and per-year transaction partitions of one
// user. Mutations write remotely, mint a new partition token and then refetch
// the whole partition into the cache.
type Service struct {
	partitions
}

// NewService creates a sync service for userID.
func NewService(userID string, docs service.DocumentStore, cacheSvc *cache.Service, opts ...Option) *Service {
	return &Service{partitions: newPartitions(userID, docs, cacheSvc, opts)}
}

// UserID returns the user the service is scoped to.
func (s *Service) UserID() string {
	return s.userID
}

// Location returns the time zone transactions are filed in.
func (s *Service) Location() *time.Location {
	return s.opts.location
}

// ClearCache drops every cached partition. The next read of each partition
// refetches it.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
