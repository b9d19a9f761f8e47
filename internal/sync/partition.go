// Package sync decides, per partition, whether the local cache snapshot can be
// served or the partition must be refetched from the remote document store.
// A partition is fresh when its cached token equals the remote token document.
package sync

import (
	"context"
	"log/slog"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/collections"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// partitions holds what every service in this package shares: the user's
// remote collections, the cache service and the options.
type partitions struct {
	cache  *cache.Service
	store  *collections.Store
	logger *slog.Logger
	opts   options
	userID string
}

func newPartitions(userID string, docs service.DocumentStore, cacheSvc *cache.Service, opts []Option) partitions {
	o := buildOptions(opts)
	logger := o.logger.With("user_id", userID)
	return partitions{
		cache:  cacheSvc,
		store:  collections.New(docs, userID, logger),
		logger: logger,
		opts:   o,
		userID: userID,
	}
}

// loadSnapshot reads the cache snapshot. A failing cache read is logged and
// treated as an empty cache so the caller falls through to a remote fetch.
func (p *partitions) loadSnapshot(ctx context.Context) *model.Snapshot {
	snap, err := p.cache.GetSnapshot(ctx)
	if err != nil {
		p.logger.Warn("Cache read failed, treating as miss", "error", err)
		return nil
	}
	return snap
}

// ensureToken returns the remote token of partition, minting and storing one
// when the partition has never been tokenized.
func (p *partitions) ensureToken(ctx context.Context, partition model.Partition) (string, error) {
	token, err := p.store.GetToken(ctx, partition)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	p.logger.Info("Tokenizing partition", "partition", partition)
	return p.bumpToken(ctx, partition)
}

// bumpToken mints a new token for partition and writes it remotely.
func (p *partitions) bumpToken(ctx context.Context, partition model.Partition) (string, error) {
	token := p.opts.mintToken()
	if err := p.store.SetToken(ctx, partition, token); err != nil {
		return "", err
	}
	return token, nil
}

// isFresh compares the cached token of partition with the remote one. An
// absent remote token is never fresh.
func (p *partitions) isFresh(ctx context.Context, partition model.Partition, local string) (bool, error) {
	remote, err := p.store.GetToken(ctx, partition)
	if err != nil {
		return false, err
	}
	fresh := remote != "" && remote == local
	p.logger.Debug("Compared partition tokens",
		"partition", partition,
		"local_token", local,
		"remote_token", remote,
		"fresh", fresh)
	return fresh, nil
}
