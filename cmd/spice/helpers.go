package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/collections"
	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/config"
	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
	"github.com/Veraticus/the-spice-must-sync/internal/storage"
	"github.com/Veraticus/the-spice-must-sync/internal/sync"
)

// app holds the services one command invocation works with.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	location   *time.Location
	docs       service.DocumentStore
	cacheStore *storage.SQLiteStorage
	cache      *cache.Service
	sync       *sync.Service
	recurring  *sync.RecurringSync
	reminders  *sync.ReminderSync
	options    []sync.Option
	closers    []func() error
}

// openApp loads the configuration and opens the local cache and remote store.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	loc, err := cfg.TimeLocation()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		logger:   slog.Default(),
		location: loc,
	}

	if err := a.openCache(ctx); err != nil {
		return nil, err
	}
	if err := a.openRemote(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.options = []sync.Option{sync.WithLogger(a.logger), sync.WithLocation(loc)}
	a.cache = cache.New(a.cacheStore, cfg.UserID, a.logger)
	a.sync = sync.NewService(cfg.UserID, a.docs, a.cache, a.options...)
	a.recurring = sync.NewRecurringSync(cfg.UserID, a.docs, a.cache, a.options...)
	a.reminders = sync.NewReminderSync(cfg.UserID, a.docs, a.cache, a.options...)
	return a, nil
}

func (a *app) openCache(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(a.cfg.Cache.Path), 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(a.cfg.Cache.Path)
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	a.cacheStore = store
	a.closers = append(a.closers, store.Close)
	return nil
}

func (a *app) openRemote(ctx context.Context) error {
	switch a.cfg.Remote.Backend {
	case config.BackendMemory:
		a.logger.Warn("Using the in-memory remote store; nothing is persisted remotely")
		a.docs = docstore.NewMemory()
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(a.cfg.Remote.Path), 0o750); err != nil {
			return fmt.Errorf("failed to create remote store directory: %w", err)
		}
		docs, err := docstore.NewSQLite(ctx, a.cfg.Remote.Path)
		if err != nil {
			return err
		}
		a.docs = docs
		a.closers = append(a.closers, docs.Close)
	case config.BackendFirestore:
		docs, err := docstore.NewFirestore(ctx, a.cfg.FirestoreConfig(), a.logger)
		if err != nil {
			return err
		}
		a.docs = docs
	default:
		return fmt.Errorf("%w: remote backend %q", common.ErrInvalidConfig, a.cfg.Remote.Backend)
	}
	return nil
}

// collections returns typed access to the user's remote documents.
func (a *app) collections() *collections.Store {
	return collections.New(a.docs, a.cfg.UserID, a.logger)
}

// Close releases the stores opened by openApp.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close store", "error", err)
		}
	}
}

// withApp opens the app for the duration of fn.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// parseDate accepts RFC 3339, "2006-01-02 15:04" or "2006-01-02" in loc.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC 3339", s)
}

func parseCategoryType(s string) (model.CategoryType, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "expense":
		return model.CategoryTypeExpense, nil
	case "income":
		return model.CategoryTypeIncome, nil
	case "investment":
		return model.CategoryTypeInvestment, nil
	default:
		return 0, fmt.Errorf("invalid category type %q: use expense, income or investment", s)
	}
}

// yearRange lists the years from..to inclusive.
func yearRange(from, to int) ([]string, error) {
	if from > to {
		return nil, fmt.Errorf("--from %d is after --to %d", from, to)
	}
	if to-from > 100 {
		return nil, errors.New("year range is longer than 100 years")
	}
	years := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years, nil
}
