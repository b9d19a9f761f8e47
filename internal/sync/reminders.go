package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// ReminderSync caches the user's reminders in records of their own, guarded
// by the remindersToken document. Mutations bump the token and drop the
// cached copy so the next read refetches.
type ReminderSync struct {
	partitions
}

// NewReminderSync creates a reminder sync for userID.
func NewReminderSync(userID string, docs service.DocumentStore, cacheSvc *cache.Service, opts ...Option) *ReminderSync {
	return &ReminderSync{partitions: newPartitions(userID, docs, cacheSvc, opts)}
}

// GetReminders returns the reminders ordered by due time.
func (r *ReminderSync) GetReminders(ctx context.Context, forceRefresh bool) ([]model.Reminder, error) {
	remote, err := r.store.GetToken(ctx, model.PartitionReminders)
	if err != nil {
		return nil, err
	}

	if !forceRefresh && remote != "" {
		cached, local, found, err := r.cache.GetReminders(ctx)
		switch {
		case err != nil:
			r.logger.Warn("Cache read failed, treating as miss", "error", err)
		case found && local == remote:
			r.logger.Debug("Cache hit", "partition", model.PartitionReminders)
			return cached, nil
		}
	}

	reminders, err := r.store.GetReminders(ctx)
	if err != nil {
		return nil, err
	}

	// Without a remote token there is nothing to validate a cached copy against.
	if remote != "" {
		if err := r.cache.PutReminders(ctx, reminders, remote); err != nil {
			return nil, err
		}
	}

	r.logger.Info("Synced reminders", "count", len(reminders))
	return reminders, nil
}

// invalidate bumps the remote token and drops the cached reminders.
func (r *ReminderSync) invalidate(ctx context.Context) error {
	if _, err := r.bumpToken(ctx, model.PartitionReminders); err != nil {
		return err
	}
	return r.cache.ClearReminders(ctx)
}

func (r *ReminderSync) now() string {
	return r.opts.clock.Now().UTC().Format(time.RFC3339Nano)
}

// AddReminder creates a reminder and returns its ID.
func (r *ReminderSync) AddReminder(ctx context.Context, in model.ReminderInput) (string, error) {
	if err := model.ValidateReminder(in); err != nil {
		return "", err
	}

	now := r.opts.clock.Now().UTC()
	reminder := model.Reminder{
		ID:               r.opts.newID(),
		Name:             in.Name,
		DueTime:          in.DueTime,
		ReminderSchedule: in.ReminderSchedule,
		UserID:           r.userID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := r.store.SetReminder(ctx, reminder); err != nil {
		return "", err
	}
	if err := r.invalidate(ctx); err != nil {
		return "", err
	}

	r.logger.Info("Added reminder", "reminder_id", reminder.ID, "due_time", reminder.DueTime)
	return reminder.ID, nil
}

// UpdateReminder replaces the editable fields of reminder id.
func (r *ReminderSync) UpdateReminder(ctx context.Context, id string, in model.ReminderInput) error {
	if err := model.ValidateReminder(in); err != nil {
		return err
	}

	existing, err := r.store.GetReminder(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("reminder %s: %w", id, common.ErrNotFound)
	}

	if err := r.store.UpdateReminder(ctx, id, in, r.now()); err != nil {
		return err
	}
	if err := r.invalidate(ctx); err != nil {
		return err
	}

	r.logger.Info("Updated reminder", "reminder_id", id)
	return nil
}

// DeleteReminder removes reminder id.
func (r *ReminderSync) DeleteReminder(ctx context.Context, id string) error {
	if err := r.store.DeleteReminder(ctx, id); err != nil {
		return err
	}
	if err := r.invalidate(ctx); err != nil {
		return err
	}

	r.logger.Info("Deleted reminder", "reminder_id", id)
	return nil
}

// ClearCache drops the cached reminders.
func (r *ReminderSync) ClearCache(ctx context.Context) error {
	return r.cache.ClearReminders(ctx)
}
