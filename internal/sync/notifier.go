package sync

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// ReminderNotifier polls reminders and reports the ones whose schedule
// window has been reached.
type ReminderNotifier struct {
	reminders *ReminderSync
	sent      map[string]time.Time
	opts      options
}

// NewReminderNotifier creates a notifier reading through reminders.
func NewReminderNotifier(reminders *ReminderSync, opts ...Option) *ReminderNotifier {
	o := buildOptions(opts)
	o.logger = o.logger.With("user_id", reminders.userID)
	return &ReminderNotifier{
		reminders: reminders,
		sent:      make(map[string]time.Time),
		opts:      o,
	}
}

// Check returns the notifications due now.
func (n *ReminderNotifier) Check(ctx context.Context) ([]model.Notification, error) {
	reminders, err := n.reminders.GetReminders(ctx, false)
	if err != nil {
		return nil, err
	}
	return model.DueNotifications(reminders, n.opts.clock.Now()), nil
}

// Run checks immediately and then every interval until ctx is done, passing
// each notification to notify once per schedule window. Failed checks are
// logged and retried on the next tick.
func (n *ReminderNotifier) Run(ctx context.Context, interval time.Duration, notify func(model.Notification)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid check interval %s", interval)
	}

	n.tick(ctx, notify)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.tick(ctx, notify)
		}
	}
}

func (n *ReminderNotifier) tick(ctx context.Context, notify func(model.Notification)) {
	notifications, err := n.Check(ctx)
	if err != nil {
		n.opts.logger.Warn("Reminder check failed", "error", err)
		return
	}

	n.prune(n.opts.clock.Now())

	for _, note := range notifications {
		// Hours are rounded up so every check within one window shares a key.
		key := fmt.Sprintf("%s|%d|%d", note.ReminderID, note.DueTime.Unix(), int(math.Ceil(note.HoursUntilDue)))
		if _, ok := n.sent[key]; ok {
			continue
		}
		n.sent[key] = note.DueTime
		notify(note)
	}
}

// prune forgets notifications for reminders that are already past due.
func (n *ReminderNotifier) prune(now time.Time) {
	for key, due := range n.sent {
		if due.Before(now) {
			delete(n.sent, key)
		}
	}
}
