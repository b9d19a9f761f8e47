package collections

import (
	"context"
	"sort"

	"github.com/Veraticus/the-spice-must-sync/internal/docstore"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// GetReminders returns the user's reminders ordered by due time.
func (s *Store) GetReminders(ctx context.Context) ([]model.Reminder, error) {
	docs, err := s.docs.List(ctx, s.RemindersPath())
	if err != nil {
		return nil, err
	}
	reminders, err := decodeAll[model.Reminder](docs, remindersCollection)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].DueTime.Before(reminders[j].DueTime)
	})
	return reminders, nil
}

// GetReminder returns the reminder with id, or nil when it does not exist.
func (s *Store) GetReminder(ctx context.Context, id string) (*model.Reminder, error) {
	doc, err := s.docs.Get(ctx, docstore.Join(s.RemindersPath(), id))
	if err != nil || doc == nil {
		return nil, err
	}
	var r model.Reminder
	if err := docstore.FromDocument(doc, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// SetReminder writes r, replacing any previous version.
func (s *Store) SetReminder(ctx context.Context, r model.Reminder) error {
	return s.put(ctx, docstore.Join(s.RemindersPath(), r.ID), r)
}

// UpdateReminder merges the editable fields of in into the reminder id.
func (s *Store) UpdateReminder(ctx context.Context, id string, in model.ReminderInput, updatedAt string) error {
	doc, err := docstore.ToDocument(in)
	if err != nil {
		return err
	}
	doc["updatedAt"] = updatedAt
	return s.docs.Set(ctx, docstore.Join(s.RemindersPath(), id), doc, service.WithMerge())
}

// DeleteReminder removes the reminder with id.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	return s.docs.Delete(ctx, docstore.Join(s.RemindersPath(), id))
}
