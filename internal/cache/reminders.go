package cache

import (
	"context"
	"encoding/json"

	"github.com/Veraticus/the-spice-must-sync/internal/common"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
)

// GetReminders returns the cached reminders and their token. found is false
// unless both records are present.
func (s *Service) GetReminders(ctx context.Context) ([]model.Reminder, string, bool, error) {
	data, found, err := s.store.GetRecord(ctx, s.userID, RemindersKey)
	if err != nil {
		return nil, "", false, common.NewCacheIOError("get", RemindersKey, err)
	}
	if !found {
		return nil, "", false, nil
	}

	token, found, err := s.store.GetRecord(ctx, s.userID, RemindersTokenKey)
	if err != nil {
		return nil, "", false, common.NewCacheIOError("get", RemindersTokenKey, err)
	}
	if !found || len(token) == 0 {
		return nil, "", false, nil
	}

	var reminders []model.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		s.logger.Warn("Discarding unreadable reminder cache", "error", err)
		return nil, "", false, s.ClearReminders(ctx)
	}
	return reminders, string(token), true, nil
}

// PutReminders replaces the cached reminders and their token.
func (s *Service) PutReminders(ctx context.Context, reminders []model.Reminder, token string) error {
	if reminders == nil {
		reminders = []model.Reminder{}
	}
	data, err := json.Marshal(reminders)
	if err != nil {
		return common.NewCacheIOError("encode", RemindersKey, err)
	}
	if err := s.store.PutRecord(ctx, s.userID, RemindersKey, data); err != nil {
		return common.NewCacheIOError("put", RemindersKey, err)
	}
	if err := s.store.PutRecord(ctx, s.userID, RemindersTokenKey, []byte(token)); err != nil {
		return common.NewCacheIOError("put", RemindersTokenKey, err)
	}
	return nil
}

// ClearReminders drops the cached reminders and their token.
func (s *Service) ClearReminders(ctx context.Context) error {
	for _, key := range []string{RemindersKey, RemindersTokenKey} {
		if err := s.store.DeleteRecord(ctx, s.userID, key); err != nil {
			return common.NewCacheIOError("delete", key, err)
		}
	}
	return nil
}
