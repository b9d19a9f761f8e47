package sync

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/the-spice-must-sync/internal/cache"
	"github.com/Veraticus/the-spice-must-sync/internal/model"
	"github.com/Veraticus/the-spice-must-sync/internal/testutil"
)

type fixture struct {
	h          *testutil.Harness
	svc        *Service
	recurring  *RecurringSync
	reminders  *ReminderSync
	processor  *RecurringProcessor
	notifier   *ReminderNotifier
	txnsPath   func(year string) string
	tokenPath  func(p model.Partition) string
	categories string
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func newFixture(t *testing.T, opts ...testutil.HarnessOption) *fixture {
	t.Helper()
	h := testutil.NewHarness(t, opts...)
	return newFixtureFor(h, h.Cache)
}

// newFixtureFor builds the services over h's remote store with cacheSvc,
// which lets a second "device" share the remote but not the cache.
func newFixtureFor(h *testutil.Harness, cacheSvc *cache.Service) *fixture {
	options := []Option{
		WithClock(h.Clock),
		WithLocation(time.UTC),
		WithIDGenerator(sequentialIDs("id")),
	}
	svc := NewService(h.UserID, h.Remote, cacheSvc, options...)
	recurring := NewRecurringSync(h.UserID, h.Remote, cacheSvc, options...)
	reminders := NewReminderSync(h.UserID, h.Remote, cacheSvc, options...)

	return &fixture{
		h:         h,
		svc:       svc,
		recurring: recurring,
		reminders: reminders,
		processor: NewRecurringProcessor(recurring, svc, append(options, WithIDGenerator(sequentialIDs("occ")))...),
		notifier:  NewReminderNotifier(reminders, options...),
		txnsPath: func(year string) string {
			return "users/" + h.UserID + "/transactions/" + year + "/transactions"
		},
		tokenPath: func(p model.Partition) string {
			return "users/" + h.UserID + "/tokens/" + string(p)
		},
		categories: "users/" + h.UserID + "/categories",
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
}

func txn(id string, ts time.Time, amount float64) model.Transaction {
	return model.Transaction{ID: id, CategoryID: "food", Amount: amount, Timestamp: ts, Description: "test " + id}
}
