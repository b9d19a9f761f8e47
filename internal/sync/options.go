package sync

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// Option configures the services in this package.
type Option func(*options)

type options struct {
	clock    service.Clock
	logger   *slog.Logger
	location *time.Location
	newID    func() string
}

// WithClock sets the clock used to mint tokens and decide which recurring
// expenses are due.
func WithClock(clock service.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLocation sets the time zone used to file transactions into years.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithIDGenerator replaces the UUID generator for new documents.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		clock:    service.SystemClock,
		logger:   slog.Default(),
		location: time.Local,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// mintToken returns a fresh freshness token: the current time as an ISO-8601 string.
func (o options) mintToken() string {
	return o.clock.Now().UTC().Format(time.RFC3339Nano)
}
