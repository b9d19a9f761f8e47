// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Common application errors.
var (
	// Store errors.
	ErrNotFound       = errors.New("not found")
	ErrSchemaMismatch = errors.New("cache schema mismatch")

	// Remote store errors.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	ErrRateLimit         = errors.New("rate limit exceeded")

	// Local cache errors.
	ErrCacheIO = errors.New("local cache unavailable")

	// Data errors.
	ErrMalformedDefinition = errors.New("malformed recurring expense definition")
	ErrCycleDetected       = errors.New("category parent cycle detected")
	ErrInvalidTransaction  = errors.New("invalid transaction")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// RemoteError reports a failed call against the remote document store.
type RemoteError struct {
	Err  error
	Op   string
	Path string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is makes every RemoteError match ErrRemoteUnavailable.
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// NewRemoteError wraps err as a remote store failure.
func NewRemoteError(op, path string, err error) error {
	return &RemoteError{Op: op, Path: path, Err: err}
}

// CacheIOError reports a failure of the local persistent store.
type CacheIOError struct {
	Err error
	Op  string
	Key string
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheIOError) Unwrap() error {
	return e.Err
}

// Is makes every CacheIOError match ErrCacheIO.
func (e *CacheIOError) Is(target error) bool {
	return target == ErrCacheIO
}

// NewCacheIOError wraps err as a local cache failure.
func NewCacheIOError(op, key string, err error) error {
	return &CacheIOError{Op: op, Key: key, Err: err}
}

// MalformedDefinitionError is returned for a recurring expense whose frequency
// is not one of WEEKLY, MONTHLY or YEARLY.
type MalformedDefinitionError struct {
	ID        string
	Frequency string
}

func (e *MalformedDefinitionError) Error() string {
	return fmt.Sprintf("recurring expense %s: unknown frequency %q", e.ID, e.Frequency)
}

// Is makes every MalformedDefinitionError match ErrMalformedDefinition.
func (e *MalformedDefinitionError) Is(target error) bool {
	return target == ErrMalformedDefinition
}

// CycleDetectedError is returned when a category's parent chain loops back on itself.
type CycleDetectedError struct {
	Chain []string
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("category parent cycle: %s", strings.Join(e.Chain, " -> "))
}

// Is makes every CycleDetectedError match ErrCycleDetected.
func (e *CycleDetectedError) Is(target error) bool {
	return target == ErrCycleDetected
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
