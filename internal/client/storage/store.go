// Package storage provides the local key-value store the demo persists its
// users, session and preferences in, with in-memory, JSON file, SQLite and
// Badger backends.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Well-known keys.
const (
	KeyUsers   = "users"
	KeySession = "session"
	KeyTheme   = "theme"
)

// Keys written by older releases that kept the session as loose values.
const (
	LegacyKeySessionUsername = "sessionUsername"
	LegacyKeyCurrentUser     = "currentUser"
	LegacyKeyLoginTime       = "loginTime"
)

// ErrUnavailable is wrapped into every error caused by the backend itself
// (I/O failures, closed handles, undecodable content).
var ErrUnavailable = errors.New("storage unavailable")

var errClosed = errors.New("store is closed")

// UpdateFunc computes the next value of a key from its current one.
// Returning an error aborts the update and nothing is written.
type UpdateFunc func(current string, found bool) (string, error)

// Store is a string-to-string key-value store.
type Store interface {
	// Get returns the value of key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Update atomically reads key, applies fn and writes the result.
	// No other Update on the same store interleaves between the read
	// and the write.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	// Close releases the backend.
	Close() error
}

// unavailable wraps a backend failure so callers can match ErrUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
