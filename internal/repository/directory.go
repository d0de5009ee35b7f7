// Package repository provides the user directory and the session slot,
// both persisted through a storage.Store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/authdemo/internal/client/storage"
	"github.com/atinyakov/authdemo/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrDuplicateEmail is returned by Register when the e-mail is taken.
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrCredentialMismatch is returned when no user matches the given
	// e-mail and password. It does not say which of the two was wrong.
	ErrCredentialMismatch = errors.New("wrong email or password")
)

// UserDirectory is the persisted, append-only list of registered users.
// It keeps no copy in memory: every call reads the whole list from the
// store and every mutation writes the whole list back.
type UserDirectory struct {
	// store holds the serialised list under storage.KeyUsers.
	store storage.Store
	log   *zap.Logger
}

// NewUserDirectory creates a UserDirectory on top of store.
func NewUserDirectory(store storage.Store, log *zap.Logger) *UserDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserDirectory{store: store, log: log}
}

// Register appends user unless a user with the same e-mail already exists.
// The uniqueness check and the write happen in one store update, so two
// concurrent registrations of one e-mail cannot both succeed.
func (d *UserDirectory) Register(ctx context.Context, user models.User) error {
	err := d.store.Update(ctx, storage.KeyUsers, func(current string, found bool) (string, error) {
		users, err := decodeUsers(current, found)
		if err != nil {
			return "", err
		}
		if indexByEmail(users, user.Email) >= 0 {
			return "", ErrDuplicateEmail
		}

		data, err := json.Marshal(append(users, user))
		if err != nil {
			return "", fmt.Errorf("encode users: %w", err)
		}
		return string(data), nil
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", user.Email, err)
	}

	d.log.Info("user registered", zap.String("email", user.Email))
	return nil
}

// FindByCredentials returns the first user, in registration order, whose
// e-mail and password both match exactly.
func (d *UserDirectory) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email && users[i].Password == password {
			u := users[i]
			return &u, nil
		}
	}
	return nil, ErrCredentialMismatch
}

// Exists reports whether a user with email is registered.
func (d *UserDirectory) Exists(ctx context.Context, email string) (bool, error) {
	users, err := d.load(ctx)
	if err != nil {
		return false, err
	}
	return indexByEmail(users, email) >= 0, nil
}

// Count returns the number of registered users.
func (d *UserDirectory) Count(ctx context.Context) (int, error) {
	users, err := d.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (d *UserDirectory) load(ctx context.Context) ([]models.User, error) {
	raw, found, err := d.store.Get(ctx, storage.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return decodeUsers(raw, found)
}

func decodeUsers(raw string, found bool) ([]models.User, error) {
	if !found || raw == "" {
		return nil, nil
	}
	var users []models.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("decode users: %w: %w", storage.ErrUnavailable, err)
	}
	return users, nil
}

func indexByEmail(users []models.User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}
