package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atinyakov/authdemo/internal/client/storage"
	"github.com/atinyakov/authdemo/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginTimeLayout formats Session.LoginTime.
const LoginTimeLayout = "2006-01-02 15:04:05"

// SessionManager owns the single session slot. A stored session means
// Authenticated; no stored session means Anonymous.
type SessionManager struct {
	store storage.Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithClock replaces time.Now as the source of login times.
func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) { m.now = now }
}

// WithIDGenerator replaces the random UUID session id source.
func WithIDGenerator(gen func() string) SessionOption {
	return func(m *SessionManager) { m.newID = gen }
}

// NewSessionManager creates a SessionManager on top of store.
func NewSessionManager(store storage.Store, log *zap.Logger, opts ...SessionOption) *SessionManager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &SessionManager{
		store: store,
		log:   log,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Establish starts a session for username, replacing any existing one.
func (m *SessionManager) Establish(ctx context.Context, username string) (*models.Session, error) {
	s := &models.Session{
		ID:        m.newID(),
		Username:  username,
		LoginTime: m.now().Format(LoginTimeLayout),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, storage.KeySession, string(data)); err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}

	m.log.Info("session established", zap.String("session_id", s.ID), zap.String("username", username))
	return s, nil
}

// Current returns the active session, or nil when nobody is logged in.
// Sessions written by older releases as loose keys are still recognised.
func (m *SessionManager) Current(ctx context.Context) (*models.Session, error) {
	raw, found, err := m.store.Get(ctx, storage.KeySession)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if found {
		var s models.Session
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode session: %w: %w", storage.ErrUnavailable, err)
		}
		return &s, nil
	}
	return m.legacy(ctx)
}

// Clear ends the session. Clearing when nobody is logged in is a no-op.
func (m *SessionManager) Clear(ctx context.Context) error {
	keys := []string{
		storage.KeySession,
		storage.LegacyKeySessionUsername,
		storage.LegacyKeyCurrentUser,
		storage.LegacyKeyLoginTime,
	}
	for _, k := range keys {
		if err := m.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	m.log.Info("session cleared")
	return nil
}

func (m *SessionManager) legacy(ctx context.Context) (*models.Session, error) {
	var username string
	for _, k := range []string{storage.LegacyKeySessionUsername, storage.LegacyKeyCurrentUser} {
		v, ok, err := m.store.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}
		if ok && v != "" {
			username = v
			break
		}
	}
	if username == "" {
		return nil, nil
	}

	loginTime, _, err := m.store.Get(ctx, storage.LegacyKeyLoginTime)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return &models.Session{Username: username, LoginTime: loginTime}, nil
}
