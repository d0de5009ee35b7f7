// Package service provides the authentication flow (sign-up, login,
// logout, welcome) and display preferences, delegating persistence to the
// repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/authdemo/internal/models"
	"github.com/atinyakov/authdemo/internal/validation"
	"go.uber.org/zap"
)

// ErrNotAuthenticated is returned by Welcome when no session is active.
var ErrNotAuthenticated = errors.New("not authenticated")

// UserDirectory defines the user persistence operations required by the
// authentication service.
type UserDirectory interface {
	// Register appends a user; it fails if the e-mail is taken.
	Register(ctx context.Context, user models.User) error
	// FindByCredentials returns the user matching email and password.
	FindByCredentials(ctx context.Context, email, password string) (*models.User, error)
}

// SessionStore defines the session slot operations required by the
// authentication service.
type SessionStore interface {
	// Establish replaces the current session with one for username.
	Establish(ctx context.Context, username string) (*models.Session, error)
	// Current returns the active session or nil.
	Current(ctx context.Context) (*models.Session, error)
	// Clear removes the active session, if any.
	Clear(ctx context.Context) error
}

// AuthService implements the sign-up and login flow.
type AuthService struct {
	users     UserDirectory
	sessions  SessionStore
	checker   *validation.Checker
	log       *zap.Logger
	delay     time.Duration
	autoLogin bool
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *AuthService) { s.log = log }
}

// WithDelay pauses before every storage-touching step so the UI can show
// a loading state. It has no effect on the outcome.
func WithDelay(d time.Duration) Option {
	return func(s *AuthService) { s.delay = d }
}

// WithAutoLogin makes a successful sign-up also establish a session.
func WithAutoLogin(enabled bool) Option {
	return func(s *AuthService) { s.autoLogin = enabled }
}

// NewAuthService constructs an AuthService. A nil checker applies the
// canonical rules.
func NewAuthService(users UserDirectory, sessions SessionStore, checker *validation.Checker, opts ...Option) *AuthService {
	if checker == nil {
		checker = validation.NewChecker(validation.Canonical)
	}
	s := &AuthService{
		users:    users,
		sessions: sessions,
		checker:  checker,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignUp validates the form and registers the user. With auto-login
// enabled the new user is also logged in and the session returned;
// otherwise the returned session is nil.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*models.Session, error) {
	if err := s.checker.CheckSignup(validation.SignupForm{Name: name, Email: email, Password: password}); err != nil {
		s.log.Debug("sign-up rejected", zap.Error(err))
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	if err := s.users.Register(ctx, models.User{Name: name, Email: email, Password: password}); err != nil {
		s.log.Warn("sign-up failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if !s.autoLogin {
		return nil, nil
	}
	return s.sessions.Establish(ctx, name)
}

// Login validates the form, looks the user up and starts a session under
// the user's name.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := s.checker.CheckLogin(validation.LoginForm{Email: email, Password: password}); err != nil {
		s.log.Debug("login rejected", zap.Error(err))
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.users.FindByCredentials(ctx, email, password)
	if err != nil {
		s.log.Warn("login failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	sess, err := s.sessions.Establish(ctx, user.Name)
	if err != nil {
		return nil, fmt.Errorf("login %s: %w", email, err)
	}
	return sess, nil
}

// Logout ends the current session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Welcome returns the active session for the welcome screen.
func (s *AuthService) Welcome(ctx context.Context) (*models.Session, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	return sess, nil
}

func (s *AuthService) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
