// Package notify renders short user-facing notifications (the demo's
// toasts) and maps service errors to them.
package notify

import (
	"errors"
	"fmt"
	"io"

	"github.com/atinyakov/authdemo/internal/client/storage"
	"github.com/atinyakov/authdemo/internal/repository"
	"github.com/atinyakov/authdemo/internal/service"
	"github.com/atinyakov/authdemo/internal/validation"
)

// Kind classifies a notification.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
)

var icons = map[Kind]string{
	Success: "✔️",
	Error:   "❌",
	Warning: "⚠️",
}

// Notification is one message shown to the user.
type Notification struct {
	Kind    Kind
	Title   string
	Message string
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// Terminal writes one line per notification.
type Terminal struct {
	W io.Writer
}

// Notify prints n as "icon Title: Message".
func (t Terminal) Notify(n Notification) {
	icon, ok := icons[n.Kind]
	if !ok {
		icon = "•"
	}
	fmt.Fprintf(t.W, "%s %s: %s\n", icon, n.Title, n.Message)
}

// Action names the form an error came from; it picks the wording of
// format errors.
type Action string

const (
	ActionLogin  Action = "login"
	ActionSignup Action = "signup"
)

// FromError maps an error returned by the auth service to the
// notification shown to the user.
func FromError(action Action, err error) Notification {
	switch {
	case errors.Is(err, validation.ErrInvalidFormat):
		return Notification{Kind: Error, Title: "Error", Message: fmt.Sprintf("Invalid %s data", action)}
	case errors.Is(err, repository.ErrDuplicateEmail):
		return Notification{Kind: Error, Title: "Error", Message: "Email already exists"}
	case errors.Is(err, repository.ErrCredentialMismatch):
		return Notification{Kind: Error, Title: "Failed", Message: "Wrong email or password"}
	case errors.Is(err, service.ErrNotAuthenticated):
		return Notification{Kind: Warning, Title: "Signed out", Message: "Please log in first"}
	case errors.Is(err, storage.ErrUnavailable):
		return Notification{Kind: Error, Title: "Error", Message: "Storage is unavailable"}
	default:
		return Notification{Kind: Error, Title: "Error", Message: "Something went wrong"}
	}
}
