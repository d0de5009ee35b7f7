package notify

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/atinyakov/authdemo/internal/client/storage"
	"github.com/atinyakov/authdemo/internal/repository"
	"github.com/atinyakov/authdemo/internal/service"
	"github.com/atinyakov/authdemo/internal/validation"
)

func TestTerminal_Notify(t *testing.T) {
	var buf bytes.Buffer
	Terminal{W: &buf}.Notify(Notification{Kind: Success, Title: "Done", Message: "Account created"})

	if got, want := buf.String(), "✔️ Done: Account created\n"; got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		err     error
		kind    Kind
		message string
	}{
		{"signup format", ActionSignup, &validation.FormError{Fields: []string{"name"}}, Error, "Invalid signup data"},
		{"login format", ActionLogin, &validation.FormError{Fields: []string{"email"}}, Error, "Invalid login data"},
		{"duplicate", ActionSignup, fmt.Errorf("register: %w", repository.ErrDuplicateEmail), Error, "Email already exists"},
		{"mismatch", ActionLogin, repository.ErrCredentialMismatch, Error, "Wrong email or password"},
		{"anonymous", ActionLogin, service.ErrNotAuthenticated, Warning, "Please log in first"},
		{"storage", ActionLogin, fmt.Errorf("get: %w", storage.ErrUnavailable), Error, "Storage is unavailable"},
		{"other", ActionLogin, errors.New("boom"), Error, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := FromError(tt.action, tt.err)
			if n.Kind != tt.kind || n.Message != tt.message {
				t.Errorf("FromError = %+v; want kind %s message %q", n, tt.kind, tt.message)
			}
		})
	}
}
