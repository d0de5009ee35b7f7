// Package validation holds the pure format checks that gate sign-up and
// login: e-mail shape, username and password rules.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidFormat reports that one or more form fields failed validation.
var ErrInvalidFormat = errors.New("invalid format")

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Rules is a username/password rule set.
type Rules struct {
	// Name identifies the rule set in configuration.
	Name string
	// UsernamePattern, when set, must match the raw username.
	// When nil only UsernameMinLen applies, to the trimmed value.
	UsernamePattern *regexp.Regexp
	// UsernameMinLen is the minimum trimmed username length in characters.
	UsernameMinLen int
	// PasswordMinLen is the minimum password length in characters.
	PasswordMinLen int
	// PasswordMaxLen is the maximum password length; zero means unbounded.
	PasswordMaxLen int
}

var (
	// Canonical accepts any username of three or more characters and
	// passwords of at least six.
	Canonical = Rules{
		Name:           "canonical",
		UsernameMinLen: 3,
		PasswordMinLen: 6,
	}

	// Legacy is the older page's rule set: one or two alphabetic words of
	// 3-10 letters and a 5-15 character password.
	Legacy = Rules{
		Name:            "legacy",
		UsernamePattern: regexp.MustCompile(`^[A-Za-z]{3,10}(\s?[A-Za-z]{3,10})?$`),
		PasswordMinLen:  5,
		PasswordMaxLen:  15,
	}
)

// ByName returns the rule set called name. An empty name selects Canonical.
func ByName(name string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Canonical.Name:
		return Canonical, nil
	case Legacy.Name:
		return Legacy, nil
	default:
		return Rules{}, fmt.Errorf("unknown validation rules %q", name)
	}
}

// ValidUsername reports whether s satisfies the username rule.
func (r Rules) ValidUsername(s string) bool {
	if r.UsernamePattern != nil {
		return r.UsernamePattern.MatchString(s)
	}
	trimmed := strings.TrimSpace(s)
	return trimmed != "" && utf8.RuneCountInString(trimmed) >= r.UsernameMinLen
}

// ValidPassword reports whether s satisfies the password length rule.
func (r Rules) ValidPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < r.PasswordMinLen {
		return false
	}
	return r.PasswordMaxLen == 0 || n <= r.PasswordMaxLen
}

// IsValidEmail reports whether s looks like local@domain.tld: no
// whitespace, a single @, and a dot somewhere after it.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// IsValidUsername applies the Canonical username rule.
func IsValidUsername(s string) bool {
	return Canonical.ValidUsername(s)
}

// IsValidPassword applies the Canonical password rule.
func IsValidPassword(s string) bool {
	return Canonical.ValidPassword(s)
}
