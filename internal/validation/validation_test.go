package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"bob@x.com", true},
		{"first.last@sub.example.org", true},
		{"a@b.c", true},
		{"bob.x.com", false},
		{"bob@xcom", false},
		{"bob@x.", false},
		{"@x.com", false},
		{"bob@@x.com", false},
		{"b ob@x.com", false},
		{"bob@x.com ", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidEmail(tt.in); got != tt.want {
			t.Errorf("IsValidEmail(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Bob", true},
		{"bob_99", true},
		{"Mary Jane Watson", true},
		{"  Al  ", false},
		{"   ", false},
		{"", false},
		{"Zoë", true},
	}
	for _, tt := range tests {
		if got := IsValidUsername(tt.in); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalPassword(t *testing.T) {
	assert.False(t, IsValidPassword(""))
	assert.False(t, IsValidPassword("12345"))
	assert.True(t, IsValidPassword("secret"))
	assert.True(t, IsValidPassword("a-very-long-passphrase-without-limit"))
}

func TestLegacyRules(t *testing.T) {
	assert.True(t, Legacy.ValidUsername("Bob"))
	assert.True(t, Legacy.ValidUsername("Mary Jane"))
	assert.True(t, Legacy.ValidUsername("MaryJane"))
	assert.False(t, Legacy.ValidUsername("bob_99"))
	assert.False(t, Legacy.ValidUsername("Al"))
	assert.False(t, Legacy.ValidUsername("Mary Jane Watson"))

	assert.True(t, Legacy.ValidPassword("12345"))
	assert.True(t, Legacy.ValidPassword("123456789012345"))
	assert.False(t, Legacy.ValidPassword("1234"))
	assert.False(t, Legacy.ValidPassword("1234567890123456"))
}

func TestPredicatesArePure(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.True(t, IsValidEmail("bob@x.com"))
		assert.False(t, IsValidPassword("short"))
	}
}

func TestByName(t *testing.T) {
	r, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, Canonical.Name, r.Name)

	r, err = ByName(" Legacy ")
	require.NoError(t, err)
	assert.Equal(t, Legacy.Name, r.Name)

	_, err = ByName("strictest")
	require.Error(t, err)
}

func TestChecker_CheckSignup(t *testing.T) {
	c := NewChecker(Canonical)

	require.NoError(t, c.CheckSignup(SignupForm{Name: "Bob", Email: "bob@x.com", Password: "secret1"}))

	err := c.CheckSignup(SignupForm{Name: "Bo", Email: "bob", Password: "secret1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidFormat))

	var fe *FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"name", "email"}, fe.Fields)
	assert.True(t, fe.Has("email"))
	assert.False(t, fe.Has("password"))
	assert.Equal(t, "invalid format: name, email", err.Error())
}

func TestChecker_UsesConfiguredRules(t *testing.T) {
	form := SignupForm{Name: "Bob", Email: "bob@x.com", Password: "12345"}

	assert.Error(t, NewChecker(Canonical).CheckSignup(form))
	assert.NoError(t, NewChecker(Legacy).CheckSignup(form))
	assert.Equal(t, Legacy.Name, NewChecker(Legacy).Rules().Name)
}

func TestChecker_CheckLogin(t *testing.T) {
	c := NewChecker(Canonical)

	// login does not re-apply the sign-up password rule
	require.NoError(t, c.CheckLogin(LoginForm{Email: "bob@x.com", Password: "x"}))

	err := c.CheckLogin(LoginForm{Email: "bob@x.com"})
	var fe *FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"password"}, fe.Fields)

	err = c.CheckLogin(LoginForm{})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, []string{"email", "password"}, fe.Fields)
}
