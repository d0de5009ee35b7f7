// Package shell is the interactive front end of the demo: it reads
// commands and form fields, calls the auth service and shows the result
// as notifications and screens.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/authdemo/internal/models"
	"github.com/atinyakov/authdemo/internal/notify"
	"github.com/atinyakov/authdemo/internal/validation"
	"go.uber.org/zap"
)

// Auth is the authentication surface the shell drives.
type Auth interface {
	SignUp(ctx context.Context, name, email, password string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	Welcome(ctx context.Context) (*models.Session, error)
}

// Preferences is the theme surface the shell drives.
type Preferences interface {
	Theme(ctx context.Context) (models.Theme, error)
	ToggleTheme(ctx context.Context) (models.Theme, error)
}

// Screen is the page the shell currently shows.
type Screen string

const (
	ScreenLogin   Screen = "login"
	ScreenSignup  Screen = "signup"
	ScreenWelcome Screen = "welcome"
)

const helpText = `Available commands:
  signup              create an account
  login               log in
  whoami              show the welcome screen
  logout              log out
  theme               switch between light and dark
  password show|hide  toggle password visibility
  help                show this help
  exit                leave`

// Shell is a line-oriented UI over the auth service.
type Shell struct {
	auth     Auth
	prefs    Preferences
	notifier notify.Notifier
	log      *zap.Logger

	in     *bufio.Reader
	out    io.Writer
	hidden PasswordReader

	showPassword bool
	screen       Screen
}

// Config bundles the collaborators of a Shell.
type Config struct {
	Auth        Auth
	Preferences Preferences
	Notifier    notify.Notifier
	Logger      *zap.Logger
	In          io.Reader
	Out         io.Writer
	// Hidden reads passwords without echo; nil always echoes.
	Hidden PasswordReader
}

// New creates a Shell starting on the login screen.
func New(cfg Config) *Shell {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Terminal{W: cfg.Out}
	}
	return &Shell{
		auth:     cfg.Auth,
		prefs:    cfg.Preferences,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
		in:       bufio.NewReader(cfg.In),
		out:      cfg.Out,
		hidden:   cfg.Hidden,
		screen:   ScreenLogin,
	}
}

// Screen returns the current screen.
func (s *Shell) Screen() Screen { return s.screen }

// Run reads commands until exit, end of input or cancellation.
func (s *Shell) Run(ctx context.Context) error {
	// An existing session opens straight on the welcome screen.
	if sess, err := s.auth.Welcome(ctx); err == nil {
		s.showWelcome(sess)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := readLine(s.in, s.out, s.prompt(ctx))
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if done := s.dispatch(ctx, args); done {
			return nil
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, args []string) (exit bool) {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "signup":
		s.signup(ctx)
	case "login":
		s.login(ctx)
	case "whoami", "welcome":
		s.welcome(ctx)
	case "logout":
		s.logout(ctx)
	case "theme":
		s.toggleTheme(ctx)
	case "password":
		s.togglePassword(args[1:])
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) signup(ctx context.Context) {
	s.screen = ScreenSignup
	name, err := readLine(s.in, s.out, "Name: ")
	if err != nil {
		return
	}
	email, err := readLine(s.in, s.out, "Email: ")
	if err != nil {
		return
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return
	}

	sess, err := s.auth.SignUp(ctx, name, email, password)
	if err != nil {
		s.fail(notify.ActionSignup, err)
		return
	}

	s.notifier.Notify(notify.Notification{Kind: notify.Success, Title: "Done", Message: "Account created"})
	if sess != nil {
		s.showWelcome(sess)
		return
	}
	s.screen = ScreenLogin
}

func (s *Shell) login(ctx context.Context) {
	s.screen = ScreenLogin
	email, err := readLine(s.in, s.out, "Email: ")
	if err != nil {
		return
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		return
	}

	sess, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.fail(notify.ActionLogin, err)
		return
	}

	s.notifier.Notify(notify.Notification{Kind: notify.Success, Title: "Welcome", Message: "Login successful"})
	s.showWelcome(sess)
}

func (s *Shell) welcome(ctx context.Context) {
	sess, err := s.auth.Welcome(ctx)
	if err != nil {
		s.fail(notify.ActionLogin, err)
		s.screen = ScreenLogin
		return
	}
	s.showWelcome(sess)
}

func (s *Shell) logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.fail(notify.ActionLogin, err)
		return
	}
	s.notifier.Notify(notify.Notification{Kind: notify.Success, Title: "Logged out", Message: "Goodbye 👋"})
	s.screen = ScreenLogin
}

func (s *Shell) toggleTheme(ctx context.Context) {
	theme, err := s.prefs.ToggleTheme(ctx)
	if err != nil {
		s.fail(notify.ActionLogin, err)
		return
	}
	if theme == models.ThemeDark {
		fmt.Fprintln(s.out, "Theme: dark (switch to light mode with 'theme')")
	} else {
		fmt.Fprintln(s.out, "Theme: light (switch to dark mode with 'theme')")
	}
}

func (s *Shell) togglePassword(args []string) {
	switch {
	case len(args) == 0:
		s.showPassword = !s.showPassword
	case args[0] == "show":
		s.showPassword = true
	case args[0] == "hide":
		s.showPassword = false
	default:
		fmt.Fprintln(s.out, "Usage: password [show|hide]")
		return
	}
	if s.showPassword {
		fmt.Fprintln(s.out, "Passwords are shown while typing")
	} else {
		fmt.Fprintln(s.out, "Passwords are hidden while typing")
	}
}

func (s *Shell) showWelcome(sess *models.Session) {
	s.screen = ScreenWelcome
	fmt.Fprintf(s.out, "Welcome, %s!\n", sess.Username)
	if sess.LoginTime != "" {
		fmt.Fprintf(s.out, "Logged in at %s\n", sess.LoginTime)
	}
}

// fail shows err as a notification, plus one line per invalid field.
func (s *Shell) fail(action notify.Action, err error) {
	s.notifier.Notify(notify.FromError(action, err))

	var fe *validation.FormError
	if errors.As(err, &fe) {
		for _, f := range fe.Fields {
			fmt.Fprintf(s.out, "  ✗ %s is invalid\n", f)
		}
		return
	}
	if !errors.Is(err, validation.ErrInvalidFormat) {
		s.log.Debug("command failed", zap.String("action", string(action)), zap.Error(err))
	}
}

func (s *Shell) prompt(ctx context.Context) string {
	theme, err := s.prefs.Theme(ctx)
	if err != nil {
		theme = models.ThemeLight
	}
	label := fmt.Sprintf("authdemo [%s]> ", s.screen)
	if theme == models.ThemeDark {
		return "\x1b[97;40m" + label + "\x1b[0m"
	}
	return label
}
