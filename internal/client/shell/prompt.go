package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordReader reads a password without echo.
type PasswordReader func() (string, error)

// TerminalPasswordReader returns a PasswordReader for stdin when stdin is a
// terminal, and nil otherwise.
func TerminalPasswordReader(w io.Writer) PasswordReader {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
}

// readLine prints prompt and reads one trimmed line. A final line without
// a newline is still returned.
func readLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword prompts for a password, hidden unless visible is set or no
// hidden reader is available. Input already buffered from the line reader
// is consumed first so typed-ahead lines keep their order. The value is not
// trimmed.
func (s *Shell) readPassword(prompt string) (string, error) {
	if s.showPassword || s.hidden == nil || s.in.Buffered() > 0 {
		fmt.Fprint(s.out, prompt)
		line, err := s.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(s.out, prompt)
	return s.hidden()
}
