package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoTerminal is returned when a hidden prompt is requested but stdin is
// not a terminal.
var ErrNoTerminal = errors.New("stdin is not a terminal: pass the secret as 'token <secret>' instead")

// readPassword and isTerminal are test seams for golang.org/x/term.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// GetSecret prints a prompt to w and reads the token secret from the
// terminal without echo. A newline is printed after the read to keep the
// UI tidy.
func GetSecret(w io.Writer) (string, error) {
	fd := stdinFd()
	if !isTerminal(fd) {
		return "", ErrNoTerminal
	}

	if _, err := fmt.Fprint(w, "Enter token secret: "); err != nil {
		return "", err
	}
	secret, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
