package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoPassword is returned when no bot password could be read.
var ErrNoPassword = errors.New("no bot password entered")

// PasswordPrompt returns a func asking for the bot password of username.
// On a terminal the password is read without echo; otherwise a single
// line is read from stdin so the password can be piped in.
func PasswordPrompt(username string) func() (string, error) {
	return func() (string, error) {
		return readPassword(os.Stdin, os.Stderr, username)
	}
}

func readPassword(in *os.File, out io.Writer, username string) (string, error) {
	var password string
	if term.IsTerminal(int(in.Fd())) {
		fmt.Fprintf(out, "Bot password for %s: ", username)
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		password = line
	}

	password = strings.TrimSpace(password)
	if password == "" {
		return "", ErrNoPassword
	}
	return password, nil
}
