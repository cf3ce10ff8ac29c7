package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads credentials interactively. Replaced in tests.
type prompter interface {
	ReadLine(label string) (string, error)
	ReadSecret(label string) (string, error)
}

type terminalPrompter struct {
	in  io.Reader
	out io.Writer
}

var defaultPrompter prompter = terminalPrompter{in: os.Stdin, out: os.Stderr}

func (p terminalPrompter) ReadLine(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret hides input when stdin is a terminal and falls back to a plain
// line read otherwise (piped input).
func (p terminalPrompter) ReadSecret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.ReadLine(label)
	}
	fmt.Fprint(p.out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// credentials fills the missing email and password through p.
func credentials(p prompter, email, password string) (string, string, error) {
	var err error
	if email == "" {
		if email, err = p.ReadLine("Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = p.ReadSecret("Password: "); err != nil {
			return "", "", err
		}
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}
