package client

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from the user. Passwords are read without echo
// when stdin is a terminal.
type Prompter struct {
	In  *bufio.Scanner
	Out io.Writer
	// ReadPassword reads a line without echo. Nil falls back to In.
	ReadPassword func() (string, error)
}

// NewPrompter creates a Prompter on in/out. When in is the process stdin
// attached to a terminal, passwords are read with echo disabled.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{In: bufio.NewScanner(in), Out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.ReadPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

// Line prints label and returns the next trimmed input line.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.Out, label)
	if !p.In.Scan() {
		if err := p.In.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.In.Text()), nil
}

// Password prints label and reads a secret.
func (p *Prompter) Password(label string) (string, error) {
	if p.ReadPassword == nil {
		return p.Line(label)
	}
	fmt.Fprint(p.Out, label)
	return p.ReadPassword()
}
