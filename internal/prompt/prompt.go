// Package prompt asks the user questions on the terminal.
//
// Prompts read from any reader so they work with piped input: when stdin is
// not a terminal, secrets are read as plain lines and an exhausted input
// yields the default answer instead of blocking.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrNoAnswer is returned when input ends before an acceptable answer was
// given and there is no default to fall back to.
var ErrNoAnswer = errors.New("no answer provided")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	tty    bool
}

// New returns a Prompter. Hidden input is only used when in is a terminal.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{reader: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok {
		fd := f.Fd()
		if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			p.fd = int(fd)
			p.tty = true
		}
	}
	return p
}

// Interactive reports whether answers come from a terminal.
func (p *Prompter) Interactive() bool {
	return p.tty
}

// Ask prints question and returns the trimmed answer. An empty answer
// selects def when def is non-empty. When validate rejects an answer the
// reason is printed and the question repeated.
func (p *Prompter) Ask(question, def string, validate func(string) error) (string, error) {
	label := question
	if def != "" {
		label = fmt.Sprintf("%s (%s)", question, def)
	}
	for {
		fmt.Fprintf(p.out, "%s: ", label)
		answer, eof, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			if def != "" {
				return def, nil
			}
			if eof {
				return "", fmt.Errorf("%w: %s", ErrNoAnswer, question)
			}
			continue
		}
		if validate != nil {
			if verr := validate(answer); verr != nil {
				fmt.Fprintf(p.out, "  %v\n", verr)
				if eof {
					return "", fmt.Errorf("%w: %s", ErrNoAnswer, question)
				}
				continue
			}
		}
		return answer, nil
	}
}

// Secret asks for a value without echoing it when reading from a terminal.
func (p *Prompter) Secret(question string) (string, error) {
	if !p.tty {
		return p.Ask(question+" (input is visible)", "", nil)
	}
	for {
		fmt.Fprintf(p.out, "%s (not echoed): ", question)
		raw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		if answer := strings.TrimSpace(string(raw)); answer != "" {
			return answer, nil
		}
	}
}

// Confirm asks a yes/no question. def is used for an empty answer and when
// input ends.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
		answer, eof, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "  please answer y or n")
		if eof {
			return def, nil
		}
	}
}

// readLine returns the next trimmed line. eof reports that input ended; the
// returned error is nil in that case.
func (p *Prompter) readLine() (line string, eof bool, err error) {
	line, err = p.reader.ReadString('\n')
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
		return strings.TrimSpace(line), true, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), false, nil
}
