// Package shell runs the interactive wrap/unwrap session.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/kelsos/xos-wrap/internal/wrap"
)

// Prompter collects answers from the user.
type Prompter interface {
	// Select returns the index of the chosen option.
	Select(message string, options []string) (int, error)
	// Input asks until validate accepts the answer.
	Input(message string, validate func(string) error) (string, error)
	Confirm(message string, def bool) (bool, error)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewPrompter returns interactive pterm prompts on a terminal and a numbered
// line based prompter otherwise.
func NewPrompter(in *os.File, out io.Writer) Prompter {
	if IsTerminal(in) {
		return PtermPrompter{}
	}
	return NewLinePrompter(in, out)
}

// PtermPrompter uses pterm's interactive select, text input and confirm.
type PtermPrompter struct{}

func (PtermPrompter) Select(message string, options []string) (int, error) {
	result, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(options[0]).
		WithMaxHeight(len(options)).
		WithFilter(false).
		Show(message)
	if err != nil {
		return -1, fmt.Errorf("menu selection failed: %w", err)
	}

	for i, option := range options {
		if option == result {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown option %q", result)
}

func (PtermPrompter) Input(message string, validate func(string) error) (string, error) {
	for {
		result, err := pterm.DefaultInteractiveTextInput.Show(message)
		if err != nil {
			return "", err
		}
		result = strings.TrimSpace(result)
		if err := validate(result); err != nil {
			pterm.Error.Println(wrap.Describe(err))
			continue
		}
		return result, nil
	}
}

func (PtermPrompter) Confirm(message string, def bool) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultValue(def).
		Show(message)
}

// LinePrompter reads numbered choices and plain answers line by line. It is
// used when stdin is not a terminal.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *LinePrompter) Select(message string, options []string) (int, error) {
	for {
		fmt.Fprintf(p.out, "\n%s\n", message)
		for i, option := range options {
			fmt.Fprintf(p.out, "%d. %s\n", i+1, option)
		}
		fmt.Fprintf(p.out, "Enter option number (1-%d): ", len(options))

		line, err := p.readLine()
		if err != nil {
			return -1, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Invalid choice: %q\n", line)
	}
}

func (p *LinePrompter) Input(message string, validate func(string) error) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", message)

		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if err := validate(line); err != nil {
			fmt.Fprintln(p.out, wrap.Describe(err))
			continue
		}
		return line, nil
	}
}

func (p *LinePrompter) Confirm(message string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}

	for {
		fmt.Fprintf(p.out, "%s %s: ", message, hint)

		line, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintf(p.out, "Please answer y or n\n")
	}
}
