package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// lineReader reads answers from stdin one line at a time.
type lineReader struct {
	src io.Reader
	buf *bufio.Reader
}

func newLineReader(src io.Reader) *lineReader {
	return &lineReader{src: src, buf: bufio.NewReader(src)}
}

// terminal returns the file behind stdin when it is an interactive terminal.
func (l *lineReader) terminal() (*os.File, bool) {
	f, ok := l.src.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return nil, false
	}
	return f, true
}

// Line reads one line without its newline. A last line without
// newline is returned as is; io.EOF only comes back on empty input.
func (l *lineReader) Line() (string, error) {
	s, err := l.buf.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Password reads a secret, without echo when stdin is a terminal.
func (l *lineReader) Password(out io.Writer) (string, error) {
	if f, ok := l.terminal(); ok {
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return l.Line()
}

// ask prints prompt and reads the answer.
func (e *env) ask(prompt string) (string, error) {
	fmt.Fprint(e.Stderr, prompt)
	s, err := e.in.Line()
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(s), nil
}

// confirm asks a yes/no question; anything but y or yes is no.
func (e *env) confirm(question string) bool {
	ans, err := e.ask(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true
	}
	return false
}
