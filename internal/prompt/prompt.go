// Package prompt blocks for an operator keypress between automation steps.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the operator cancels instead of confirming.
var ErrAborted = errors.New("aborted by operator")

type answer int

const (
	answerNone answer = iota
	answerConfirm
	answerAbort
)

// F8 as sent by xterm-compatible terminals in raw mode.
const seqF8 = "\x1b[19~"

// decodeKey classifies one raw read from the terminal.
func decodeKey(b []byte) answer {
	s := string(b)
	switch {
	case s == "":
		return answerNone
	case strings.HasPrefix(s, seqF8):
		return answerConfirm
	case s[0] == '\r' || s[0] == '\n':
		return answerConfirm
	case s == "\x1b", s[0] == 0x03, s[0] == 'q', s[0] == 'Q':
		return answerAbort
	default:
		return answerNone
	}
}

// Confirm prints message and waits for Enter or F8. Esc, q or Ctrl+C abort
// with ErrAborted. When in is not a terminal a whole line is read instead:
// an empty line or "y" confirms, anything else aborts.
func Confirm(in *os.File, out io.Writer, message string) error {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprintf(out, "%s [Enter to continue, q to abort] ", message)
		return confirmLine(in)
	}

	fmt.Fprintf(out, "%s [Enter/F8 to continue, Esc to abort] ", message)
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(out, "\r\n")
	}()

	buf := make([]byte, 16)
	for {
		n, err := in.Read(buf)
		if err != nil {
			return err
		}
		switch decodeKey(buf[:n]) {
		case answerConfirm:
			return nil
		case answerAbort:
			return ErrAborted
		}
	}
}

func confirmLine(r io.Reader) error {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return ErrAborted
		}
		return err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return nil
	default:
		return ErrAborted
	}
}
