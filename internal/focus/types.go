// Package focus implements the remote-window focus protocol: locating a
// window by title, bringing it to the foreground through escalating
// strategies, verifying the result by handle identity, and waiting on
// transient dialogs.
//
// All operations run on the calling goroutine and block through a Clock.
// There is no cancellation other than the elapsed-time budgets.
package focus

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/remotefocus/internal/platform"
)

var (
	// ErrTargetNotFound means no window matched the predicate under any source.
	ErrTargetNotFound = errors.New("target window not found")

	// ErrNotFocused means keys were withheld because focus was not confirmed.
	ErrNotFocused = errors.New("target window not focused")
)

// Result is the terminal outcome of a focus attempt.
type Result int

const (
	Focused Result = iota
	TimedOut
	TargetNotFound
)

func (r Result) String() string {
	switch r {
	case Focused:
		return "focused"
	case TimedOut:
		return "timed-out"
	case TargetNotFound:
		return "target-not-found"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Strategy names the escalation stage that produced a Result.
type Strategy string

const (
	StrategyDirect Strategy = "direct"
	StrategyAltTab Strategy = "alt-tab"
	StrategyAltEsc Strategy = "alt-esc"
)

// Predicate matches window titles case-insensitively. Every Required token
// must be present; Prefer breaks ties between several matches.
type Predicate struct {
	Required []string
	Prefer   string
}

// Match reports whether title contains all required tokens. A predicate
// without tokens matches nothing.
func (p Predicate) Match(title string) bool {
	if len(p.Required) == 0 || title == "" {
		return false
	}
	lower := strings.ToLower(title)
	for _, tok := range p.Required {
		if !strings.Contains(lower, strings.ToLower(tok)) {
			return false
		}
	}
	return true
}

// Preferred reports whether title contains the tie-break token.
func (p Predicate) Preferred(title string) bool {
	if p.Prefer == "" {
		return false
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(p.Prefer))
}

// Func returns the predicate as a plain title test.
func (p Predicate) Func() func(string) bool {
	return p.Match
}

func (p Predicate) String() string {
	s := strings.Join(p.Required, "&")
	if p.Prefer != "" {
		s += " (prefer " + p.Prefer + ")"
	}
	return s
}

// Budget bounds an escalation loop by attempts and by wall-clock time,
// whichever is reached first.
type Budget struct {
	MaxAttempts int
	Pause       time.Duration
	Timeout     time.Duration
}

// Validate rejects budgets that would loop zero times or unboundedly.
func (b Budget) Validate() error {
	if b.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1, got %d", b.MaxAttempts)
	}
	if b.Pause < 0 {
		return fmt.Errorf("pause must be >= 0, got %s", b.Pause)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %s", b.Timeout)
	}
	return nil
}

// Descriptor identifies a resolved target window and the source that found it.
type Descriptor struct {
	Handle platform.WindowHandle
	Title  string
	Source platform.Source
}

// Clock abstracts time so escalation can be tested without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}
