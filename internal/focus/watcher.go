package focus

import (
	"log/slog"
	"time"

	"github.com/1broseidon/remotefocus/internal/platform"
)

// Watcher polls for transient windows (dialogs, confirmation popups).
type Watcher struct {
	matcher *Matcher
	kb      platform.Keyboard
	clock   Clock
	settle  time.Duration
	logger  *slog.Logger
}

// WatcherConfig wires a Watcher.
type WatcherConfig struct {
	Matcher  *Matcher
	Keyboard platform.Keyboard
	Clock    Clock
	// DismissSettle is waited before the dismiss chord, since dialogs often
	// render before their controls accept input.
	DismissSettle time.Duration
	Logger        *slog.Logger
}

func NewWatcher(cfg WatcherConfig) *Watcher {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Watcher{
		matcher: cfg.Matcher,
		kb:      cfg.Keyboard,
		clock:   clock,
		settle:  cfg.DismissSettle,
		logger:  orDiscard(cfg.Logger),
	}
}

// WaitForAppearance polls until a window matching p exists or timeout
// elapses. When dismiss is non-empty it is tapped once after the settle
// delay. Timeout is reported as false, never as an error.
func (w *Watcher) WaitForAppearance(p Predicate, timeout, poll time.Duration, dismiss platform.Chord) bool {
	if !w.poll(timeout, poll, func() bool { return w.matcher.Exists(p) }) {
		w.logger.Debug("transient window did not appear", "predicate", p.String(), "timeout", timeout)
		return false
	}
	if len(dismiss) > 0 {
		w.clock.Sleep(w.settle)
		if err := platform.Tap(w.kb, dismiss); err != nil {
			w.logger.Debug("dismiss failed", "predicate", p.String(), "keys", dismiss.String(), "error", err)
		}
	}
	return true
}

// WaitForDisappearance polls until no window matches p or timeout elapses.
func (w *Watcher) WaitForDisappearance(p Predicate, timeout, poll time.Duration) bool {
	ok := w.poll(timeout, poll, func() bool { return !w.matcher.Exists(p) })
	if !ok {
		w.logger.Debug("transient window still present", "predicate", p.String(), "timeout", timeout)
	}
	return ok
}

// poll checks cond immediately and then every interval, clipping the last
// sleep to the deadline.
func (w *Watcher) poll(timeout, interval time.Duration, cond func() bool) bool {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := w.clock.Now().Add(timeout)
	for {
		if cond() {
			return true
		}
		remaining := deadline.Sub(w.clock.Now())
		if remaining <= 0 {
			return false
		}
		if remaining < interval {
			w.clock.Sleep(remaining)
		} else {
			w.clock.Sleep(interval)
		}
	}
}
