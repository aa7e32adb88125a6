package focus

import (
	"log/slog"

	"github.com/1broseidon/remotefocus/internal/platform"
)

// Escalator repeatedly requests foreground for a window and verifies it.
type Escalator struct {
	ctl      platform.WindowController
	kb       platform.Keyboard
	verifier *Verifier
	clock    Clock
	nudge    platform.Chord
	logger   *slog.Logger
}

// EscalatorConfig wires an Escalator.
type EscalatorConfig struct {
	Controller platform.WindowController
	Keyboard   platform.Keyboard
	Verifier   *Verifier
	Clock      Clock
	// Nudge is tapped after every focus request. Remote-display clients
	// often do not commit a focus change until a key event follows it.
	// Defaults to Enter.
	Nudge  platform.Chord
	Logger *slog.Logger
}

func NewEscalator(cfg EscalatorConfig) *Escalator {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	nudge := cfg.Nudge
	if len(nudge) == 0 {
		nudge = platform.Chord{platform.KeyEnter}
	}
	return &Escalator{
		ctl:      cfg.Controller,
		kb:       cfg.Keyboard,
		verifier: cfg.Verifier,
		clock:    clock,
		nudge:    nudge,
		logger:   orDiscard(cfg.Logger),
	}
}

// Acquire runs restore/maximize/activate/nudge cycles until target is the
// foreground window or b is exhausted. No new cycle starts once b.Timeout has
// elapsed, so the overrun is bounded by one cycle.
func (e *Escalator) Acquire(target Descriptor, b Budget) Result {
	start := e.clock.Now()
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if e.clock.Now().Sub(start) >= b.Timeout {
			break
		}
		e.Cycle(target)
		e.clock.Sleep(b.Pause)
		if e.verifier.IsForeground(target.Handle) {
			e.logger.Debug("window focused", "window", target.Handle, "attempt", attempt)
			return Focused
		}
	}
	e.logger.Debug("direct focus exhausted", "window", target.Handle, "max_attempts", b.MaxAttempts, "timeout", b.Timeout)
	return TimedOut
}

// Cycle issues one best-effort sequence of focus requests without verifying.
// A failing step never prevents the following ones.
func (e *Escalator) Cycle(target Descriptor) {
	h := target.Handle
	e.bestEffort("restore", h, func() error { return e.ctl.Restore(h) })
	e.bestEffort("maximize", h, func() error { return e.ctl.Maximize(h) })
	e.bestEffort("activate", h, func() error { return e.ctl.Activate(h) })
	e.bestEffort("nudge", h, func() error { return platform.Tap(e.kb, e.nudge) })
}

// Verify reports whether target currently holds the foreground.
func (e *Escalator) Verify(target Descriptor) bool {
	return e.verifier.IsForeground(target.Handle)
}

func (e *Escalator) bestEffort(step string, h platform.WindowHandle, fn func() error) {
	if err := fn(); err != nil {
		e.logger.Debug("focus step failed", "step", step, "window", h, "error", err)
	}
}
