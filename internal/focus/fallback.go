package focus

import (
	"log/slog"
	"time"

	"github.com/1broseidon/remotefocus/internal/platform"
)

// SwitchFallback cycles the OS window-switch order with a held modifier and
// retries the direct focus steps after each switch.
//
// With Escalating set, attempt n presses the switch key n times while the
// modifier is held (Alt+Tab x n). This assumes the target moves further back
// in the most-recently-used order on each attempt, which no OS guarantees.
// Without it every attempt presses the key once (Alt+Esc).
type SwitchFallback struct {
	strategy   Strategy
	modifier   platform.Key
	switchKey  platform.Key
	escalating bool

	esc    *Escalator
	kb     platform.Keyboard
	clock  Clock
	settle time.Duration
	logger *slog.Logger
}

// FallbackConfig holds the collaborators shared by both fallbacks.
type FallbackConfig struct {
	Escalator *Escalator
	Keyboard  platform.Keyboard
	Clock     Clock
	// Settle is the pause between the switch keys and the focus steps.
	Settle time.Duration
	Logger *slog.Logger
}

// NewAltTabFallback returns the escalating Alt+Tab fallback.
func NewAltTabFallback(cfg FallbackConfig) *SwitchFallback {
	return newSwitchFallback(cfg, StrategyAltTab, platform.KeyTab, true)
}

// NewAltEscFallback returns the single-press Alt+Esc fallback.
func NewAltEscFallback(cfg FallbackConfig) *SwitchFallback {
	return newSwitchFallback(cfg, StrategyAltEsc, platform.KeyEsc, false)
}

func newSwitchFallback(cfg FallbackConfig, s Strategy, key platform.Key, escalating bool) *SwitchFallback {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &SwitchFallback{
		strategy:   s,
		modifier:   platform.KeyAlt,
		switchKey:  key,
		escalating: escalating,
		esc:        cfg.Escalator,
		kb:         cfg.Keyboard,
		clock:      clock,
		settle:     cfg.Settle,
		logger:     orDiscard(cfg.Logger).With("strategy", string(s)),
	}
}

func (f *SwitchFallback) Strategy() Strategy { return f.strategy }

// Escalate switches windows and re-runs the focus steps until target is
// verified foreground or b is exhausted.
func (f *SwitchFallback) Escalate(target Descriptor, b Budget) Result {
	start := f.clock.Now()
	for attempt := 1; attempt <= b.MaxAttempts; attempt++ {
		if f.clock.Now().Sub(start) >= b.Timeout {
			break
		}
		presses := 1
		if f.escalating {
			presses = attempt
		}
		if err := f.switchWindows(presses); err != nil {
			f.logger.Debug("window switch failed", "attempt", attempt, "error", err)
		}
		f.clock.Sleep(f.settle)
		f.esc.Cycle(target)
		f.clock.Sleep(b.Pause)
		if f.esc.Verify(target) {
			f.logger.Debug("window focused", "window", target.Handle, "attempt", attempt, "presses", presses)
			return Focused
		}
	}
	return TimedOut
}

// switchWindows holds the modifier, taps the switch key n times, and always
// releases the modifier.
func (f *SwitchFallback) switchWindows(n int) error {
	if err := f.kb.KeyDown(f.modifier); err != nil {
		return err
	}
	var firstErr error
	for i := 0; i < n; i++ {
		if err := platform.Tap(f.kb, platform.Chord{f.switchKey}); err != nil {
			firstErr = err
			break
		}
	}
	if err := f.kb.KeyUp(f.modifier); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
