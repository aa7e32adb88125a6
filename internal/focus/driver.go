package focus

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/remotefocus/internal/actionlog"
	"github.com/1broseidon/remotefocus/internal/platform"
)

// Budgets holds one retry budget per escalation stage. A fallback stage with
// MaxAttempts 0 is skipped.
type Budgets struct {
	Direct Budget
	AltTab Budget
	AltEsc Budget
}

// Options configures a Driver. Zero durations are used as-is; callers
// normally fill Options from the loaded configuration.
type Options struct {
	Budgets Budgets

	// FallbackSettle is slept between the direct stage and the first
	// window-switch fallback.
	FallbackSettle time.Duration
	// SwitchSettle is slept after each Alt+key window switch.
	SwitchSettle time.Duration
	// KeyDelay is slept after every chord Send taps.
	KeyDelay time.Duration
	Nudge    platform.Chord

	WatchTimeout  time.Duration
	PollInterval  time.Duration
	DismissSettle time.Duration

	Clock   Clock
	Logger  *slog.Logger
	Journal *actionlog.Logger
}

// Stage records one escalation stage of a Focus call.
type Stage struct {
	Strategy Strategy
	Result   Result
	Elapsed  time.Duration
}

// Outcome is the result of a Focus call along with how it was reached.
type Outcome struct {
	Result   Result
	Strategy Strategy
	Target   Descriptor
	Stages   []Stage
	Elapsed  time.Duration
}

// Driver runs the full focus protocol against one backend. Targets are
// resolved fresh on every call.
type Driver struct {
	backend  platform.Backend
	matcher  *Matcher
	verifier *Verifier
	esc      *Escalator
	altTab   *SwitchFallback
	altEsc   *SwitchFallback
	watcher  *Watcher

	opts    Options
	clock   Clock
	logger  *slog.Logger
	journal *actionlog.Logger
}

func NewDriver(backend platform.Backend, opts Options) *Driver {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	logger := orDiscard(opts.Logger)

	matcher := NewMatcher(backend, logger)
	verifier := NewVerifier(backend)
	esc := NewEscalator(EscalatorConfig{
		Controller: backend,
		Keyboard:   backend,
		Verifier:   verifier,
		Clock:      clock,
		Nudge:      opts.Nudge,
		Logger:     logger,
	})
	fb := FallbackConfig{
		Escalator: esc,
		Keyboard:  backend,
		Clock:     clock,
		Settle:    opts.SwitchSettle,
		Logger:    logger,
	}

	return &Driver{
		backend:  backend,
		matcher:  matcher,
		verifier: verifier,
		esc:      esc,
		altTab:   NewAltTabFallback(fb),
		altEsc:   NewAltEscFallback(fb),
		watcher: NewWatcher(WatcherConfig{
			Matcher:       matcher,
			Keyboard:      backend,
			Clock:         clock,
			DismissSettle: opts.DismissSettle,
			Logger:        logger,
		}),
		opts:    opts,
		clock:   clock,
		logger:  logger,
		journal: opts.Journal,
	}
}

// Find resolves p without touching window state.
func (d *Driver) Find(p Predicate) (Descriptor, error) {
	return d.matcher.Find(p)
}

// List enumerates visible windows under every source.
func (d *Driver) List() []Listing {
	return d.matcher.List()
}

// Focus brings the window matching p to the foreground, escalating
// direct -> alt-tab -> alt-esc -> one final direct cycle.
func (d *Driver) Focus(p Predicate) Outcome {
	start := d.clock.Now()
	out := d.focus(p, start)
	out.Elapsed = d.clock.Now().Sub(start)

	d.logger.Info("focus finished",
		"predicate", p.String(),
		"result", out.Result.String(),
		"strategy", string(out.Strategy),
		"window", out.Target.Handle,
		"elapsed", out.Elapsed,
	)
	d.journal.Log(actionlog.ActionFocus, p.String(), map[string]any{
		"result":   out.Result,
		"strategy": string(out.Strategy),
		"title":    out.Target.Title,
		"stages":   len(out.Stages),
		"elapsed":  out.Elapsed.Round(time.Millisecond).String(),
	})
	return out
}

func (d *Driver) focus(p Predicate, start time.Time) Outcome {
	target, err := d.matcher.Find(p)
	if err != nil {
		return Outcome{Result: TargetNotFound, Strategy: StrategyDirect}
	}
	out := Outcome{Target: target}

	if d.verifier.IsForeground(target.Handle) {
		out.record(StrategyDirect, Focused, 0)
		return out
	}

	if d.stage(&out, StrategyDirect, func() Result {
		return d.esc.Acquire(target, d.opts.Budgets.Direct)
	}) {
		return out
	}

	d.clock.Sleep(d.opts.FallbackSettle)

	for _, fb := range []struct {
		f *SwitchFallback
		b Budget
		a actionlog.Action
	}{
		{d.altTab, d.opts.Budgets.AltTab, actionlog.ActionAltTab},
		{d.altEsc, d.opts.Budgets.AltEsc, actionlog.ActionAltEsc},
	} {
		if fb.b.MaxAttempts <= 0 {
			continue
		}
		ok := d.stage(&out, fb.f.Strategy(), func() Result {
			return fb.f.Escalate(target, fb.b)
		})
		d.journal.Log(fb.a, p.String(), map[string]any{"result": out.Result})
		if ok {
			return out
		}
	}

	d.stage(&out, StrategyDirect, func() Result {
		d.esc.Cycle(target)
		d.clock.Sleep(d.opts.Budgets.Direct.Pause)
		if d.esc.Verify(target) {
			return Focused
		}
		return TimedOut
	})
	return out
}

// stage runs one escalation stage, records it and reports success.
func (d *Driver) stage(out *Outcome, s Strategy, run func() Result) bool {
	t0 := d.clock.Now()
	r := run()
	elapsed := d.clock.Now().Sub(t0)
	out.record(s, r, elapsed)
	d.logger.Debug("focus stage", "strategy", string(s), "result", r.String(), "elapsed", elapsed)
	return r == Focused
}

func (o *Outcome) record(s Strategy, r Result, elapsed time.Duration) {
	o.Stages = append(o.Stages, Stage{Strategy: s, Result: r, Elapsed: elapsed})
	o.Result = r
	o.Strategy = s
}

// Send focuses the window matching p and taps each chord in order, sleeping
// KeyDelay after each. Nothing is typed unless focus was verified; the
// returned error then wraps ErrNotFocused.
func (d *Driver) Send(p Predicate, chords []platform.Chord) (Outcome, error) {
	out := d.Focus(p)
	switch out.Result {
	case Focused:
	case TargetNotFound:
		return out, fmt.Errorf("%w: %w", ErrNotFocused, ErrTargetNotFound)
	default:
		return out, fmt.Errorf("%w: %s after %s", ErrNotFocused, out.Result, out.Elapsed)
	}

	for i, c := range chords {
		if err := platform.Tap(d.backend, c); err != nil {
			return out, fmt.Errorf("send %s (chord %d): %w", c, i+1, err)
		}
		d.clock.Sleep(d.opts.KeyDelay)
	}
	d.journal.Log(actionlog.ActionSend, p.String(), map[string]any{
		"keys":   chordList(chords),
		"window": out.Target.Title,
	})
	return out, nil
}

// WaitOptions overrides the configured watch defaults. Zero fields keep the
// defaults.
type WaitOptions struct {
	Timeout time.Duration
	Poll    time.Duration
	Dismiss platform.Chord
}

func (d *Driver) waitParams(o WaitOptions) (time.Duration, time.Duration) {
	timeout, poll := o.Timeout, o.Poll
	if timeout <= 0 {
		timeout = d.opts.WatchTimeout
	}
	if poll <= 0 {
		poll = d.opts.PollInterval
	}
	return timeout, poll
}

// WaitAppear blocks until a window matching p exists, optionally dismissing it.
func (d *Driver) WaitAppear(p Predicate, o WaitOptions) bool {
	timeout, poll := d.waitParams(o)
	ok := d.watcher.WaitForAppearance(p, timeout, poll, o.Dismiss)
	d.logger.Info("wait for window", "predicate", p.String(), "appeared", ok, "timeout", timeout)
	d.journal.Log(actionlog.ActionWaitAppear, p.String(), map[string]any{"appeared": ok, "timeout": timeout.String()})
	if ok && len(o.Dismiss) > 0 {
		d.journal.Log(actionlog.ActionDismiss, p.String(), map[string]any{"keys": o.Dismiss.String()})
	}
	return ok
}

// WaitGone blocks until no window matches p.
func (d *Driver) WaitGone(p Predicate, o WaitOptions) bool {
	timeout, poll := d.waitParams(o)
	ok := d.watcher.WaitForDisappearance(p, timeout, poll)
	d.logger.Info("wait for window to close", "predicate", p.String(), "gone", ok, "timeout", timeout)
	d.journal.Log(actionlog.ActionWaitGone, p.String(), map[string]any{"gone": ok, "timeout": timeout.String()})
	return ok
}

// Clock returns the clock the driver sleeps on.
func (d *Driver) Clock() Clock { return d.clock }

func chordList(chords []platform.Chord) string {
	s := ""
	for i, c := range chords {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s
}
