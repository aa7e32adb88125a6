package script

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/remotefocus/internal/actionlog"
	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
)

// ErrWaitTimeout means a non-optional wait step timed out.
var ErrWaitTimeout = errors.New("transient window wait timed out")

// Driver is the subset of focus.Driver the runner needs.
type Driver interface {
	Focus(p focus.Predicate) focus.Outcome
	Send(p focus.Predicate, chords []platform.Chord) (focus.Outcome, error)
	WaitAppear(p focus.Predicate, o focus.WaitOptions) bool
	WaitGone(p focus.Predicate, o focus.WaitOptions) bool
	Clock() focus.Clock
}

// StepError reports which step stopped the script.
type StepError struct {
	Index int
	Kind  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes scripts. Resolve maps target names to predicates; Confirm
// handles pause steps and may be nil when pauses should be skipped.
type Runner struct {
	Driver  Driver
	Resolve func(name string) focus.Predicate
	Confirm func(message string) error
	Logger  *slog.Logger
	Journal *actionlog.Logger
}

// Run executes every step in order and stops at the first failure.
func (r *Runner) Run(s *Script) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("script", s.Name)

	start := r.Driver.Clock().Now()
	r.Journal.Log(actionlog.ActionScript, s.Target, map[string]any{"name": s.Name, "steps": len(s.Steps), "event": "start"})

	for i := range s.Steps {
		st := &s.Steps[i]
		logger.Debug("script step", "index", i+1, "kind", st.Kind())
		if err := r.step(s, st); err != nil {
			serr := &StepError{Index: i + 1, Kind: st.Kind(), Err: err}
			logger.Warn("script stopped", "error", serr)
			r.Journal.Log(actionlog.ActionScript, s.Target, map[string]any{"name": s.Name, "event": "failed", "step": i + 1, "error": err.Error()})
			return serr
		}
	}

	elapsed := r.Driver.Clock().Now().Sub(start)
	logger.Info("script finished", "steps", len(s.Steps), "elapsed", elapsed)
	r.Journal.Log(actionlog.ActionScript, s.Target, map[string]any{"name": s.Name, "event": "done", "elapsed": elapsed.String()})
	return nil
}

func (r *Runner) step(s *Script, st *Step) error {
	switch st.Kind() {
	case "focus":
		name := *st.Focus
		if name == "" {
			name = s.Target
		}
		out := r.Driver.Focus(r.Resolve(name))
		if out.Result != focus.Focused {
			return outcomeErr(out)
		}
		return nil

	case "keys":
		chords := st.chords
		if st.Repeat > 1 {
			chords = make([]platform.Chord, 0, len(st.chords)*st.Repeat)
			for i := 0; i < st.Repeat; i++ {
				chords = append(chords, st.chords...)
			}
		}
		_, err := r.Driver.Send(r.Resolve(s.Target), chords)
		return err

	case "wait":
		w := st.Wait
		ok := r.Driver.WaitAppear(r.Resolve(w.Target), focus.WaitOptions{
			Timeout: w.duration(w.Timeout),
			Poll:    w.duration(w.Poll),
			Dismiss: w.dismiss,
		})
		if !ok && !w.Optional {
			return fmt.Errorf("%w: %s did not appear", ErrWaitTimeout, w.Target)
		}
		return nil

	case "wait_gone":
		w := st.WaitGone
		ok := r.Driver.WaitGone(r.Resolve(w.Target), focus.WaitOptions{
			Timeout: w.duration(w.Timeout),
			Poll:    w.duration(w.Poll),
		})
		if !ok && !w.Optional {
			return fmt.Errorf("%w: %s still open", ErrWaitTimeout, w.Target)
		}
		return nil

	case "pause":
		r.Journal.Log(actionlog.ActionPause, s.Target, map[string]any{"message": *st.Pause})
		if r.Confirm == nil {
			return nil
		}
		return r.Confirm(strings.TrimSpace(*st.Pause))

	case "sleep":
		r.Driver.Clock().Sleep(st.Sleep.Std())
		return nil
	}
	return fmt.Errorf("unknown step")
}

func outcomeErr(out focus.Outcome) error {
	if out.Result == focus.TargetNotFound {
		return focus.ErrTargetNotFound
	}
	return fmt.Errorf("%w: %s via %s after %s", focus.ErrNotFocused, out.Result, out.Strategy, out.Elapsed)
}
