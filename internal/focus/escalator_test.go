package focus

import (
	"testing"
	"time"

	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/platform/platformtest"
)

func newTestEscalator(desk *platformtest.Desktop, clock *platformtest.Clock) *Escalator {
	return NewEscalator(EscalatorConfig{
		Controller: desk,
		Keyboard:   desk,
		Verifier:   NewVerifier(desk),
		Clock:      clock,
	})
}

func TestAcquire_NeverExistingTargetTimesOutAfterMaxAttempts(t *testing.T) {
	desk := platformtest.NewDesktop()
	clock := platformtest.NewClock()
	esc := newTestEscalator(desk, clock)

	got := esc.Acquire(Descriptor{Handle: 999}, Budget{MaxAttempts: 4, Pause: 200 * time.Millisecond, Timeout: time.Minute})
	if got != TimedOut {
		t.Fatalf("Acquire() = %v, want TimedOut", got)
	}
	for _, op := range []string{"restore", "maximize", "activate"} {
		if n := desk.Count(op); n != 4 {
			t.Fatalf("%s count = %d, want 4", op, n)
		}
	}
	if n := desk.ForegroundCalls(); n != 4 {
		t.Fatalf("foreground checks = %d, want 4", n)
	}
	if n := desk.KeyPresses(platform.KeyEnter); n != 4 {
		t.Fatalf("nudge presses = %d, want 4", n)
	}
}

func TestAcquire_FocusedOnThirdCheck(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.RefuseActivate = true
	desk.OnForeground = func(call int) (platform.WindowHandle, bool) {
		return 7, call >= 3
	}
	clock := platformtest.NewClock()
	esc := newTestEscalator(desk, clock)

	got := esc.Acquire(Descriptor{Handle: 7}, Budget{MaxAttempts: 5, Pause: 100 * time.Millisecond, Timeout: time.Minute})
	if got != Focused {
		t.Fatalf("Acquire() = %v, want Focused", got)
	}
	if n := desk.Count("activate"); n != 3 {
		t.Fatalf("cycles = %d, want 3", n)
	}
}

func TestAcquire_StopsAtTimeout(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.RefuseActivate = true
	clock := platformtest.NewClock()
	esc := newTestEscalator(desk, clock)

	b := Budget{MaxAttempts: 100, Pause: 300 * time.Millisecond, Timeout: time.Second}
	if got := esc.Acquire(Descriptor{Handle: 7}, b); got != TimedOut {
		t.Fatalf("Acquire() = %v, want TimedOut", got)
	}
	if el := clock.Elapsed(); el > b.Timeout+b.Pause {
		t.Fatalf("elapsed %s exceeds timeout+pause %s", el, b.Timeout+b.Pause)
	}
	if n := desk.Count("activate"); n != 4 {
		t.Fatalf("cycles = %d, want 4", n)
	}
}

func TestAcquire_StepFailuresDoNotStopCycle(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.FailSteps = true
	clock := platformtest.NewClock()
	esc := newTestEscalator(desk, clock)

	got := esc.Acquire(Descriptor{Handle: 7}, Budget{MaxAttempts: 2, Pause: 10 * time.Millisecond, Timeout: time.Second})
	if got != TimedOut {
		t.Fatalf("Acquire() = %v, want TimedOut", got)
	}
	want := []string{"restore", "maximize", "activate", "keydown", "keyup"}
	events := desk.Events()
	if len(events) != 2*len(want) {
		t.Fatalf("events = %d, want %d", len(events), 2*len(want))
	}
	for i, e := range events[:len(want)] {
		if e.Op != want[i] {
			t.Fatalf("event %d = %s, want %s", i, e.Op, want[i])
		}
	}
}

func TestAcquire_CustomNudge(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	clock := platformtest.NewClock()
	esc := NewEscalator(EscalatorConfig{
		Controller: desk,
		Keyboard:   desk,
		Verifier:   NewVerifier(desk),
		Clock:      clock,
		Nudge:      platform.Chord{platform.KeyShift},
	})

	if got := esc.Acquire(Descriptor{Handle: 7}, Budget{MaxAttempts: 1, Pause: 0, Timeout: time.Second}); got != Focused {
		t.Fatalf("Acquire() = %v, want Focused", got)
	}
	if desk.KeyPresses(platform.KeyEnter) != 0 || desk.KeyPresses(platform.KeyShift) != 1 {
		t.Fatalf("unexpected nudge keys: %+v", desk.Events())
	}
}
