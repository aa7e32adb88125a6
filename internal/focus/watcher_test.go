package focus

import (
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/platform/platformtest"
)

var confirm = Predicate{Required: []string{"confirm"}}

func newTestWatcher(desk *platformtest.Desktop, clock *platformtest.Clock) *Watcher {
	return NewWatcher(WatcherConfig{
		Matcher:       NewMatcher(desk, nil),
		Keyboard:      desk,
		Clock:         clock,
		DismissSettle: 300 * time.Millisecond,
	})
}

func TestWaitForAppearance_ReturnsOnFirstPollAfterInjection(t *testing.T) {
	desk := platformtest.NewDesktop()
	clock := platformtest.NewClock()
	clock.After(300*time.Millisecond, func() {
		desk.AddWindow(platform.SourcePrimary, 5, "Confirm delete")
	})
	w := newTestWatcher(desk, clock)

	if !w.WaitForAppearance(confirm, time.Second, 100*time.Millisecond, nil) {
		t.Fatal("WaitForAppearance() = false, want true")
	}
	if el := clock.Elapsed(); el != 300*time.Millisecond {
		t.Fatalf("elapsed = %s, want 300ms", el)
	}
}

func TestWaitForAppearance_TimesOut(t *testing.T) {
	desk := platformtest.NewDesktop()
	clock := platformtest.NewClock()
	w := newTestWatcher(desk, clock)

	if w.WaitForAppearance(confirm, time.Second, 100*time.Millisecond, nil) {
		t.Fatal("WaitForAppearance() = true, want false")
	}
	if el := clock.Elapsed(); el != time.Second {
		t.Fatalf("elapsed = %s, want 1s", el)
	}
	if n := desk.ListCalls(platform.SourcePrimary); n != 11 {
		t.Fatalf("polls = %d, want 11", n)
	}
}

func TestWaitForAppearance_ClipsLastSleep(t *testing.T) {
	desk := platformtest.NewDesktop()
	clock := platformtest.NewClock()
	w := newTestWatcher(desk, clock)

	w.WaitForAppearance(confirm, 250*time.Millisecond, 100*time.Millisecond, nil)
	want := []time.Duration{100 * time.Millisecond, 100 * time.Millisecond, 50 * time.Millisecond}
	if got := clock.Sleeps(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sleeps = %v, want %v", got, want)
	}
}

func TestWaitForAppearance_Dismisses(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourceSecondary, 5, "Confirm")
	clock := platformtest.NewClock()
	w := newTestWatcher(desk, clock)

	if !w.WaitForAppearance(confirm, time.Second, 100*time.Millisecond, platform.Chord{platform.KeyEnter}) {
		t.Fatal("WaitForAppearance() = false, want true")
	}
	if n := desk.KeyPresses(platform.KeyEnter); n != 1 {
		t.Fatalf("dismiss presses = %d, want 1", n)
	}
	if got := clock.Sleeps(); !reflect.DeepEqual(got, []time.Duration{300 * time.Millisecond}) {
		t.Fatalf("sleeps = %v, want [300ms]", got)
	}
}

func TestWaitForDisappearance(t *testing.T) {
	t.Run("closes", func(t *testing.T) {
		desk := platformtest.NewDesktop()
		desk.AddWindow(platform.SourcePrimary, 5, "Confirm")
		clock := platformtest.NewClock()
		clock.After(500*time.Millisecond, func() { desk.CloseWindow(5) })
		w := newTestWatcher(desk, clock)

		if !w.WaitForDisappearance(confirm, time.Second, 100*time.Millisecond) {
			t.Fatal("WaitForDisappearance() = false, want true")
		}
		if el := clock.Elapsed(); el != 500*time.Millisecond {
			t.Fatalf("elapsed = %s, want 500ms", el)
		}
	})

	t.Run("stays", func(t *testing.T) {
		desk := platformtest.NewDesktop()
		desk.AddWindow(platform.SourcePrimary, 5, "Confirm")
		clock := platformtest.NewClock()
		w := newTestWatcher(desk, clock)

		if w.WaitForDisappearance(confirm, time.Second, 100*time.Millisecond) {
			t.Fatal("WaitForDisappearance() = true, want false")
		}
		if el := clock.Elapsed(); el != time.Second {
			t.Fatalf("elapsed = %s, want 1s", el)
		}
	})
}
