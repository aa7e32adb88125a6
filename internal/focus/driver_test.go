package focus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/remotefocus/internal/actionlog"
	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/platform/platformtest"
)

func testOptions(clock Clock) Options {
	return Options{
		Budgets: Budgets{
			Direct: Budget{MaxAttempts: 4, Pause: 200 * time.Millisecond, Timeout: 6 * time.Second},
			AltTab: Budget{MaxAttempts: 5, Pause: 250 * time.Millisecond, Timeout: 6 * time.Second},
			AltEsc: Budget{MaxAttempts: 5, Pause: 250 * time.Millisecond, Timeout: 6 * time.Second},
		},
		FallbackSettle: time.Second,
		SwitchSettle:   250 * time.Millisecond,
		KeyDelay:       50 * time.Millisecond,
		WatchTimeout:   time.Second,
		PollInterval:   100 * time.Millisecond,
		DismissSettle:  300 * time.Millisecond,
		Clock:          clock,
	}
}

func strategies(o Outcome) []Strategy {
	out := make([]Strategy, len(o.Stages))
	for i, s := range o.Stages {
		out[i] = s.Strategy
	}
	return out
}

func TestDriverFocus_AlreadyForegroundTouchesNothing(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.SetForeground(7)
	d := NewDriver(desk, testOptions(platformtest.NewClock()))

	out := d.Focus(almacen)
	if out.Result != Focused || out.Strategy != StrategyDirect {
		t.Fatalf("Focus() = %v/%s, want focused/direct", out.Result, out.Strategy)
	}
	if ev := desk.Events(); len(ev) != 0 {
		t.Fatalf("window state touched: %+v", ev)
	}
}

func TestDriverFocus_TargetNotFound(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 1, "Notepad")
	d := NewDriver(desk, testOptions(platformtest.NewClock()))

	out := d.Focus(almacen)
	if out.Result != TargetNotFound {
		t.Fatalf("Focus() result = %v, want TargetNotFound", out.Result)
	}
	if len(desk.Events()) != 0 {
		t.Fatal("no events expected when the target is missing")
	}
}

func TestDriverFocus_DirectSucceeds(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.SetForeground(1)
	d := NewDriver(desk, testOptions(platformtest.NewClock()))

	out := d.Focus(almacen)
	if out.Result != Focused || out.Strategy != StrategyDirect || len(out.Stages) != 1 {
		t.Fatalf("Focus() = %+v, want focused in one direct stage", out)
	}
	if out.Target.Handle != 7 {
		t.Fatalf("target handle = %d, want 7", out.Target.Handle)
	}
}

func TestDriverFocus_ReportsSucceedingFallback(t *testing.T) {
	tests := []struct {
		name       string
		switchKey  platform.Key
		want       Strategy
		wantStages []Strategy
	}{
		{"alt-tab", platform.KeyTab, StrategyAltTab, []Strategy{StrategyDirect, StrategyAltTab}},
		{"alt-esc", platform.KeyEsc, StrategyAltEsc, []Strategy{StrategyDirect, StrategyAltTab, StrategyAltEsc}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desk := platformtest.NewDesktop()
			desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
			desk.RefuseActivate = true
			desk.OnKeyDown = func(k platform.Key) {
				if k == tt.switchKey {
					desk.SetForeground(7)
				}
			}
			d := NewDriver(desk, testOptions(platformtest.NewClock()))

			out := d.Focus(almacen)
			if out.Result != Focused || out.Strategy != tt.want {
				t.Fatalf("Focus() = %v/%s, want focused/%s", out.Result, out.Strategy, tt.want)
			}
			got := strategies(out)
			if len(got) != len(tt.wantStages) {
				t.Fatalf("stages = %v, want %v", got, tt.wantStages)
			}
			for i := range got {
				if got[i] != tt.wantStages[i] {
					t.Fatalf("stages = %v, want %v", got, tt.wantStages)
				}
			}
		})
	}
}

func TestDriverFocus_AllStagesFail(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.RefuseActivate = true
	clock := platformtest.NewClock()
	d := NewDriver(desk, testOptions(clock))

	out := d.Focus(almacen)
	if out.Result != TimedOut {
		t.Fatalf("Focus() result = %v, want TimedOut", out.Result)
	}
	want := []Strategy{StrategyDirect, StrategyAltTab, StrategyAltEsc, StrategyDirect}
	got := strategies(out)
	if len(got) != len(want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
	// 4 direct + 5 alt-tab + 5 alt-esc + 1 final cycle.
	if n := desk.Count("activate"); n != 15 {
		t.Fatalf("activate count = %d, want 15", n)
	}
	if out.Elapsed != clock.Elapsed() {
		t.Fatalf("outcome elapsed = %s, clock elapsed = %s", out.Elapsed, clock.Elapsed())
	}
}

func TestDriverFocus_AltEscSkippedWithZeroAttempts(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.RefuseActivate = true
	opts := testOptions(platformtest.NewClock())
	opts.Budgets.AltEsc.MaxAttempts = 0
	d := NewDriver(desk, opts)

	out := d.Focus(almacen)
	if n := len(out.Stages); n != 3 {
		t.Fatalf("stages = %v, want direct, alt-tab, direct", strategies(out))
	}
	if n := desk.KeyPresses(platform.KeyEsc); n != 0 {
		t.Fatalf("esc presses = %d, want 0", n)
	}
}

func TestDriverSend_RefusesUnfocusedWindow(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.RefuseActivate = true
	d := NewDriver(desk, testOptions(platformtest.NewClock()))

	chords, err := platform.ParseChords([]string{"ctrl+s", "f5"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := d.Send(almacen, chords)
	if !errors.Is(err, ErrNotFocused) {
		t.Fatalf("Send() error = %v, want ErrNotFocused", err)
	}
	if out.Result != TimedOut {
		t.Fatalf("Send() result = %v, want TimedOut", out.Result)
	}
	if desk.KeyPresses(platform.KeyCtrl) != 0 || desk.KeyPresses(platform.Key("f5")) != 0 {
		t.Fatal("keys were typed into an unfocused window")
	}
}

func TestDriverSend_MissingTarget(t *testing.T) {
	desk := platformtest.NewDesktop()
	d := NewDriver(desk, testOptions(platformtest.NewClock()))

	_, err := d.Send(almacen, []platform.Chord{{platform.KeyEnter}})
	if !errors.Is(err, ErrNotFocused) || !errors.Is(err, ErrTargetNotFound) {
		t.Fatalf("Send() error = %v, want ErrNotFocused and ErrTargetNotFound", err)
	}
}

func TestDriverSend_TypesChordsInOrder(t *testing.T) {
	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	desk.SetForeground(7)
	clock := platformtest.NewClock()
	d := NewDriver(desk, testOptions(clock))

	chords, _ := platform.ParseChords([]string{"shift+tab", "x"})
	if _, err := d.Send(almacen, chords); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	var got []string
	for _, e := range desk.Events() {
		got = append(got, e.Op+":"+string(e.Key))
	}
	want := []string{"keydown:shift", "keydown:tab", "keyup:tab", "keyup:shift", "keydown:x", "keyup:x"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if el := clock.Elapsed(); el != 100*time.Millisecond {
		t.Fatalf("elapsed = %s, want two key delays", el)
	}
}

func TestDriverWait_UsesConfiguredDefaults(t *testing.T) {
	desk := platformtest.NewDesktop()
	clock := platformtest.NewClock()
	d := NewDriver(desk, testOptions(clock))

	if d.WaitAppear(confirm, WaitOptions{}) {
		t.Fatal("WaitAppear() = true, want false")
	}
	if el := clock.Elapsed(); el != time.Second {
		t.Fatalf("elapsed = %s, want configured 1s", el)
	}
	if !d.WaitGone(confirm, WaitOptions{Timeout: 5 * time.Second}) {
		t.Fatal("WaitGone() = false, want true for an absent window")
	}
}

func TestDriver_JournalsActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	journal, err := actionlog.New(actionlog.Config{Enabled: true, Level: actionlog.LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()

	desk := platformtest.NewDesktop()
	desk.AddWindow(platform.SourcePrimary, 7, "Unicon Almacen")
	opts := testOptions(platformtest.NewClock())
	opts.Journal = journal
	d := NewDriver(desk, opts)

	if _, err := d.Send(almacen, []platform.Chord{{platform.KeyEnter}}); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	d.WaitAppear(Predicate{Required: []string{"unicon"}}, WaitOptions{Dismiss: platform.Chord{platform.KeyEsc}})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[FOCUS]", `result="focused"`, "[SEND]", "[WAIT-APPEAR]", "[DISMISS]"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("journal missing %q:\n%s", want, data)
		}
	}
}
