// Package platformtest provides an in-memory desktop and a manual clock for
// exercising focus logic without a display server.
package platformtest

import (
	"fmt"
	"sync"

	"github.com/1broseidon/remotefocus/internal/platform"
)

// Event records one mutation or key event issued against the Desktop.
type Event struct {
	Op     string // restore, maximize, activate, keydown, keyup
	Handle platform.WindowHandle
	Key    platform.Key
}

// Desktop simulates the window-system surface. By default activation of a
// known window makes it foreground; set RefuseActivate to model a remote
// session where focus requests silently fail.
type Desktop struct {
	mu sync.Mutex

	windows    map[platform.Source][]platform.Window
	foreground platform.WindowHandle

	listCalls map[platform.Source]int
	listErr   map[platform.Source]error
	fgCalls   int
	events    []Event

	// RefuseActivate makes Activate a silent no-op.
	RefuseActivate bool
	// FailSteps makes Restore, Maximize and Activate return errors.
	FailSteps bool
	// OnForeground, when set, is consulted on every ForegroundWindow call
	// with the 1-based call count; returning ok overrides the handle.
	OnForeground func(call int) (platform.WindowHandle, bool)
	// OnKeyDown is invoked after every recorded key press.
	OnKeyDown func(k platform.Key)
}

var _ platform.Backend = (*Desktop)(nil)

// NewDesktop returns an empty desktop.
func NewDesktop() *Desktop {
	return &Desktop{
		windows:   make(map[platform.Source][]platform.Window),
		listCalls: make(map[platform.Source]int),
		listErr:   make(map[platform.Source]error),
	}
}

// AddWindow makes a visible window enumerable under src.
func (d *Desktop) AddWindow(src platform.Source, h platform.WindowHandle, title string) {
	d.AddWindowVisibility(src, h, title, true)
}

// AddWindowVisibility adds a window with an explicit visibility flag.
func (d *Desktop) AddWindowVisibility(src platform.Source, h platform.WindowHandle, title string, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows[src] = append(d.windows[src], platform.Window{Handle: h, Title: title, Visible: visible})
}

// CloseWindow removes h from every source. Its handle becomes stale.
func (d *Desktop) CloseWindow(h platform.WindowHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for src, list := range d.windows {
		kept := list[:0]
		for _, w := range list {
			if w.Handle != h {
				kept = append(kept, w)
			}
		}
		d.windows[src] = kept
	}
}

// SetForeground forces the foreground handle, as a user click would.
func (d *Desktop) SetForeground(h platform.WindowHandle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.foreground = h
}

// SetListError makes enumeration of src fail.
func (d *Desktop) SetListError(src platform.Source, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErr[src] = err
}

// ListCalls returns how many times src was enumerated.
func (d *Desktop) ListCalls(src platform.Source) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listCalls[src]
}

// ForegroundCalls returns how many times the foreground was queried.
func (d *Desktop) ForegroundCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fgCalls
}

// Events returns a copy of every recorded event.
func (d *Desktop) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

// Count returns how many events with op were recorded.
func (d *Desktop) Count(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Op == op {
			n++
		}
	}
	return n
}

// KeyPresses returns how many times k was pressed.
func (d *Desktop) KeyPresses(k platform.Key) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.events {
		if e.Op == "keydown" && e.Key == k {
			n++
		}
	}
	return n
}

func (d *Desktop) Name() string                          { return "simulated" }
func (d *Desktop) SourceName(src platform.Source) string { return "sim-" + src.String() }
func (d *Desktop) Close() error                          { return nil }

func (d *Desktop) Sources() []platform.Source {
	return []platform.Source{platform.SourcePrimary, platform.SourceSecondary}
}

func (d *Desktop) ListWindows(src platform.Source) ([]platform.Window, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listCalls[src]++
	if err := d.listErr[src]; err != nil {
		return nil, err
	}
	return append([]platform.Window(nil), d.windows[src]...), nil
}

func (d *Desktop) ForegroundWindow() (platform.WindowHandle, error) {
	d.mu.Lock()
	d.fgCalls++
	call := d.fgCalls
	fg := d.foreground
	hook := d.OnForeground
	d.mu.Unlock()

	if hook != nil {
		if h, ok := hook(call); ok {
			return h, nil
		}
	}
	return fg, nil
}

func (d *Desktop) Restore(h platform.WindowHandle) error {
	return d.step("restore", h)
}

func (d *Desktop) Maximize(h platform.WindowHandle) error {
	return d.step("maximize", h)
}

func (d *Desktop) Activate(h platform.WindowHandle) error {
	if err := d.step("activate", h); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.RefuseActivate && d.knownLocked(h) {
		d.foreground = h
	}
	return nil
}

func (d *Desktop) KeyDown(k platform.Key) error {
	d.mu.Lock()
	d.events = append(d.events, Event{Op: "keydown", Key: k})
	hook := d.OnKeyDown
	d.mu.Unlock()
	if hook != nil {
		hook(k)
	}
	return nil
}

func (d *Desktop) KeyUp(k platform.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: "keyup", Key: k})
	return nil
}

func (d *Desktop) step(op string, h platform.WindowHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, Event{Op: op, Handle: h})
	if d.FailSteps {
		return fmt.Errorf("simulated %s failure", op)
	}
	if !d.knownLocked(h) {
		return fmt.Errorf("window %d is gone", h)
	}
	return nil
}

func (d *Desktop) knownLocked(h platform.WindowHandle) bool {
	for _, list := range d.windows {
		for _, w := range list {
			if w.Handle == h {
				return true
			}
		}
	}
	return false
}
