package platform

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned when no window-system backend exists for
// the running OS.
var ErrUnsupportedPlatform = errors.New("no window backend for this platform")

// WindowHandle is a platform-neutral top-level window identifier (X11 window
// id or Win32 HWND). A handle may go stale without notice once the window
// closes.
type WindowHandle uint64

// Source identifies which enumeration subsystem found a window. Sources are
// not interchangeable: some windows are only visible through one of them.
type Source int

const (
	SourcePrimary Source = iota
	SourceSecondary
)

func (s Source) String() string {
	switch s {
	case SourcePrimary:
		return "primary"
	case SourceSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Window is a top-level window as reported by one enumeration source.
type Window struct {
	Handle  WindowHandle
	Title   string
	Visible bool
}

// WindowLister enumerates top-level windows.
type WindowLister interface {
	// Sources returns the enumeration sources in preference order.
	Sources() []Source
	ListWindows(src Source) ([]Window, error)
}

// ForegroundReader reads the single global foreground window.
type ForegroundReader interface {
	ForegroundWindow() (WindowHandle, error)
}

// WindowController issues window-state requests. Every request may be a
// silent no-op depending on window state; callers verify the outcome.
type WindowController interface {
	Restore(h WindowHandle) error
	Maximize(h WindowHandle) error
	Activate(h WindowHandle) error
}

// Keyboard dispatches synthetic key events into the active input stream.
type Keyboard interface {
	KeyDown(k Key) error
	KeyUp(k Key) error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	WindowLister
	ForegroundReader
	WindowController
	Keyboard

	Name() string
	SourceName(src Source) string
	Close() error
}
