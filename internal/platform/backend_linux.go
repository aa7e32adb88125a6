//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/remotefocus/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
//
// SourcePrimary enumerates EWMH managed clients (_NET_CLIENT_LIST,
// _NET_WM_NAME); SourceSecondary walks the root window's children and reads
// ICCCM WM_NAME. Under reparenting window managers the secondary source
// yields frame windows, which the window manager may refuse to activate.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewDefaultBackend opens a fresh X11 connection to display ("" uses $DISPLAY).
func NewDefaultBackend(display string) (Backend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

func (b *LinuxBackend) Name() string { return "x11" }

func (b *LinuxBackend) SourceName(src Source) string {
	switch src {
	case SourcePrimary:
		return "ewmh"
	case SourceSecondary:
		return "icccm"
	}
	return src.String()
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

func (b *LinuxBackend) Sources() []Source {
	return []Source{SourcePrimary, SourceSecondary}
}

func (b *LinuxBackend) ListWindows(src Source) ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	var found []x11.TitledWindow
	switch src {
	case SourcePrimary:
		found, err = conn.ClientWindows()
	case SourceSecondary:
		found, err = conn.TopLevelWindows()
	default:
		return nil, fmt.Errorf("unknown window source %v", src)
	}
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(found))
	for _, w := range found {
		windows = append(windows, Window{
			Handle:  WindowHandle(w.ID),
			Title:   w.Title,
			Visible: w.Visible,
		})
	}
	return windows, nil
}

// ForegroundWindow returns the currently active window ID.
func (b *LinuxBackend) ForegroundWindow() (WindowHandle, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowHandle(wid), nil
}

func (b *LinuxBackend) Restore(h WindowHandle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.RestoreWindow(xproto.Window(h))
}

func (b *LinuxBackend) Maximize(h WindowHandle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.MaximizeWindow(xproto.Window(h))
}

func (b *LinuxBackend) Activate(h WindowHandle) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.ActivateWindow(xproto.Window(h))
}

func (b *LinuxBackend) KeyDown(k Key) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	sym, err := keysym(k)
	if err != nil {
		return err
	}
	return conn.KeyDown(sym)
}

func (b *LinuxBackend) KeyUp(k Key) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	sym, err := keysym(k)
	if err != nil {
		return err
	}
	return conn.KeyUp(sym)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

var x11Keysyms = map[Key]string{
	KeyEnter:      "Return",
	KeyTab:        "Tab",
	KeyEsc:        "Escape",
	KeySpace:      "space",
	KeyBackspace:  "BackSpace",
	KeyDelete:     "Delete",
	KeyInsert:     "Insert",
	KeyAlt:        "Alt_L",
	KeyCtrl:       "Control_L",
	KeyShift:      "Shift_L",
	KeySuper:      "Super_L",
	KeyArrowUp:    "Up",
	KeyArrowDown:  "Down",
	KeyArrowLeft:  "Left",
	KeyArrowRight: "Right",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyPageUp:     "Prior",
	KeyPageDown:   "Next",
}

func keysym(k Key) (string, error) {
	if sym, ok := x11Keysyms[k]; ok {
		return sym, nil
	}
	if n := FunctionKeyNumber(k); n > 0 {
		return fmt.Sprintf("F%d", n), nil
	}
	if len(k) == 1 {
		return string(k), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, string(k))
}
