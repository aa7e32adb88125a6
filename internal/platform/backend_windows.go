//go:build windows

package platform

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Procs without a typed wrapper in golang.org/x/sys/windows.
var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procGetTopWindow          = user32.NewProc("GetTopWindow")
	procGetWindow             = user32.NewProc("GetWindow")
	procGetWindowTextW        = user32.NewProc("GetWindowTextW")
	procInternalGetWindowText = user32.NewProc("InternalGetWindowText")
	procShowWindow            = user32.NewProc("ShowWindow")
	procSetForegroundWindow   = user32.NewProc("SetForegroundWindow")
	procKeybdEvent            = user32.NewProc("keybd_event")
)

const (
	gwHwndNext      = 2
	swMaximize      = 3
	swRestore       = 9
	keyeventfKeyUp  = 0x0002
	keyeventfExtend = 0x0001
	maxTitleLen     = 512
)

// WindowsBackend drives top-level windows through user32.
//
// SourcePrimary uses EnumWindows with GetWindowTextW; SourceSecondary walks
// the z-order chain from GetTopWindow(NULL) and reads titles with
// InternalGetWindowText, which does not send WM_GETTEXT to hung windows.
type WindowsBackend struct {
	mu sync.Mutex
}

var _ Backend = (*WindowsBackend)(nil)

// NewDefaultBackend returns the Win32 backend. display is ignored.
func NewDefaultBackend(display string) (Backend, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32 unavailable: %w", err)
	}
	return &WindowsBackend{}, nil
}

func (b *WindowsBackend) Name() string { return "win32" }

func (b *WindowsBackend) SourceName(src Source) string {
	switch src {
	case SourcePrimary:
		return "enumwindows"
	case SourceSecondary:
		return "zorder"
	}
	return src.String()
}

func (b *WindowsBackend) Close() error { return nil }

func (b *WindowsBackend) Sources() []Source {
	return []Source{SourcePrimary, SourceSecondary}
}

func (b *WindowsBackend) ListWindows(src Source) ([]Window, error) {
	switch src {
	case SourcePrimary:
		return enumTopLevel()
	case SourceSecondary:
		return walkZOrder()
	default:
		return nil, fmt.Errorf("unknown window source %v", src)
	}
}

var (
	enumMu      sync.Mutex
	enumResults []Window
	enumCb      = windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		enumResults = append(enumResults, Window{
			Handle:  WindowHandle(hwnd),
			Title:   windowText(procGetWindowTextW, hwnd),
			Visible: isVisible(hwnd),
		})
		return 1 // continue enumeration
	})
)

func enumTopLevel() ([]Window, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumResults = nil
	err := windows.EnumWindows(enumCb, nil)
	if err != nil && len(enumResults) == 0 {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	out := enumResults
	enumResults = nil
	return out, nil
}

func walkZOrder() ([]Window, error) {
	hwnd, _, err := procGetTopWindow.Call(0)
	if hwnd == 0 {
		return nil, fmt.Errorf("GetTopWindow failed: %w", err)
	}
	var out []Window
	for hwnd != 0 {
		out = append(out, Window{
			Handle:  WindowHandle(hwnd),
			Title:   windowText(procInternalGetWindowText, hwnd),
			Visible: isVisible(hwnd),
		})
		hwnd, _, _ = procGetWindow.Call(hwnd, gwHwndNext)
	}
	return out, nil
}

func windowText(proc *windows.LazyProc, hwnd uintptr) string {
	buf := make([]uint16, maxTitleLen)
	n, _, _ := proc.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

func isVisible(hwnd uintptr) bool {
	return windows.IsWindowVisible(windows.HWND(hwnd))
}

func (b *WindowsBackend) ForegroundWindow() (WindowHandle, error) {
	return WindowHandle(windows.GetForegroundWindow()), nil
}

func (b *WindowsBackend) Restore(h WindowHandle) error {
	if err := requireWindow(h); err != nil {
		return err
	}
	// ShowWindow returns the previous visibility, not success.
	procShowWindow.Call(uintptr(h), swRestore)
	return nil
}

func (b *WindowsBackend) Maximize(h WindowHandle) error {
	if err := requireWindow(h); err != nil {
		return err
	}
	procShowWindow.Call(uintptr(h), swMaximize)
	return nil
}

func (b *WindowsBackend) Activate(h WindowHandle) error {
	if err := requireWindow(h); err != nil {
		return err
	}
	r, _, err := procSetForegroundWindow.Call(uintptr(h))
	if r == 0 {
		return fmt.Errorf("SetForegroundWindow refused: %w", err)
	}
	return nil
}

func (b *WindowsBackend) KeyDown(k Key) error {
	return b.keyEvent(k, 0)
}

func (b *WindowsBackend) KeyUp(k Key) error {
	return b.keyEvent(k, keyeventfKeyUp)
}

func (b *WindowsBackend) keyEvent(k Key, flags uintptr) error {
	vk, extended, err := virtualKey(k)
	if err != nil {
		return err
	}
	if extended {
		flags |= keyeventfExtend
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	procKeybdEvent.Call(uintptr(vk), 0, flags, 0)
	return nil
}

func requireWindow(h WindowHandle) error {
	if !windows.IsWindow(windows.HWND(h)) {
		return fmt.Errorf("window %#x is gone", uint64(h))
	}
	return nil
}

var virtualKeys = map[Key]byte{
	KeyEnter:      0x0D,
	KeyTab:        0x09,
	KeyEsc:        0x1B,
	KeySpace:      0x20,
	KeyBackspace:  0x08,
	KeyDelete:     0x2E,
	KeyInsert:     0x2D,
	KeyAlt:        0x12,
	KeyCtrl:       0x11,
	KeyShift:      0x10,
	KeySuper:      0x5B,
	KeyArrowUp:    0x26,
	KeyArrowDown:  0x28,
	KeyArrowLeft:  0x25,
	KeyArrowRight: 0x27,
	KeyHome:       0x24,
	KeyEnd:        0x23,
	KeyPageUp:     0x21,
	KeyPageDown:   0x22,
}

func virtualKey(k Key) (vk byte, extended bool, err error) {
	if v, ok := virtualKeys[k]; ok {
		switch k {
		case KeyDelete, KeyInsert, KeyArrowUp, KeyArrowDown, KeyArrowLeft, KeyArrowRight,
			KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
			extended = true
		}
		return v, extended, nil
	}
	if n := FunctionKeyNumber(k); n > 0 {
		return byte(0x70 + n - 1), false, nil
	}
	if len(k) == 1 {
		c := k[0]
		switch {
		case c >= 'a' && c <= 'z':
			return c - 'a' + 'A', false, nil
		case c >= '0' && c <= '9':
			return c, false, nil
		}
	}
	return 0, false, fmt.Errorf("%w: %q", ErrUnknownKey, string(k))
}
