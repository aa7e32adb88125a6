package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// TitledWindow is a top-level window with its resolved title.
type TitledWindow struct {
	ID      xproto.Window
	Title   string
	Visible bool
}

// ClientWindows lists managed clients from _NET_CLIENT_LIST with titles read
// from _NET_WM_NAME (falling back to WM_NAME).
func (c *Connection) ClientWindows() ([]TitledWindow, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	out := make([]TitledWindow, 0, len(clients))
	for _, win := range clients {
		out = append(out, TitledWindow{
			ID:      win,
			Title:   c.ewmhTitle(win),
			Visible: c.IsNormalWindow(win),
		})
	}
	return out, nil
}

// TopLevelWindows lists the root window's children with ICCCM WM_NAME titles.
// Under a reparenting window manager these are frames, so the title is taken
// from the first named child when the frame itself has none.
func (c *Connection) TopLevelWindows() ([]TitledWindow, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query root tree: %w", err)
	}

	out := make([]TitledWindow, 0, len(tree.Children))
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
		if err != nil {
			// Window vanished between QueryTree and here.
			continue
		}
		if attrs.OverrideRedirect {
			continue
		}
		out = append(out, TitledWindow{
			ID:      win,
			Title:   c.icccmTitle(win),
			Visible: attrs.MapState == xproto.MapStateViewable,
		})
	}
	return out, nil
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

func (c *Connection) ewmhTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

func (c *Connection) icccmTitle(windowID xproto.Window) string {
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}

	tree, err := xproto.QueryTree(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return ""
	}
	for _, child := range tree.Children {
		if title, err := icccm.WmNameGet(c.XUtil, child); err == nil {
			if title = strings.TrimSpace(title); title != "" {
				return title
			}
		}
	}
	return ""
}
