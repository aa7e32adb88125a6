package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// xtestReady is false when the server lacks the XTEST extension; key
	// injection then fails while enumeration and focus still work.
	xtestReady bool
}

// NewConnection connects to the given display ("" uses $DISPLAY) and
// initializes the keyboard mapping and the XTEST extension.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display == "" {
		xu, err = xgbutil.NewConn()
	} else {
		xu, err = xgbutil.NewConnDisplay(display)
	}
	if err != nil {
		return nil, err
	}

	// Keysym -> keycode lookups for synthetic input.
	keybind.Initialize(xu)

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if err := xtest.Init(xu.Conn()); err == nil {
		c.xtestReady = true
	}
	return c, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

func (c *Connection) requireXTest() error {
	if !c.xtestReady {
		return fmt.Errorf("XTEST extension unavailable on this display")
	}
	return nil
}
