package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil/keybind"
)

// KeyDown injects a key press for the named keysym via XTEST.
func (c *Connection) KeyDown(keysym string) error {
	return c.fakeKey(xproto.KeyPress, keysym)
}

// KeyUp injects a key release for the named keysym via XTEST.
func (c *Connection) KeyUp(keysym string) error {
	return c.fakeKey(xproto.KeyRelease, keysym)
}

func (c *Connection) fakeKey(eventType byte, keysym string) error {
	if err := c.requireXTest(); err != nil {
		return err
	}
	codes := keybind.StrToKeycodes(c.XUtil, keysym)
	if len(codes) == 0 {
		return fmt.Errorf("no keycode for keysym %q", keysym)
	}
	return xtest.FakeInputChecked(
		c.XUtil.Conn(),
		eventType,
		byte(codes[0]),
		xproto.TimeCurrentTime,
		c.Root,
		0, 0,
		0,
	).Check()
}
