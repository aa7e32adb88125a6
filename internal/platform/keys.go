package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned when a key name cannot be mapped.
var ErrUnknownKey = errors.New("unknown key")

// Key is a canonical, platform-neutral key name such as "enter" or "alt".
type Key string

const (
	KeyEnter      Key = "enter"
	KeyTab        Key = "tab"
	KeyEsc        Key = "esc"
	KeySpace      Key = "space"
	KeyBackspace  Key = "backspace"
	KeyDelete     Key = "delete"
	KeyInsert     Key = "insert"
	KeyAlt        Key = "alt"
	KeyCtrl       Key = "ctrl"
	KeyShift      Key = "shift"
	KeySuper      Key = "super"
	KeyArrowUp    Key = "up"
	KeyArrowDown  Key = "down"
	KeyArrowLeft  Key = "left"
	KeyArrowRight Key = "right"
	KeyHome       Key = "home"
	KeyEnd        Key = "end"
	KeyPageUp     Key = "pageup"
	KeyPageDown   Key = "pagedown"
)

var namedKeys = map[Key]struct{}{
	KeyEnter: {}, KeyTab: {}, KeyEsc: {}, KeySpace: {}, KeyBackspace: {},
	KeyDelete: {}, KeyInsert: {}, KeyAlt: {}, KeyCtrl: {}, KeyShift: {},
	KeySuper: {}, KeyArrowUp: {}, KeyArrowDown: {}, KeyArrowLeft: {}, KeyArrowRight: {},
	KeyHome: {}, KeyEnd: {}, KeyPageUp: {}, KeyPageDown: {},
}

var keyAliases = map[string]Key{
	"return":   KeyEnter,
	"escape":   KeyEsc,
	"control":  KeyCtrl,
	"del":      KeyDelete,
	"ins":      KeyInsert,
	"win":      KeySuper,
	"cmd":      KeySuper,
	"meta":     KeySuper,
	"pgup":     KeyPageUp,
	"pgdn":     KeyPageDown,
	"bksp":     KeyBackspace,
	"spacebar": KeySpace,
}

// ParseKey resolves a key name (case-insensitive, aliases allowed).
func ParseKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("%w: empty key name", ErrUnknownKey)
	}
	if k, ok := keyAliases[n]; ok {
		return k, nil
	}
	if _, ok := namedKeys[Key(n)]; ok {
		return Key(n), nil
	}
	if FunctionKeyNumber(Key(n)) > 0 {
		return Key(n), nil
	}
	if len(n) == 1 && ((n[0] >= 'a' && n[0] <= 'z') || (n[0] >= '0' && n[0] <= '9')) {
		return Key(n), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// FunctionKeyNumber returns N for "fN" (1-12), or 0.
func FunctionKeyNumber(k Key) int {
	s := string(k)
	if len(s) < 2 || len(s) > 3 || s[0] != 'f' {
		return 0
	}
	n := 0
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	if n < 1 || n > 12 {
		return 0
	}
	return n
}

// IsModifier reports whether k is held rather than tapped in a chord.
func IsModifier(k Key) bool {
	switch k {
	case KeyAlt, KeyCtrl, KeyShift, KeySuper:
		return true
	}
	return false
}

// Chord is a key combination pressed in order and released in reverse.
type Chord []Key

// ParseChord parses "alt+tab", "shift+tab", "enter".
func ParseChord(s string) (Chord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty chord", ErrUnknownKey)
	}
	parts := strings.Split(s, "+")
	chord := make(Chord, 0, len(parts))
	for _, p := range parts {
		k, err := ParseKey(p)
		if err != nil {
			return nil, fmt.Errorf("chord %q: %w", s, err)
		}
		chord = append(chord, k)
	}
	return chord, nil
}

// ParseChords parses each element with ParseChord.
func ParseChords(specs []string) ([]Chord, error) {
	out := make([]Chord, 0, len(specs))
	for _, s := range specs {
		c, err := ParseChord(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (c Chord) String() string {
	parts := make([]string, len(c))
	for i, k := range c {
		parts[i] = string(k)
	}
	return strings.Join(parts, "+")
}

// Tap presses every key of the chord in order and releases them in reverse.
// Keys already pressed are released even when a later press fails.
func Tap(kb Keyboard, chord Chord) error {
	pressed := 0
	var firstErr error
	for _, k := range chord {
		if err := kb.KeyDown(k); err != nil {
			firstErr = fmt.Errorf("key down %s: %w", k, err)
			break
		}
		pressed++
	}
	for i := pressed - 1; i >= 0; i-- {
		if err := kb.KeyUp(chord[i]); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("key up %s: %w", chord[i], err)
		}
	}
	return firstErr
}
