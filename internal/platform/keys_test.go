package platform

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		in      string
		want    Key
		wantErr bool
	}{
		{"Enter", KeyEnter, false},
		{"return", KeyEnter, false},
		{" ESCAPE ", KeyEsc, false},
		{"control", KeyCtrl, false},
		{"pgdn", KeyPageDown, false},
		{"F8", "f8", false},
		{"f12", "f12", false},
		{"f13", "", true},
		{"a", "a", false},
		{"7", "7", false},
		{"", "", true},
		{"hyper", "", true},
		{"ñ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownKey) {
					t.Fatalf("ParseKey(%q) error = %v, want ErrUnknownKey", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKey(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseChord(t *testing.T) {
	c, err := ParseChord("Alt+Shift+Tab")
	if err != nil {
		t.Fatalf("ParseChord() error: %v", err)
	}
	if want := (Chord{KeyAlt, KeyShift, KeyTab}); !reflect.DeepEqual(c, want) {
		t.Fatalf("ParseChord() = %v, want %v", c, want)
	}
	if c.String() != "alt+shift+tab" {
		t.Fatalf("String() = %q", c.String())
	}

	if _, err := ParseChord("ctrl+nope"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("ParseChord(bad) error = %v, want ErrUnknownKey", err)
	}
	if _, err := ParseChords([]string{"enter", ""}); err == nil {
		t.Fatal("ParseChords with empty element should fail")
	}
}

func TestIsModifier(t *testing.T) {
	for _, k := range []Key{KeyAlt, KeyCtrl, KeyShift, KeySuper} {
		if !IsModifier(k) {
			t.Fatalf("IsModifier(%q) = false", k)
		}
	}
	if IsModifier(KeyTab) {
		t.Fatal("IsModifier(tab) = true")
	}
}

type recordingKeyboard struct {
	events []string
	failOn Key
}

func (r *recordingKeyboard) KeyDown(k Key) error {
	if k == r.failOn {
		return errors.New("injected")
	}
	r.events = append(r.events, "down:"+string(k))
	return nil
}

func (r *recordingKeyboard) KeyUp(k Key) error {
	r.events = append(r.events, "up:"+string(k))
	return nil
}

func TestTap(t *testing.T) {
	kb := &recordingKeyboard{}
	if err := Tap(kb, Chord{KeyCtrl, KeyShift, "s"}); err != nil {
		t.Fatalf("Tap() error: %v", err)
	}
	want := []string{"down:ctrl", "down:shift", "down:s", "up:s", "up:shift", "up:ctrl"}
	if !reflect.DeepEqual(kb.events, want) {
		t.Fatalf("events = %v, want %v", kb.events, want)
	}
}

func TestTap_ReleasesPressedKeysOnFailure(t *testing.T) {
	kb := &recordingKeyboard{failOn: "s"}
	if err := Tap(kb, Chord{KeyCtrl, KeyShift, "s"}); err == nil {
		t.Fatal("Tap() error = nil, want failure")
	}
	want := []string{"down:ctrl", "down:shift", "up:shift", "up:ctrl"}
	if !reflect.DeepEqual(kb.events, want) {
		t.Fatalf("events = %v, want %v", kb.events, want)
	}
}
