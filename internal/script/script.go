// Package script runs operator-authored YAML step sequences against a
// remote window through the focus driver.
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/remotefocus/internal/config"
	"github.com/1broseidon/remotefocus/internal/platform"
)

// Script is a named target plus the steps to run against it.
type Script struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	Steps  []Step `yaml:"steps"`
}

// Step holds exactly one action.
type Step struct {
	Focus    *string          `yaml:"focus"`
	Keys     []string         `yaml:"keys"`
	Repeat   int              `yaml:"repeat"`
	Wait     *WaitStep        `yaml:"wait"`
	WaitGone *WaitStep        `yaml:"wait_gone"`
	Pause    *string          `yaml:"pause"`
	Sleep    *config.Duration `yaml:"sleep"`

	chords []platform.Chord
}

// WaitStep waits on a transient window. Optional waits that time out do not
// fail the script.
type WaitStep struct {
	Target   string           `yaml:"target"`
	Timeout  *config.Duration `yaml:"timeout"`
	Poll     *config.Duration `yaml:"poll"`
	Dismiss  string           `yaml:"dismiss"`
	Optional bool             `yaml:"optional"`

	dismiss platform.Chord
}

// Kind names the step's action.
func (s *Step) Kind() string {
	switch {
	case s.Focus != nil:
		return "focus"
	case s.Keys != nil:
		return "keys"
	case s.Wait != nil:
		return "wait"
	case s.WaitGone != nil:
		return "wait_gone"
	case s.Pause != nil:
		return "pause"
	case s.Sleep != nil:
		return "sleep"
	default:
		return ""
	}
}

func (s *Step) actions() int {
	n := 0
	for _, set := range []bool{s.Focus != nil, s.Keys != nil, s.Wait != nil, s.WaitGone != nil, s.Pause != nil, s.Sleep != nil} {
		if set {
			n++
		}
	}
	return n
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	defer f.Close()
	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a script strictly and validates every step.
func Parse(r io.Reader) (*Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("script is empty")
		}
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks step shape and parses key chords up front so that a typo
// fails before any window is touched.
func (s *Script) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script has no steps")
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if n := st.actions(); n != 1 {
			return fmt.Errorf("step %d: exactly one action required, got %d", i+1, n)
		}
		if st.Repeat < 0 || (st.Repeat > 0 && st.Keys == nil) {
			return fmt.Errorf("step %d: repeat applies only to keys and must be >= 0", i+1)
		}
		switch st.Kind() {
		case "keys":
			if len(st.Keys) == 0 {
				return fmt.Errorf("step %d: keys must not be empty", i+1)
			}
			chords, err := platform.ParseChords(st.Keys)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			st.chords = chords
		case "wait", "wait_gone":
			w := st.Wait
			if w == nil {
				w = st.WaitGone
			}
			if w.Target == "" {
				return fmt.Errorf("step %d: %s.target is required", i+1, st.Kind())
			}
			if w.Dismiss != "" {
				if st.WaitGone != nil {
					return fmt.Errorf("step %d: dismiss applies only to wait", i+1)
				}
				chord, err := platform.ParseChord(w.Dismiss)
				if err != nil {
					return fmt.Errorf("step %d: %w", i+1, err)
				}
				w.dismiss = chord
			}
		case "sleep":
			if *st.Sleep < 0 {
				return fmt.Errorf("step %d: sleep must be >= 0", i+1)
			}
		case "focus":
			if *st.Focus == "" && s.Target == "" {
				return fmt.Errorf("step %d: focus needs a target (set script target or focus: <name>)", i+1)
			}
		}
		if st.Kind() == "keys" && s.Target == "" {
			return fmt.Errorf("step %d: keys need a script target", i+1)
		}
	}
	return nil
}

func (w *WaitStep) duration(d *config.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return d.Std()
}
