package focus

import (
	"log/slog"

	"github.com/1broseidon/remotefocus/internal/platform"
)

// Matcher locates windows by title across enumeration sources.
type Matcher struct {
	lister platform.WindowLister
	logger *slog.Logger
}

// NewMatcher creates a matcher. A nil logger discards output.
func NewMatcher(lister platform.WindowLister, logger *slog.Logger) *Matcher {
	return &Matcher{lister: lister, logger: orDiscard(logger)}
}

// Find returns the first visible window satisfying p. Sources are tried in
// preference order and a later source is only consulted when an earlier one
// produced no match. Among several matches in one source, the first whose
// title contains p.Prefer wins, else the first enumerated.
func (m *Matcher) Find(p Predicate) (Descriptor, error) {
	for _, src := range m.lister.Sources() {
		windows, err := m.lister.ListWindows(src)
		if err != nil {
			m.logger.Debug("window enumeration failed", "source", src, "error", err)
			continue
		}
		if d, ok := pick(windows, p, src); ok {
			return d, nil
		}
	}
	return Descriptor{}, ErrTargetNotFound
}

// Exists reports whether any source currently shows a matching window.
func (m *Matcher) Exists(p Predicate) bool {
	_, err := m.Find(p)
	return err == nil
}

// Listing is the visible window set of one source.
type Listing struct {
	Source  platform.Source
	Windows []platform.Window
	Err     error
}

// List enumerates every source and returns its visible titled windows.
func (m *Matcher) List() []Listing {
	sources := m.lister.Sources()
	out := make([]Listing, 0, len(sources))
	for _, src := range sources {
		windows, err := m.lister.ListWindows(src)
		l := Listing{Source: src, Err: err}
		for _, w := range windows {
			if w.Visible && w.Title != "" {
				l.Windows = append(l.Windows, w)
			}
		}
		out = append(out, l)
	}
	return out
}

func pick(windows []platform.Window, p Predicate, src platform.Source) (Descriptor, bool) {
	var first *platform.Window
	for i := range windows {
		w := &windows[i]
		if !w.Visible || !p.Match(w.Title) {
			continue
		}
		if p.Preferred(w.Title) {
			return Descriptor{Handle: w.Handle, Title: w.Title, Source: src}, true
		}
		if first == nil {
			first = w
		}
	}
	if first == nil {
		return Descriptor{}, false
	}
	return Descriptor{Handle: first.Handle, Title: first.Title, Source: src}, true
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
