// Package actionlog keeps a persistent, human-readable journal of the
// foreground and input actions remotefocus performed, with size-based
// rotation.
package actionlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level filters journal entries.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Action labels a journal entry.
type Action string

const (
	ActionFocus      Action = "FOCUS"
	ActionAltTab     Action = "ALT-TAB"
	ActionAltEsc     Action = "ALT-ESC"
	ActionWaitAppear Action = "WAIT-APPEAR"
	ActionWaitGone   Action = "WAIT-GONE"
	ActionDismiss    Action = "DISMISS"
	ActionSend       Action = "SEND"
	ActionPause      Action = "PAUSE"
	ActionScript     Action = "SCRIPT"
)

func actionLevel(a Action) Level {
	switch a {
	case ActionAltTab, ActionAltEsc:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// Config controls where and how much is journaled.
type Config struct {
	Enabled   bool
	Level     Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// Logger appends entries to the journal file. A nil *Logger is valid and
// drops everything.
type Logger struct {
	mu   sync.Mutex
	cfg  Config
	file *os.File
	size int64
	now  func() time.Time
}

// New opens the journal. A disabled config yields a Logger that writes nothing.
func New(cfg Config) (*Logger, error) {
	l := &Logger{cfg: cfg, now: time.Now}
	if !cfg.Enabled {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Logger) open() error {
	f, err := os.OpenFile(l.cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open journal %s: %w", l.cfg.FilePath, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat journal: %w", err)
	}
	l.file = f
	l.size = st.Size()
	return nil
}

// Log writes one entry. Details are rendered as sorted key=value pairs,
// strings quoted.
func (l *Logger) Log(action Action, target string, details map[string]any) {
	if l == nil || !l.cfg.Enabled || actionLevel(action) < l.cfg.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	if limit := int64(l.cfg.MaxSizeMB) * 1024 * 1024; limit > 0 && l.size >= limit {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "journal rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	n, err := l.file.WriteString(l.format(action, target, details))
	if err != nil {
		fmt.Fprintf(os.Stderr, "journal write failed: %v\n", err)
		return
	}
	l.size += int64(n)
}

func (l *Logger) format(action Action, target string, details map[string]any) string {
	var sb strings.Builder
	sb.WriteString(l.now().Format("2006-01-02 15:04:05.000"))
	fmt.Fprintf(&sb, " [%s]", action)
	if target != "" {
		fmt.Fprintf(&sb, " target=%q", target)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := details[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, v)
		case fmt.Stringer:
			fmt.Fprintf(&sb, " %s=%q", k, v.String())
		default:
			fmt.Fprintf(&sb, " %s=%v", k, v)
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// rotate shifts journal.log.N-1 to journal.log.N, dropping the oldest, and
// reopens an empty journal.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	base := l.cfg.FilePath
	keep := l.cfg.MaxFiles
	if keep < 1 {
		keep = 1
	}
	os.Remove(fmt.Sprintf("%s.%d", base, keep))
	for i := keep - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", base, i), fmt.Sprintf("%s.%d", base, i+1))
	}
	if err := os.Rename(base, base+".1"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("rotate journal: %w", err)
	}
	return l.open()
}

// Close flushes and closes the journal file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ParseLevel maps a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
