package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/1broseidon/remotefocus/internal/actionlog"
	"github.com/1broseidon/remotefocus/internal/config"
	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/runlock"
	"github.com/1broseidon/remotefocus/internal/runtimepath"
)

// commonFlags are accepted by every command that talks to the desktop.
type commonFlags struct {
	configPath string
	display    string
	verbose    bool
	dryRun     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "Config file path (default: ~/.config/remotefocus/config.yaml)")
	fs.StringVar(&c.display, "display", "", "X11 display to connect to (overrides config)")
	fs.BoolVar(&c.verbose, "verbose", false, "Log debug detail to stderr")
	fs.BoolVar(&c.dryRun, "dry-run", false, "Log window and key actions instead of performing them")
}

// session bundles everything a desktop command needs.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend platform.Backend
	journal *actionlog.Logger
	driver  *focus.Driver
	lock    *runlock.Lock
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogger(level string, verbose bool) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warning", "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openSession loads config, connects the backend and opens the journal.
// When exclusive is set the per-user run lock is taken first.
func openSession(flags commonFlags, exclusive bool) (*session, error) {
	cfg, err := loadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: newLogger(cfg.LogLevel, flags.verbose)}

	if exclusive {
		lockPath, err := runtimepath.LockPath()
		if err != nil {
			return nil, err
		}
		if s.lock, err = runlock.Acquire(lockPath); err != nil {
			return nil, err
		}
	}

	display := cfg.Display
	if flags.display != "" {
		display = flags.display
	}
	backend, err := platform.NewDefaultBackend(display)
	if err != nil {
		s.lock.Release()
		return nil, err
	}
	if cfg.DryRun || flags.dryRun {
		backend = platform.DryRun(backend, s.logger)
	}
	s.backend = backend
	s.logger.Debug("backend ready", "backend", backend.Name())

	s.journal = openJournal(cfg)

	opts := cfg.FocusOptions()
	opts.Logger = s.logger
	opts.Journal = s.journal
	s.driver = focus.NewDriver(backend, opts)
	return s, nil
}

func openJournal(cfg *config.Config) *actionlog.Logger {
	lc := cfg.GetLoggingConfig()
	if !lc.Enabled {
		return nil
	}
	journal, err := actionlog.New(actionlog.Config{
		Enabled:   lc.Enabled,
		Level:     actionlog.ParseLevel(lc.Level),
		FilePath:  lc.File,
		MaxSizeMB: lc.MaxSizeMB,
		MaxFiles:  lc.MaxFiles,
	})
	if err != nil {
		log.Printf("Warning: failed to open action journal: %v", err)
		return nil
	}
	return journal
}

func (s *session) Close() {
	if s == nil {
		return
	}
	s.journal.Close()
	if s.backend != nil {
		s.backend.Close()
	}
	s.lock.Release()
}

// sessionExitCode reports a session setup failure and maps it to an exit code.
func sessionExitCode(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return exitSetup
}

// predicateFromFlags builds the target predicate from a positional name and
// the --require/--prefer overrides.
func predicateFromFlags(cfg *config.Config, name, require, prefer string) focus.Predicate {
	var p focus.Predicate
	if require != "" {
		for _, tok := range strings.Split(require, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				p.Required = append(p.Required, tok)
			}
		}
	} else {
		if name == "" {
			name = config.DefaultTarget
		}
		p = cfg.Target(name)
	}
	if prefer != "" {
		p.Prefer = prefer
	}
	return p
}
