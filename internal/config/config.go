package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/runtimepath"
)

// DefaultTarget is the built-in target name used when none is given.
const DefaultTarget = "almacen"

type Config struct {
	LogLevel       string            `yaml:"log_level"`
	DryRun         bool              `yaml:"dry_run"`
	Display        string            `yaml:"display,omitempty"`
	NudgeKey       string            `yaml:"nudge_key"`
	KeyDelay       Duration          `yaml:"key_delay"`
	FallbackSettle Duration          `yaml:"fallback_settle"`
	SwitchSettle   Duration          `yaml:"switch_settle"`
	Targets        map[string]Target `yaml:"targets"`
	Budgets        Budgets           `yaml:"budgets"`
	Watch          Watch             `yaml:"watch"`
	Logging        LoggingConfig     `yaml:"logging"`
}

// Target is a named title predicate.
type Target struct {
	Require []string `yaml:"require"`
	Prefer  string   `yaml:"prefer,omitempty"`
}

// Predicate converts the target to the matcher's predicate.
func (t Target) Predicate() focus.Predicate {
	return focus.Predicate{Required: append([]string(nil), t.Require...), Prefer: t.Prefer}
}

type BudgetConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	Pause       Duration `yaml:"pause"`
	Timeout     Duration `yaml:"timeout"`
}

func (b BudgetConfig) Budget() focus.Budget {
	return focus.Budget{MaxAttempts: b.MaxAttempts, Pause: b.Pause.Std(), Timeout: b.Timeout.Std()}
}

type Budgets struct {
	Direct BudgetConfig `yaml:"direct"`
	AltTab BudgetConfig `yaml:"alt_tab"`
	AltEsc BudgetConfig `yaml:"alt_esc"`
}

type Watch struct {
	Timeout       Duration `yaml:"timeout"`
	PollInterval  Duration `yaml:"poll_interval"`
	DismissSettle Duration `yaml:"dismiss_settle"`
}

// LoggingConfig controls the action journal.
type LoggingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Level     string `yaml:"level"`
	File      string `yaml:"file,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		NudgeKey:       string(platform.KeyEnter),
		KeyDelay:       Duration(100 * time.Millisecond),
		FallbackSettle: Duration(time.Second),
		SwitchSettle:   Duration(250 * time.Millisecond),
		Targets: map[string]Target{
			DefaultTarget: {Require: []string{"unicon", "almacen"}, Prefer: "almacen"},
		},
		Budgets: Budgets{
			Direct: BudgetConfig{MaxAttempts: 4, Pause: Duration(200 * time.Millisecond), Timeout: Duration(6 * time.Second)},
			AltTab: BudgetConfig{MaxAttempts: 5, Pause: Duration(250 * time.Millisecond), Timeout: Duration(6 * time.Second)},
			AltEsc: BudgetConfig{MaxAttempts: 5, Pause: Duration(250 * time.Millisecond), Timeout: Duration(6 * time.Second)},
		},
		Watch: Watch{
			Timeout:       Duration(10 * time.Second),
			PollInterval:  Duration(100 * time.Millisecond),
			DismissSettle: Duration(300 * time.Millisecond),
		},
		Logging: LoggingConfig{
			Enabled:   true,
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// GetLoggingConfig returns the journal configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		cfg.File = runtimepath.JournalPath()
	} else if strings.HasPrefix(cfg.File, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.File = filepath.Join(home, cfg.File[2:])
		}
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 3
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	return cfg
}

// Target resolves a target by name, ignoring case. A name that is not
// configured is treated as an ad-hoc single-token predicate.
func (c *Config) Target(name string) focus.Predicate {
	if t, ok := c.Targets[name]; ok {
		return t.Predicate()
	}
	for _, key := range c.TargetNames() {
		if strings.EqualFold(key, name) {
			return c.Targets[key].Predicate()
		}
	}
	return focus.Predicate{Required: []string{name}}
}

// TargetNames returns configured target names in sorted order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Nudge returns the parsed nudge chord.
func (c *Config) Nudge() platform.Chord {
	chord, err := platform.ParseChord(c.NudgeKey)
	if err != nil {
		return platform.Chord{platform.KeyEnter}
	}
	return chord
}

// FocusOptions maps the configuration onto driver options. Logger, clock and
// journal are left for the caller.
func (c *Config) FocusOptions() focus.Options {
	return focus.Options{
		Budgets: focus.Budgets{
			Direct: c.Budgets.Direct.Budget(),
			AltTab: c.Budgets.AltTab.Budget(),
			AltEsc: c.Budgets.AltEsc.Budget(),
		},
		FallbackSettle: c.FallbackSettle.Std(),
		SwitchSettle:   c.SwitchSettle.Std(),
		KeyDelay:       c.KeyDelay.Std(),
		Nudge:          c.Nudge(),
		WatchTimeout:   c.Watch.Timeout.Std(),
		PollInterval:   c.Watch.PollInterval.Std(),
		DismissSettle:  c.Watch.DismissSettle.Std(),
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if _, err := platform.ParseChord(c.NudgeKey); err != nil {
		return &ValidationError{Path: "nudge_key", Err: err}
	}
	for _, d := range []struct {
		path string
		v    Duration
	}{
		{"key_delay", c.KeyDelay},
		{"fallback_settle", c.FallbackSettle},
		{"switch_settle", c.SwitchSettle},
		{"watch.dismiss_settle", c.Watch.DismissSettle},
	} {
		if d.v < 0 {
			return &ValidationError{Path: d.path, Err: fmt.Errorf("must be >= 0")}
		}
	}
	if c.Watch.Timeout <= 0 {
		return &ValidationError{Path: "watch.timeout", Err: fmt.Errorf("must be > 0")}
	}
	if c.Watch.PollInterval <= 0 {
		return &ValidationError{Path: "watch.poll_interval", Err: fmt.Errorf("must be > 0")}
	}

	if err := c.Budgets.Direct.Budget().Validate(); err != nil {
		return &ValidationError{Path: "budgets.direct", Err: err}
	}
	if err := validateFallbackBudget(c.Budgets.AltTab); err != nil {
		return &ValidationError{Path: "budgets.alt_tab", Err: err}
	}
	if err := validateFallbackBudget(c.Budgets.AltEsc); err != nil {
		return &ValidationError{Path: "budgets.alt_esc", Err: err}
	}

	for _, name := range c.TargetNames() {
		t := c.Targets[name]
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "targets", Err: fmt.Errorf("targets contains an empty name")}
		}
		if len(t.Require) == 0 {
			return &ValidationError{Path: "targets." + name + ".require", Err: fmt.Errorf("at least one title token is required")}
		}
		for _, tok := range t.Require {
			if strings.TrimSpace(tok) == "" {
				return &ValidationError{Path: "targets." + name + ".require", Err: fmt.Errorf("title tokens must not be empty")}
			}
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("logging.level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("must be >= 0")}
	}
	if c.Logging.MaxFiles < 0 {
		return &ValidationError{Path: "logging.max_files", Err: fmt.Errorf("must be >= 0")}
	}
	return nil
}

// validateFallbackBudget accepts max_attempts 0, which disables the stage.
func validateFallbackBudget(b BudgetConfig) error {
	if b.MaxAttempts == 0 {
		return nil
	}
	return b.Budget().Validate()
}
