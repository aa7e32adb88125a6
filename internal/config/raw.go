package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a Go duration string ("250ms").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode || value.Tag != "!!str" {
		return fmt.Errorf("line %d: duration must be a string such as \"250ms\"", value.Line)
	}
	return d.UnmarshalText([]byte(value.Value))
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type RawTarget struct {
	Require []string `yaml:"require" toml:"require"`
	Prefer  *string  `yaml:"prefer" toml:"prefer"`
}

type RawBudget struct {
	MaxAttempts *int      `yaml:"max_attempts" toml:"max_attempts"`
	Pause       *Duration `yaml:"pause" toml:"pause"`
	Timeout     *Duration `yaml:"timeout" toml:"timeout"`
}

type RawBudgets struct {
	Direct *RawBudget `yaml:"direct" toml:"direct"`
	AltTab *RawBudget `yaml:"alt_tab" toml:"alt_tab"`
	AltEsc *RawBudget `yaml:"alt_esc" toml:"alt_esc"`
}

type RawWatch struct {
	Timeout       *Duration `yaml:"timeout" toml:"timeout"`
	PollInterval  *Duration `yaml:"poll_interval" toml:"poll_interval"`
	DismissSettle *Duration `yaml:"dismiss_settle" toml:"dismiss_settle"`
}

type RawLoggingConfig struct {
	Enabled   *bool   `yaml:"enabled" toml:"enabled"`
	Level     *string `yaml:"level" toml:"level"`
	File      *string `yaml:"file" toml:"file"`
	MaxSizeMB *int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxFiles  *int    `yaml:"max_files" toml:"max_files"`
}

// RawConfig mirrors Config with every field optional so that a file only
// overrides what it sets.
type RawConfig struct {
	LogLevel       *string              `yaml:"log_level" toml:"log_level"`
	DryRun         *bool                `yaml:"dry_run" toml:"dry_run"`
	Display        *string              `yaml:"display" toml:"display"`
	NudgeKey       *string              `yaml:"nudge_key" toml:"nudge_key"`
	KeyDelay       *Duration            `yaml:"key_delay" toml:"key_delay"`
	FallbackSettle *Duration            `yaml:"fallback_settle" toml:"fallback_settle"`
	SwitchSettle   *Duration            `yaml:"switch_settle" toml:"switch_settle"`
	Targets        map[string]RawTarget `yaml:"targets" toml:"targets"`
	Budgets        *RawBudgets          `yaml:"budgets" toml:"budgets"`
	Watch          *RawWatch            `yaml:"watch" toml:"watch"`
	Logging        *RawLoggingConfig    `yaml:"logging" toml:"logging"`
}
