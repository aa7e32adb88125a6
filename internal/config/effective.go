package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw over the defaults. Targets named in raw
// replace the built-in target of the same name entirely.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	setString(&cfg.LogLevel, raw.LogLevel)
	setBool(&cfg.DryRun, raw.DryRun)
	setString(&cfg.Display, raw.Display)
	setString(&cfg.NudgeKey, raw.NudgeKey)
	setDuration(&cfg.KeyDelay, raw.KeyDelay)
	setDuration(&cfg.FallbackSettle, raw.FallbackSettle)
	setDuration(&cfg.SwitchSettle, raw.SwitchSettle)

	for name, t := range raw.Targets {
		target := Target{Require: append([]string(nil), t.Require...)}
		if t.Prefer != nil {
			target.Prefer = *t.Prefer
		}
		cfg.Targets[name] = target
	}

	if b := raw.Budgets; b != nil {
		applyBudget(&cfg.Budgets.Direct, b.Direct)
		applyBudget(&cfg.Budgets.AltTab, b.AltTab)
		applyBudget(&cfg.Budgets.AltEsc, b.AltEsc)
	}

	if w := raw.Watch; w != nil {
		setDuration(&cfg.Watch.Timeout, w.Timeout)
		setDuration(&cfg.Watch.PollInterval, w.PollInterval)
		setDuration(&cfg.Watch.DismissSettle, w.DismissSettle)
	}

	if l := raw.Logging; l != nil {
		setBool(&cfg.Logging.Enabled, l.Enabled)
		setString(&cfg.Logging.Level, l.Level)
		setString(&cfg.Logging.File, l.File)
		setInt(&cfg.Logging.MaxSizeMB, l.MaxSizeMB)
		setInt(&cfg.Logging.MaxFiles, l.MaxFiles)
	}

	return cfg
}

func applyBudget(dst *BudgetConfig, raw *RawBudget) {
	if raw == nil {
		return
	}
	setInt(&dst.MaxAttempts, raw.MaxAttempts)
	setDuration(&dst.Pause, raw.Pause)
	setDuration(&dst.Timeout, raw.Timeout)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *Duration, v *Duration) {
	if v != nil {
		*dst = *v
	}
}
