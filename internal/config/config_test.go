package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/remotefocus/internal/focus"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	opts := cfg.FocusOptions()
	if opts.Budgets.Direct != (focus.Budget{MaxAttempts: 4, Pause: 200 * time.Millisecond, Timeout: 6 * time.Second}) {
		t.Fatalf("direct budget = %+v", opts.Budgets.Direct)
	}
	if opts.Budgets.AltTab.MaxAttempts != 5 || opts.FallbackSettle != time.Second {
		t.Fatalf("unexpected fallback defaults: %+v", opts)
	}
	p := cfg.Target(DefaultTarget)
	if !p.Match("UNICON - Almacen") || p.Prefer != "almacen" {
		t.Fatalf("default target predicate = %+v", p)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("File = %q, want empty", res.File)
	}
	if res.Config.Watch.Timeout.Std() != 10*time.Second {
		t.Fatalf("watch.timeout = %s, want 10s", res.Config.Watch.Timeout)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.NudgeKey != "enter" {
		t.Fatalf("nudge_key = %q, want enter", res.Config.NudgeKey)
	}
}

func TestLoadFromPath_YAMLOverrides(t *testing.T) {
	path := writeConfig(t, "config.yaml", strings.Join([]string{
		"log_level: debug",
		"dry_run: true",
		"key_delay: 50ms",
		"targets:",
		"  ventas:",
		"    require: [unicon, ventas]",
		"budgets:",
		"  direct:",
		"    max_attempts: 2",
		"  alt_esc:",
		"    max_attempts: 0",
		"watch:",
		"  poll_interval: 250ms",
		"logging:",
		"  enabled: false",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.LogLevel != "debug" || !cfg.DryRun || cfg.KeyDelay.Std() != 50*time.Millisecond {
		t.Fatalf("scalar overrides not applied: %+v", cfg)
	}
	if cfg.Budgets.Direct.MaxAttempts != 2 || cfg.Budgets.Direct.Pause.Std() != 200*time.Millisecond {
		t.Fatalf("direct budget = %+v, want attempts overridden and pause kept", cfg.Budgets.Direct)
	}
	if cfg.Budgets.AltEsc.MaxAttempts != 0 {
		t.Fatalf("alt_esc should be disabled, got %+v", cfg.Budgets.AltEsc)
	}
	if _, ok := cfg.Targets[DefaultTarget]; !ok {
		t.Fatal("built-in target lost when adding another")
	}
	if !cfg.Target("ventas").Match("Unicon Ventas") {
		t.Fatal("ventas target not loaded")
	}
	if cfg.Logging.Enabled {
		t.Fatal("logging.enabled override not applied")
	}
	if src, ok := res.Sources["budgets.direct.max_attempts"]; !ok || src.Line != 9 {
		t.Fatalf("source for budgets.direct.max_attempts = %+v", src)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "config.yaml", "budgets:\n  direct:\n    retries: 3\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if !strings.Contains(err.Error(), path) || !strings.Contains(err.Error(), "retries") {
		t.Fatalf("error %q should name the file and key", err)
	}
}

func TestLoadFromPath_DurationMustBeString(t *testing.T) {
	path := writeConfig(t, "config.yaml", "key_delay: 100\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected bare integer duration to be rejected")
	}
}

func TestLoadFromPath_ValidationErrorCarriesLine(t *testing.T) {
	path := writeConfig(t, "config.yaml", "log_level: info\nwatch:\n  timeout: 0s\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "watch.timeout" || verr.Source.Line != 3 {
		t.Fatalf("validation error = %+v", verr)
	}
	if !strings.HasPrefix(err.Error(), path+":3:") {
		t.Fatalf("error %q should start with file:line", err)
	}
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := writeConfig(t, "config.toml", strings.Join([]string{
		`nudge_key = "shift"`,
		`switch_settle = "400ms"`,
		``,
		`[targets.almacen]`,
		`require = ["sdc", "almacen"]`,
		`prefer = "almacen"`,
		``,
		`[budgets.alt_tab]`,
		`max_attempts = 3`,
		`timeout = "4s"`,
		``,
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.NudgeKey != "shift" || cfg.SwitchSettle.Std() != 400*time.Millisecond {
		t.Fatalf("toml scalars not applied: %+v", cfg)
	}
	if got := cfg.Targets[DefaultTarget].Require; len(got) != 2 || got[0] != "sdc" {
		t.Fatalf("almacen target = %v, want replaced tokens", got)
	}
	if cfg.Budgets.AltTab.MaxAttempts != 3 || cfg.Budgets.AltTab.Timeout.Std() != 4*time.Second {
		t.Fatalf("alt_tab budget = %+v", cfg.Budgets.AltTab)
	}
}

func TestLoadFromPath_TOMLUnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, "config.toml", "[watch]\nsettle = \"1s\"\n")
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "watch.settle") {
		t.Fatalf("expected unknown key watch.settle, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"nudge key", func(c *Config) { c.NudgeKey = "hyper" }, "nudge_key"},
		{"negative delay", func(c *Config) { c.KeyDelay = -1 }, "key_delay"},
		{"direct disabled", func(c *Config) { c.Budgets.Direct.MaxAttempts = 0 }, "budgets.direct"},
		{"alt-tab without timeout", func(c *Config) { c.Budgets.AltTab.Timeout = 0 }, "budgets.alt_tab"},
		{"target without tokens", func(c *Config) { c.Targets["x"] = Target{} }, "targets.x.require"},
		{"blank token", func(c *Config) { c.Targets["x"] = Target{Require: []string{" "}} }, "targets.x.require"},
		{"poll interval", func(c *Config) { c.Watch.PollInterval = 0 }, "watch.poll_interval"},
		{"journal level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}

	t.Run("fallback disabled is valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Budgets.AltEsc = BudgetConfig{}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("Validate() = %v", err)
		}
	})
}

func TestTarget_AdHocName(t *testing.T) {
	p := DefaultConfig().Target("Notepad")
	if !p.Match("Untitled - notepad") {
		t.Fatalf("ad-hoc predicate %+v should match", p)
	}
}

func TestTarget_NameIgnoresCase(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range []string{"almacen", "ALMACEN", "Almacen"} {
		t.Run(name, func(t *testing.T) {
			p := cfg.Target(name)
			if strings.Join(p.Required, ",") != "unicon,almacen" || p.Prefer != "almacen" {
				t.Fatalf("Target(%q) = %+v, want the configured almacen target", name, p)
			}
			if p.Match("Almacen - Notepad") {
				t.Fatalf("Target(%q) dropped the unicon requirement", name)
			}
		})
	}
}

func TestMarshal_RoundTripsThroughLoader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SwitchSettle = Duration(400 * time.Millisecond)
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), "switch_settle: 400ms") {
		t.Fatalf("marshalled config missing duration string:\n%s", data)
	}

	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}
	res, err := LoadFromPath(writeConfig(t, "config.yaml", string(data)))
	if err != nil {
		t.Fatalf("reload printed config: %v", err)
	}
	if res.Config.SwitchSettle != cfg.SwitchSettle {
		t.Fatalf("switch_settle = %s after reload", res.Config.SwitchSettle)
	}
}

func TestGetLoggingConfig_Defaults(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	cfg := DefaultConfig()
	lc := cfg.GetLoggingConfig()
	if !strings.HasSuffix(lc.File, filepath.Join("remotefocus", "actions.log")) {
		t.Fatalf("journal file = %q", lc.File)
	}
	if lc.MaxSizeMB != 10 || lc.MaxFiles != 3 {
		t.Fatalf("rotation defaults = %+v", lc)
	}
}
