package mcp

// targetInput selects a window. Require takes precedence over Target.
type targetInput struct {
	Target  string
	Require []string
	Prefer  string
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"Only list windows whose title contains this text (case-insensitive)."`
}

// WindowInfo describes one enumerated window.
type WindowInfo struct {
	Source string `json:"source"`
	Handle uint64 `json:"handle"`
	Title  string `json:"title"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Backend string       `json:"backend"`
	Windows []WindowInfo `json:"windows"`
	Errors  []string     `json:"errors,omitempty"`
}

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	Target  string   `json:"target,omitempty" jsonschema:"Configured target name (e.g. almacen) or a single title token. Defaults to the built-in target."`
	Require []string `json:"require,omitempty" jsonschema:"Title tokens that must all appear (case-insensitive). Overrides target."`
	Prefer  string   `json:"prefer,omitempty" jsonschema:"Tie-break token when several windows match require."`
}

// StageInfo reports one escalation stage.
type StageInfo struct {
	Strategy  string `json:"strategy"`
	Result    string `json:"result"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// FocusWindowOutput is the output for the focus_window tool.
type FocusWindowOutput struct {
	Result    string      `json:"result"`
	Strategy  string      `json:"strategy"`
	Title     string      `json:"title,omitempty"`
	Handle    uint64      `json:"handle,omitempty"`
	Source    string      `json:"source,omitempty"`
	Stages    []StageInfo `json:"stages"`
	ElapsedMS int64       `json:"elapsed_ms"`
}

// WaitWindowInput is the input for the wait_window tool.
type WaitWindowInput struct {
	Target    string   `json:"target,omitempty" jsonschema:"Configured target name (e.g. almacen) or a single title token. Defaults to the built-in target."`
	Require   []string `json:"require,omitempty" jsonschema:"Title tokens that must all appear (case-insensitive). Overrides target."`
	Prefer    string   `json:"prefer,omitempty" jsonschema:"Tie-break token when several windows match require."`
	Gone      bool     `json:"gone,omitempty" jsonschema:"When true, wait for the window to disappear instead of appear."`
	TimeoutMS int      `json:"timeout_ms,omitempty" jsonschema:"Timeout in milliseconds (default: watch.timeout from config)."`
	Dismiss   string   `json:"dismiss,omitempty" jsonschema:"Chord to press once the window appears, e.g. enter or alt+y. Ignored when gone is true."`
}

// WaitWindowOutput is the output for the wait_window tool.
type WaitWindowOutput struct {
	Satisfied bool  `json:"satisfied"`
	ElapsedMS int64 `json:"elapsed_ms"`
}

// SendKeysInput is the input for the send_keys tool.
type SendKeysInput struct {
	Target  string   `json:"target,omitempty" jsonschema:"Configured target name (e.g. almacen) or a single title token. Defaults to the built-in target."`
	Require []string `json:"require,omitempty" jsonschema:"Title tokens that must all appear (case-insensitive). Overrides target."`
	Prefer  string   `json:"prefer,omitempty" jsonschema:"Tie-break token when several windows match require."`
	Keys    []string `json:"keys" jsonschema:"Chords to tap in order, e.g. [\"ctrl+p\", \"tab\", \"enter\"]."`
}

// SendKeysOutput is the output for the send_keys tool.
type SendKeysOutput struct {
	Result   string `json:"result"`
	Strategy string `json:"strategy"`
	Sent     int    `json:"sent"`
}

func (in FocusWindowInput) target() targetInput {
	return targetInput{Target: in.Target, Require: in.Require, Prefer: in.Prefer}
}

func (in WaitWindowInput) target() targetInput {
	return targetInput{Target: in.Target, Require: in.Require, Prefer: in.Prefer}
}

func (in SendKeysInput) target() targetInput {
	return targetInput{Target: in.Target, Require: in.Require, Prefer: in.Prefer}
}
