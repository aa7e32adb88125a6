package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/1broseidon/remotefocus/internal/config"
	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/prompt"
	"github.com/1broseidon/remotefocus/internal/script"
)

const (
	exitOK       = 0
	exitTimedOut = 1
	exitUsage    = 2
	exitNotFound = 3
	exitSetup    = 4
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "wait":
		os.Exit(runWait(os.Args[2:]))
	case "send":
		os.Exit(runSend(os.Args[2:]))
	case "pause":
		os.Exit(runPause(os.Args[2:]))
	case "run":
		os.Exit(runScript(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: remotefocus <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  windows             List visible windows under every source")
	fmt.Fprintln(w, "  focus [target]      Bring a remote window to the foreground")
	fmt.Fprintln(w, "  wait <target>       Wait for a transient window to appear or close")
	fmt.Fprintln(w, "  send <chord>...     Focus the target and type key chords into it")
	fmt.Fprintln(w, "  pause [message]     Wait for the operator to press Enter or F8")
	fmt.Fprintln(w, "  run <script.yaml>   Run a step script against a target")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Exit codes: 0 focused/satisfied, 1 timed out, 2 usage, 3 target not found,")
	fmt.Fprintln(w, "4 setup failure (config, display connection, or run lock held elsewhere).")
	fmt.Fprintln(w, "Run 'remotefocus <command> --help' for command-specific options.")
}

func resultExitCode(r focus.Result) int {
	switch r {
	case focus.Focused:
		return exitOK
	case focus.TargetNotFound:
		return exitNotFound
	default:
		return exitTimedOut
	}
}

// parseFlags parses args allowing flags before and after positional
// arguments, so "focus almacen --json" and "focus --json almacen" are the
// same. Everything after "--" is positional.
func parseFlags(fs *flag.FlagSet, args []string) ([]string, int, bool) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, exitOK, false
			}
			return nil, exitUsage, false
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, 0, true
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), 0, true
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	filter := fs.String("filter", "", "Only show titles containing this text")
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus windows [--filter TEXT] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List visible top-level windows as each enumeration source reports them.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	_, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}

	s, err := openSession(common, false)
	if err != nil {
		return sessionExitCode(err)
	}
	defer s.Close()

	listings := filterListings(s.driver.List(), *filter)
	if *jsonOut {
		type row struct {
			Source string `json:"source"`
			Handle uint64 `json:"handle"`
			Title  string `json:"title"`
		}
		rows := []row{}
		for _, l := range listings {
			for _, w := range l.Windows {
				rows = append(rows, row{Source: s.backend.SourceName(l.Source), Handle: uint64(w.Handle), Title: w.Title})
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	fmt.Print(renderWindows(listings, s.backend.SourceName))
	return 0
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	require := fs.String("require", "", "Comma-separated title tokens (overrides target)")
	prefer := fs.String("prefer", "", "Tie-break token among several matches")
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus focus [target] [--require a,b] [--prefer x] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Bring the target window to the foreground, escalating through")
		fmt.Fprintln(os.Stderr, "direct activation, Alt+Tab and Alt+Esc until focus is verified.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	pos, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}
	if len(pos) > 1 {
		fs.Usage()
		return exitUsage
	}

	s, err := openSession(common, true)
	if err != nil {
		return sessionExitCode(err)
	}
	defer s.Close()

	out := s.driver.Focus(predicateFromFlags(s.cfg, firstArg(pos), *require, *prefer))
	if *jsonOut {
		writeOutcomeJSON(os.Stdout, out)
	} else {
		fmt.Println(describeOutcome(out))
	}
	return resultExitCode(out.Result)
}

func describeOutcome(out focus.Outcome) string {
	elapsed := out.Elapsed.Round(10 * time.Millisecond)
	switch out.Result {
	case focus.TargetNotFound:
		return fmt.Sprintf("target not found (%s)", elapsed)
	case focus.Focused:
		return fmt.Sprintf("focused %q via %s (%s)", out.Target.Title, out.Strategy, elapsed)
	default:
		stages := make([]string, len(out.Stages))
		for i, st := range out.Stages {
			stages[i] = string(st.Strategy)
		}
		return fmt.Sprintf("timed out focusing %q after %s (%s)", out.Target.Title, strings.Join(stages, " -> "), elapsed)
	}
}

func writeOutcomeJSON(w io.Writer, out focus.Outcome) {
	type stage struct {
		Strategy  string `json:"strategy"`
		Result    string `json:"result"`
		ElapsedMS int64  `json:"elapsed_ms"`
	}
	payload := struct {
		Result    string  `json:"result"`
		Strategy  string  `json:"strategy"`
		Title     string  `json:"title,omitempty"`
		Handle    uint64  `json:"handle,omitempty"`
		Stages    []stage `json:"stages"`
		ElapsedMS int64   `json:"elapsed_ms"`
	}{
		Result:    out.Result.String(),
		Strategy:  string(out.Strategy),
		Title:     out.Target.Title,
		Handle:    uint64(out.Target.Handle),
		Stages:    []stage{},
		ElapsedMS: out.Elapsed.Milliseconds(),
	}
	for _, st := range out.Stages {
		payload.Stages = append(payload.Stages, stage{string(st.Strategy), st.Result.String(), st.Elapsed.Milliseconds()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func runWait(args []string) int {
	fs := flag.NewFlagSet("wait", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	require := fs.String("require", "", "Comma-separated title tokens (overrides target)")
	gone := fs.Bool("gone", false, "Wait for the window to disappear instead")
	timeout := fs.Duration("timeout", 0, "How long to wait (default: watch.timeout)")
	poll := fs.Duration("poll", 0, "Poll interval (default: watch.poll_interval)")
	dismiss := fs.String("dismiss", "", "Chord to press once the window appears (e.g. enter)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus wait <target> [--gone] [--timeout 10s] [--dismiss enter]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Block until a transient window appears (or closes with --gone).")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	pos, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 1 && *require == "" {
		fs.Usage()
		return exitUsage
	}
	if *gone && *dismiss != "" {
		fmt.Fprintln(os.Stderr, "--dismiss cannot be combined with --gone")
		return exitUsage
	}
	opts := focus.WaitOptions{Timeout: *timeout, Poll: *poll}
	if *dismiss != "" {
		chord, err := platform.ParseChord(*dismiss)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitUsage
		}
		opts.Dismiss = chord
	}

	s, err := openSession(common, *dismiss != "")
	if err != nil {
		return sessionExitCode(err)
	}
	defer s.Close()

	p := predicateFromFlags(s.cfg, firstArg(pos), *require, "")
	if *gone {
		ok = s.driver.WaitGone(p, opts)
	} else {
		ok = s.driver.WaitAppear(p, opts)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "timed out waiting for %s\n", p)
		return exitTimedOut
	}
	return exitOK
}

func runSend(args []string) int {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	target := fs.String("target", config.DefaultTarget, "Configured target name or title token")
	require := fs.String("require", "", "Comma-separated title tokens (overrides --target)")
	prefer := fs.String("prefer", "", "Tie-break token among several matches")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus send [--target NAME] <chord>...")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Focus the target, then tap each chord (e.g. ctrl+p tab enter).")
		fmt.Fprintln(os.Stderr, "Nothing is typed unless focus was verified.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	pos, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}
	if len(pos) == 0 {
		fs.Usage()
		return exitUsage
	}
	chords, err := platform.ParseChords(pos)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	s, err := openSession(common, true)
	if err != nil {
		return sessionExitCode(err)
	}
	defer s.Close()

	out, err := s.driver.Send(predicateFromFlags(s.cfg, *target, *require, *prefer), chords)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keys not sent: %v\n", err)
		if out.Result == focus.Focused {
			return 1
		}
		return resultExitCode(out.Result)
	}
	return exitOK
}

func runPause(args []string) int {
	fs := flag.NewFlagSet("pause", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus pause [message]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Wait for Enter or F8. Esc or q aborts with exit code 1.")
	}
	pos, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}
	msg := strings.Join(pos, " ")
	if msg == "" {
		msg = "Continue?"
	}
	if err := prompt.Confirm(os.Stdin, os.Stderr, msg); err != nil {
		if !errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func runScript(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	target := fs.String("target", "", "Override the script's target")
	noPause := fs.Bool("no-pause", false, "Skip pause steps")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus run <script.yaml> [--target NAME] [--no-pause]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run focus/keys/wait/wait_gone/pause/sleep steps in order,")
		fmt.Fprintln(os.Stderr, "stopping at the first step that fails.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	pos, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}
	if len(pos) != 1 {
		fs.Usage()
		return exitUsage
	}

	sc, err := script.Load(firstArg(pos))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	if *target != "" {
		sc.Target = *target
	}
	if sc.Name == "" {
		sc.Name = firstArg(pos)
	}

	s, err := openSession(common, true)
	if err != nil {
		return sessionExitCode(err)
	}
	defer s.Close()

	runner := &script.Runner{
		Driver:  s.driver,
		Resolve: s.cfg.Target,
		Logger:  s.logger,
		Journal: s.journal,
	}
	if !*noPause {
		runner.Confirm = func(msg string) error {
			return prompt.Confirm(os.Stdin, os.Stderr, msg)
		}
	}

	if err := runner.Run(sc); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, focus.ErrTargetNotFound) {
			return exitNotFound
		}
		return exitTimedOut
	}
	return exitOK
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  remotefocus config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  remotefocus config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/remotefocus/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/remotefocus/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			if cfg, err = loadConfig(*path); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("# journal: %s\n", cfg.GetLoggingConfig().File)
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
