package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/remotefocus/internal/config"
	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
)

func (s *Server) predicate(in targetInput) (focus.Predicate, error) {
	if len(in.Require) > 0 {
		for _, tok := range in.Require {
			if strings.TrimSpace(tok) == "" {
				return focus.Predicate{}, fmt.Errorf("require tokens must not be empty")
			}
		}
		return focus.Predicate{Required: in.Require, Prefer: in.Prefer}, nil
	}
	name := strings.TrimSpace(in.Target)
	if name == "" {
		name = config.DefaultTarget
	}
	p := s.config.Target(name)
	if in.Prefer != "" {
		p.Prefer = in.Prefer
	}
	return p, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	s.mu.Lock()
	listings := s.driver.List()
	s.mu.Unlock()

	filter := strings.ToLower(strings.TrimSpace(args.Filter))
	out := ListWindowsOutput{Backend: s.backend.Name(), Windows: []WindowInfo{}}
	for _, l := range listings {
		src := s.backend.SourceName(l.Source)
		if l.Err != nil {
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", src, l.Err))
			continue
		}
		for _, w := range l.Windows {
			if filter != "" && !strings.Contains(strings.ToLower(w.Title), filter) {
				continue
			}
			out.Windows = append(out.Windows, WindowInfo{Source: src, Handle: uint64(w.Handle), Title: w.Title})
		}
	}
	return nil, out, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	p, err := s.predicate(args.target())
	if err != nil {
		return nil, FocusWindowOutput{}, err
	}

	var outcome focus.Outcome
	if err := s.exclusive(func() { outcome = s.driver.Focus(p) }); err != nil {
		return nil, FocusWindowOutput{}, err
	}
	return nil, s.focusOutput(outcome), nil
}

func (s *Server) focusOutput(o focus.Outcome) FocusWindowOutput {
	out := FocusWindowOutput{
		Result:    o.Result.String(),
		Strategy:  string(o.Strategy),
		Stages:    make([]StageInfo, 0, len(o.Stages)),
		ElapsedMS: o.Elapsed.Milliseconds(),
	}
	if o.Result != focus.TargetNotFound {
		out.Title = o.Target.Title
		out.Handle = uint64(o.Target.Handle)
		out.Source = s.backend.SourceName(o.Target.Source)
	}
	for _, st := range o.Stages {
		out.Stages = append(out.Stages, StageInfo{
			Strategy:  string(st.Strategy),
			Result:    st.Result.String(),
			ElapsedMS: st.Elapsed.Milliseconds(),
		})
	}
	return out
}

func (s *Server) handleWaitWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WaitWindowInput) (*mcpsdk.CallToolResult, WaitWindowOutput, error) {
	p, err := s.predicate(args.target())
	if err != nil {
		return nil, WaitWindowOutput{}, err
	}
	if args.TimeoutMS < 0 {
		return nil, WaitWindowOutput{}, fmt.Errorf("timeout_ms must be >= 0")
	}
	opts := focus.WaitOptions{Timeout: time.Duration(args.TimeoutMS) * time.Millisecond}
	if args.Dismiss != "" && !args.Gone {
		chord, err := platform.ParseChord(args.Dismiss)
		if err != nil {
			return nil, WaitWindowOutput{}, err
		}
		opts.Dismiss = chord
	}

	var out WaitWindowOutput
	wait := func() {
		clock := s.driver.Clock()
		start := clock.Now()
		if args.Gone {
			out.Satisfied = s.driver.WaitGone(p, opts)
		} else {
			out.Satisfied = s.driver.WaitAppear(p, opts)
		}
		out.ElapsedMS = clock.Now().Sub(start).Milliseconds()
	}
	// Plain waits only read the desktop; a dismiss chord types into it.
	if len(opts.Dismiss) == 0 {
		s.mu.Lock()
		wait()
		s.mu.Unlock()
		return nil, out, nil
	}
	if err := s.exclusive(wait); err != nil {
		return nil, WaitWindowOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleSendKeys(_ context.Context, _ *mcpsdk.CallToolRequest, args SendKeysInput) (*mcpsdk.CallToolResult, SendKeysOutput, error) {
	p, err := s.predicate(args.target())
	if err != nil {
		return nil, SendKeysOutput{}, err
	}
	if len(args.Keys) == 0 {
		return nil, SendKeysOutput{}, fmt.Errorf("keys must not be empty")
	}
	chords, err := platform.ParseChords(args.Keys)
	if err != nil {
		return nil, SendKeysOutput{}, err
	}

	var outcome focus.Outcome
	if lockErr := s.exclusive(func() { outcome, err = s.driver.Send(p, chords) }); lockErr != nil {
		return nil, SendKeysOutput{}, lockErr
	}

	out := SendKeysOutput{Result: outcome.Result.String(), Strategy: string(outcome.Strategy)}
	if err != nil {
		if errors.Is(err, focus.ErrNotFocused) {
			return nil, out, fmt.Errorf("keys not sent: %w", err)
		}
		return nil, out, err
	}
	out.Sent = len(chords)
	return nil, out, nil
}
