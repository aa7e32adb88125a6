package mcp

import (
	"context"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/remotefocus/internal/actionlog"
	"github.com/1broseidon/remotefocus/internal/config"
	"github.com/1broseidon/remotefocus/internal/focus"
	"github.com/1broseidon/remotefocus/internal/platform"
	"github.com/1broseidon/remotefocus/internal/runlock"
)

const (
	ServerName    = "remotefocus"
	ServerVersion = "0.1.0"
)

// Server exposes the focus driver as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	backend   platform.Backend
	driver    *focus.Driver
	logger    *slog.Logger
	journal   *actionlog.Logger

	// mu serializes every tool that reads or drives the desktop.
	mu sync.Mutex
	// lockPath, when set, is the cross-process run lock taken around tools
	// that change the foreground or type keys.
	lockPath string
}

// NewServer builds the tool server. The backend and journal stay owned by the
// caller.
func NewServer(cfg *config.Config, backend platform.Backend, logger *slog.Logger, journal *actionlog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	opts := cfg.FocusOptions()
	opts.Logger = logger
	opts.Journal = journal

	s := &Server{
		config:  cfg,
		backend: backend,
		driver:  focus.NewDriver(backend, opts),
		logger:  logger,
		journal: journal,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// SetLockPath makes mutating tools hold the run lock at path for the
// duration of each call.
func (s *Server) SetLockPath(path string) {
	s.lockPath = path
}

// exclusive runs fn under the server mutex and, when configured, the run lock.
func (s *Server) exclusive(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockPath != "" {
		lock, err := runlock.Acquire(s.lockPath)
		if err != nil {
			return err
		}
		defer lock.Release()
	}
	fn()
	return nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List visible top-level windows under every enumeration source, with their handles. Use it to find the title tokens of a remote application window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring a window to the foreground, escalating from direct activation to Alt+Tab and Alt+Esc switching. Reports which strategy succeeded. A timed-out result is not an error.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "wait_window",
		Description: "Wait for a transient window (dialog, confirmation) to appear, optionally pressing a dismiss chord, or to disappear when gone is true.",
	}, s.handleWaitWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "send_keys",
		Description: "Focus a window and tap key chords into it. Nothing is typed unless focus was verified.",
	}, s.handleSendKeys)
}
