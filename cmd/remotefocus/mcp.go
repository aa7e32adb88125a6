package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/remotefocus/internal/mcp"
	"github.com/1broseidon/remotefocus/internal/runtimepath"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: remotefocus mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'remotefocus mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var common commonFlags
	common.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: remotefocus mcp serve [--config PATH] [--dry-run]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the MCP server on stdio. Exposes list_windows, focus_window,")
		fmt.Fprintln(os.Stderr, "wait_window and send_keys to MCP clients.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Example:")
		fmt.Fprintln(os.Stderr, "  claude mcp add remotefocus -- remotefocus mcp serve")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	_, code, ok := parseFlags(fs, args)
	if !ok {
		return code
	}

	s, err := openSession(common, false)
	if err != nil {
		log.Fatalf("Failed to start MCP session: %v", err)
	}
	defer s.Close()

	server := mcp.NewServer(s.cfg, s.backend, s.logger, s.journal)
	lockPath, err := runtimepath.LockPath()
	if err != nil {
		log.Fatalf("Failed to resolve lock path: %v", err)
	}
	server.SetLockPath(lockPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("MCP server error: %v", err)
		return 1
	}
	return 0
}
