// azdo-mcp: Azure DevOps work item MCP server.
//
// A stdio MCP server that lets AI coding tools (Claude Code, Cursor,
// VS Code Copilot, ...) read Azure DevOps work items and move them through
// their workflow states.
//
// Usage:
//
//	azdo-mcp serve     # Start MCP server (stdio transport)
//	azdo-mcp update    # Update to the latest version
//
// Configuration comes from ADO_ORGANIZATION, ADO_PROJECT, and ADO_PAT
// environment variables, or from ~/.config/azdo-mcp/config.yaml.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avargas/azdo-mcp/internal/logging"
	adoserver "github.com/avargas/azdo-mcp/internal/server"
	"github.com/avargas/azdo-mcp/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("azdo-mcp v%s\n", adoserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	log, err := logging.New(os.Getenv("ADO_LOG_LEVEL"))
	if err != nil {
		return err
	}

	s, cleanup, err := adoserver.New("", log)
	if err != nil {
		cleanup()
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't interfere
	// with MCP's stdio transport on stdout.
	go checkForUpdates()

	// Graceful shutdown on interrupt.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	_ = ctx // stdio server manages its own lifecycle

	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice to
// stderr if an update is available. Best-effort: network failures are
// silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(adoserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s -> v%s\n"+
				"  Run: azdo-mcp update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	result := updater.CheckVersion(adoserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s -> v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Downloading...\n")

	if err := updater.SelfUpdate(adoserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n  You can download manually from:\n  %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "Restart azdo-mcp to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `azdo-mcp v%s — Azure DevOps work item MCP server

Usage:
  azdo-mcp serve     Start the MCP server (stdio transport)
  azdo-mcp update    Update to the latest version

Configuration (environment variables):
  ADO_ORGANIZATION   Azure DevOps organization name
  ADO_PROJECT        Project containing the work items
  ADO_PAT            Personal access token (work item read/write scope)

  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "azdo": {
        "command": "azdo-mcp",
        "args": ["serve"],
        "env": {
          "ADO_ORGANIZATION": "myorg",
          "ADO_PROJECT": "MyProject",
          "ADO_PAT": "..."
        }
      }
    }
  }
`, adoserver.Version)
}
