// Package server wires the MCP components and creates the server instance.
//
// This is the composition root: it loads configuration, builds the one
// Azure DevOps client for the process lifetime, and injects it into the
// tools. No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/avargas/azdo-mcp/internal/azdo"
	"github.com/avargas/azdo-mcp/internal/config"
	"github.com/avargas/azdo-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with both tools registered.
// The returned cleanup function flushes the logger and must be called on
// shutdown (typically via defer); it is always non-nil.
func New(configPath string, log *zap.Logger) (*server.MCPServer, func(), error) {
	cleanup := func() { _ = log.Sync() }

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cleanup, fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, cleanup, err
	}

	// The client is the process-scoped connection handle: built once here,
	// shared by reference with every tool, never mutated afterwards.
	client, err := azdo.NewClient(cfg.OrganizationURL(), cfg.Project, cfg.PAT.Value(), log.Named("azdo"))
	if err != nil {
		return nil, cleanup, fmt.Errorf("creating Azure DevOps client: %w", err)
	}

	log.Info("connected to Azure DevOps",
		zap.String("organization_url", cfg.OrganizationURL()),
		zap.String("project", cfg.Project))

	s := server.NewMCPServer(
		"azdo-mcp",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	getTool := tools.NewGetWorkItemTool(client, log.Named("tools"))
	s.AddTool(getTool.Definition(), getTool.Handle)

	updateTool := tools.NewUpdateStatusTool(client, log.Named("tools"))
	s.AddTool(updateTool.Definition(), updateTool.Handle)

	return s, cleanup, nil
}

// serverInstructions tells the host AI when and how to use the two tools.
func serverInstructions() string {
	return `You have access to azdo-mcp, an Azure DevOps work item bridge.

## Tools

- get_work_item: fetch one work item by its integer ID. Returns the title,
  type, state, assignee, description, steps to reproduce (for bugs),
  metadata (dates, area/iteration paths, tags), and the full comment thread.
- update_work_item_status: set a work item's state (e.g. "Active",
  "Resolved", "Closed"). The set of legal states depends on the work item
  type and the project's process template; illegal transitions are rejected
  by Azure DevOps and reported back.

## Usage notes

- Work item IDs are positive integers, scoped to one preconfigured project.
- Reads are safe to repeat; updates change remote state, so confirm with
  the user before calling update_work_item_status.
- When an update is rejected, fetch the item with get_work_item and check
  its current state before suggesting another transition.`
}
