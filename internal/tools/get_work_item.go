// Package tools implements the MCP tool catalogue: two commands, each a
// struct with a Definition for discovery and a Handle for invocation.
//
// Handlers validate parameters before any remote call, delegate to the
// azdo.Service contract, and render results (or classified failures) as
// text. No handler lets an internal error escape unformatted, and none
// re-classifies what the remote layer already classified.
package tools

import (
	"context"
	"fmt"

	"github.com/avargas/azdo-mcp/internal/azdo"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// GetWorkItemTool handles the get_work_item MCP tool.
type GetWorkItemTool struct {
	svc azdo.Service
	log *zap.Logger
}

// NewGetWorkItemTool creates the tool with the given remote service.
func NewGetWorkItemTool(svc azdo.Service, log *zap.Logger) *GetWorkItemTool {
	if log == nil {
		log = zap.NewNop()
	}
	return &GetWorkItemTool{svc: svc, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *GetWorkItemTool) Definition() mcp.Tool {
	return mcp.NewTool("get_work_item",
		mcp.WithDescription(
			"Get detailed information about an Azure DevOps work item including "+
				"description, steps to reproduce, comments, status, and other metadata. "+
				"Works with all work item types (Bugs, Tasks, User Stories, etc.)",
		),
		mcp.WithNumber("work_item_id",
			mcp.Required(),
			mcp.Description("The ID of the work item to retrieve"),
		),
	)
}

// Handle processes the get_work_item tool call.
func (t *GetWorkItemTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("work_item_id")
	if err != nil {
		return mcp.NewToolResultError("Cannot get work item: work_item_id is required and must be an integer."), nil
	}
	if id <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot get work item: work_item_id must be a positive integer, got %d.", id)), nil
	}

	item, err := t.svc.GetWorkItem(ctx, id)
	if err != nil {
		t.log.Warn("get_work_item failed", zap.Int("id", id), zap.Error(err))
		return mcp.NewToolResultError(renderFailure("get work item", id, err)), nil
	}

	return mcp.NewToolResultText(formatWorkItem(item)), nil
}
