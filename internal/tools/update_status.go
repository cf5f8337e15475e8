package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/avargas/azdo-mcp/internal/azdo"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// UpdateStatusTool handles the update_work_item_status MCP tool.
type UpdateStatusTool struct {
	svc azdo.Service
	log *zap.Logger
}

// NewUpdateStatusTool creates the tool with the given remote service.
func NewUpdateStatusTool(svc azdo.Service, log *zap.Logger) *UpdateStatusTool {
	if log == nil {
		log = zap.NewNop()
	}
	return &UpdateStatusTool{svc: svc, log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_work_item_status",
		mcp.WithDescription(
			"Update the state/status of an Azure DevOps work item. Common states "+
				"include: New, Active, Resolved, Closed, Removed. Note: available "+
				"states depend on the work item type and process template.",
		),
		mcp.WithNumber("work_item_id",
			mcp.Required(),
			mcp.Description("The ID of the work item to update"),
		),
		mcp.WithString("new_state",
			mcp.Required(),
			mcp.Description("The new state to set (e.g. 'Active', 'Resolved', 'Closed'). Must be a valid state for the work item type."),
		),
	)
}

// Handle processes the update_work_item_status tool call. Both parameters
// are validated before the remote service is touched.
func (t *UpdateStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("work_item_id")
	if err != nil {
		return mcp.NewToolResultError("Cannot update work item status: work_item_id is required and must be an integer."), nil
	}
	if id <= 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot update work item status: work_item_id must be a positive integer, got %d.", id)), nil
	}
	state, err := req.RequireString("new_state")
	if err != nil || strings.TrimSpace(state) == "" {
		return mcp.NewToolResultError(fmt.Sprintf("Cannot update work item #%d status: new_state is required and must be non-empty.", id)), nil
	}

	change, err := t.svc.UpdateWorkItemState(ctx, id, state)
	if err != nil {
		t.log.Warn("update_work_item_status failed",
			zap.Int("id", id),
			zap.String("new_state", state),
			zap.Error(err))
		return mcp.NewToolResultError(renderFailure("update work item status", id, err)), nil
	}

	return mcp.NewToolResultText(formatStateChange(change)), nil
}
