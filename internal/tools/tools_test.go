package tools

import (
	"context"

	"github.com/avargas/azdo-mcp/internal/azdo"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Test helpers ---

// stubService is an azdo.Service that records invocations and returns
// canned results. Used to verify that invalid parameters never reach the
// remote layer.
type stubService struct {
	item   *azdo.WorkItem
	change *azdo.StateChange
	err    error

	getCalls     int
	commentCalls int
	updateCalls  int
}

var _ azdo.Service = (*stubService)(nil)

func (s *stubService) GetWorkItem(_ context.Context, _ int) (*azdo.WorkItem, error) {
	s.getCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.item, nil
}

func (s *stubService) GetComments(_ context.Context, _ int) ([]azdo.Comment, error) {
	s.commentCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.item.Comments, nil
}

func (s *stubService) UpdateWorkItemState(_ context.Context, _ int, _ string) (*azdo.StateChange, error) {
	s.updateCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.change, nil
}

// callRequest builds a CallToolRequest with the given arguments.
func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// sampleWorkItem returns a fully-populated projection for formatting tests.
func sampleWorkItem() *azdo.WorkItem {
	return &azdo.WorkItem{
		ID:            42,
		Title:         "Fix login crash",
		Type:          "Bug",
		State:         "Active",
		AssignedTo:    "A. Smith",
		CreatedBy:     "B. Jones",
		Description:   "<div>It crashes on submit.</div>",
		ReproSteps:    "<ol><li>Log in</li><li>Submit</li></ol>",
		CreatedDate:   "2026-01-10T09:00:00Z",
		ChangedDate:   "2026-01-12T16:30:00Z",
		AreaPath:      "Fabrikam\\Web",
		IterationPath: "Fabrikam\\Sprint 4",
		Tags:          []string{"bug", "urgent", "p1"},
		Comments: []azdo.Comment{
			{Author: "A. Smith", Text: "Reproduced locally.", CreatedDate: "2026-01-11T10:00:00Z"},
			{Author: "B. Jones", Text: "Fix is in review.", CreatedDate: "2026-01-12T15:00:00Z"},
		},
	}
}
