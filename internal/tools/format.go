package tools

import (
	"fmt"
	"strings"

	"github.com/avargas/azdo-mcp/internal/azdo"
)

// formatWorkItem renders the normalized work item as one text block with a
// fixed section order, so the host always gets the same output shape:
// identity/type/state/assignment, description/repro steps, metadata,
// comments.
func formatWorkItem(item *azdo.WorkItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Work Item #%d: %s\n", item.ID, item.Title)
	fmt.Fprintf(&b, "Type: %s\n", item.Type)
	fmt.Fprintf(&b, "State: %s\n", item.State)
	fmt.Fprintf(&b, "Assigned To: %s\n", item.AssignedTo)

	b.WriteString("\n--- Description ---\n")
	if item.Description != "" {
		b.WriteString(item.Description)
		b.WriteString("\n")
	} else {
		b.WriteString("No description\n")
	}

	if item.ReproSteps != "" {
		b.WriteString("\n--- Steps to Reproduce ---\n")
		b.WriteString(item.ReproSteps)
		b.WriteString("\n")
	}

	b.WriteString("\n--- Details ---\n")
	fmt.Fprintf(&b, "Created: %s by %s\n", item.CreatedDate, item.CreatedBy)
	fmt.Fprintf(&b, "Last Changed: %s\n", item.ChangedDate)
	fmt.Fprintf(&b, "Area Path: %s\n", item.AreaPath)
	fmt.Fprintf(&b, "Iteration: %s\n", item.IterationPath)
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(item.Tags, ", "))
	}

	if len(item.Comments) > 0 {
		fmt.Fprintf(&b, "\n--- Comments (%d) ---\n", len(item.Comments))
		for i, c := range item.Comments {
			fmt.Fprintf(&b, "\nComment %d by %s on %s:\n%s\n", i+1, c.Author, c.CreatedDate, c.Text)
		}
	} else {
		b.WriteString("\n--- Comments ---\nNo comments\n")
	}

	return b.String()
}

// formatStateChange renders the confirmation for a completed transition:
// the id, the old-to-new state when the prior state was obtainable, and a
// compact re-statement of the updated record.
func formatStateChange(change *azdo.StateChange) string {
	item := change.Item
	var b strings.Builder

	fmt.Fprintf(&b, "Successfully updated work item #%d\n", item.ID)
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if change.PreviousState != "" {
		fmt.Fprintf(&b, "State: %s -> %s\n", change.PreviousState, item.State)
	} else {
		fmt.Fprintf(&b, "State: %s\n", item.State)
	}
	fmt.Fprintf(&b, "Type: %s\n", item.Type)
	fmt.Fprintf(&b, "Assigned To: %s", item.AssignedTo)

	return b.String()
}
