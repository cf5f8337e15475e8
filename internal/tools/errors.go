package tools

import (
	"fmt"

	"github.com/avargas/azdo-mcp/internal/azdo"
)

// renderFailure turns a classified remote-layer error into the single
// user-facing line for a failed command: the attempted operation, the
// identifier, and a readable cause. Classification happens in the azdo
// package; this only phrases it.
func renderFailure(op string, id int, err error) string {
	e, ok := azdo.AsError(err)
	if !ok {
		return fmt.Sprintf("Failed to %s #%d: an unexpected error occurred.", op, id)
	}

	switch e.Kind {
	case azdo.KindNotFound:
		return fmt.Sprintf("Cannot %s: work item #%d was not found in the configured project.", op, id)
	case azdo.KindInvalidTransition:
		return fmt.Sprintf("Cannot update work item #%d: the transition to state %q was rejected by the workflow rules for this item's type.", id, e.State)
	case azdo.KindInvalidArgument:
		return fmt.Sprintf("Cannot %s #%d: %s.", op, id, e.Message)
	default:
		return fmt.Sprintf("Failed to %s #%d: %s.", op, id, remoteCause(e))
	}
}

func remoteCause(e *azdo.Error) string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return "the Azure DevOps request did not complete (network or transport failure)"
	}
	return "the Azure DevOps request failed"
}
