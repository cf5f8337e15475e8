package azdo

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation. The client produces exactly one of
// these per failure; callers render them and never re-classify.
type Kind string

const (
	// KindInvalidArgument means the input was rejected before any remote call.
	KindInvalidArgument Kind = "invalid_argument"
	// KindNotFound means Azure DevOps reported no such work item in the
	// configured project.
	KindNotFound Kind = "not_found"
	// KindInvalidTransition means Azure DevOps rejected the target state as
	// illegal for the work item's type or workflow.
	KindInvalidTransition Kind = "invalid_transition"
	// KindRemote covers everything else: auth rejection, network failure,
	// rate limiting, server errors.
	KindRemote Kind = "remote_error"
)

// Error is the single error type the client returns. It carries enough
// context (operation, work item id, target state, HTTP status) for callers
// to build a user-facing message without inspecting remote payloads.
type Error struct {
	Kind    Kind
	Op      string // e.g. "get work item"
	ID      int    // work item id, 0 when not applicable
	State   string // target state, only set for transitions
	Status  int    // HTTP status, 0 for transport-level failures
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.ID > 0 {
		return fmt.Sprintf("%s #%d: %s", e.Op, e.ID, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification from an error returned by the client.
// Unrecognized errors report KindRemote so callers always have a rendering.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRemote
}

// AsError returns the underlying *Error when err came from this package.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
