package azdo

import "encoding/json"

// Wire shapes for the Azure DevOps work item tracking REST API.
// Fields stay as raw JSON so the per-field normalizers can decide how to
// decode each value (the field set varies by process template).

type workItemResponse struct {
	ID     int                        `json:"id"`
	Rev    int                        `json:"rev"`
	Fields map[string]json.RawMessage `json:"fields"`
	URL    string                     `json:"url"`
}

type commentListResponse struct {
	Count    int               `json:"count"`
	Comments []commentResponse `json:"comments"`
}

type commentResponse struct {
	ID          int      `json:"id"`
	Text        string   `json:"text"`
	CreatedBy   Identity `json:"createdBy"`
	CreatedDate string   `json:"createdDate"`
}

// patchOperation is one entry of a JSON Patch document
// (application/json-patch+json). Azure DevOps uses "add" as its generic
// set-or-replace verb for field paths, whether or not the field exists.
type patchOperation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// remoteMessage is the error envelope Azure DevOps returns on non-2xx
// responses. Only used for classification, never surfaced verbatim.
type remoteMessage struct {
	Message string `json:"message"`
	TypeKey string `json:"typeKey"`
}

// WorkItem is the normalized, fully-populated projection of a remote work
// item. Every field is defaulted when absent from the remote schema, so a
// WorkItem is never partially filled.
type WorkItem struct {
	ID            int
	Title         string
	Type          string
	State         string
	AssignedTo    string
	CreatedBy     string
	Description   string
	ReproSteps    string
	CreatedDate   string
	ChangedDate   string
	AreaPath      string
	IterationPath string
	Tags          []string
	Comments      []Comment
}

// Comment is one discussion entry on a work item, author normalized the
// same way as WorkItem.AssignedTo.
type Comment struct {
	Author      string
	Text        string
	CreatedDate string
}

// StateChange is the result of a state transition: the updated projection
// (without comments) plus the state the item was in before the patch.
// PreviousState is best-effort and may be empty.
type StateChange struct {
	Item          *WorkItem
	PreviousState string
}
