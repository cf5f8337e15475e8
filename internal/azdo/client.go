// Package azdo is the remote access layer for Azure DevOps work item
// tracking. It owns the single authenticated connection to the service and
// exposes three operations behind the Service interface, always returning
// either a fully-normalized record or a classified *Error.
package azdo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// apiVersion is the work item tracking REST API version.
	apiVersion = "7.1"
	// commentsAPIVersion: the comments endpoint is still versioned as a
	// preview API.
	commentsAPIVersion = "7.1-preview.4"

	defaultTimeout = 30 * time.Second

	// stateFieldPath is the JSON Patch path of the workflow state field.
	stateFieldPath = "/fields/" + fieldState
)

// Service is the contract the command dispatcher depends on. Tests stub it;
// Client is the production implementation.
type Service interface {
	// GetWorkItem fetches the full work item plus its discussion entries.
	GetWorkItem(ctx context.Context, id int) (*WorkItem, error)
	// GetComments fetches the discussion entries, earliest first. An empty
	// slice is a valid result distinct from an error.
	GetComments(ctx context.Context, id int) ([]Comment, error)
	// UpdateWorkItemState sets the workflow state field and returns the
	// updated projection. Legality of the transition is enforced remotely.
	UpdateWorkItemState(ctx context.Context, id int, newState string) (*StateChange, error)
}

// Client talks to one Azure DevOps organization/project over the REST API,
// authenticated with a personal access token. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	baseURL string // e.g. https://dev.azure.com/myorg
	project string
	pat     string
	http    *http.Client
	log     *zap.Logger
}

var _ Service = (*Client)(nil)

// NewClient builds the process-wide client. baseURL is the organization URL
// (https://dev.azure.com/{org} for hosted, or an on-prem collection URL).
func NewClient(baseURL, project, pat string, log *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("organization URL is required")
	}
	if project == "" {
		return nil, fmt.Errorf("project is required")
	}
	if pat == "" {
		return nil, fmt.Errorf("personal access token is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		project: project,
		pat:     pat,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}, nil
}

// GetWorkItem retrieves the raw record with all fields, merges in the
// comment sequence, and returns the normalized projection.
func (c *Client) GetWorkItem(ctx context.Context, id int) (*WorkItem, error) {
	const op = "get work item"
	if id <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: op, ID: id, Message: "work item id must be a positive integer"}
	}

	raw, err := c.fetchRaw(ctx, op, id, url.Values{"$expand": {"all"}})
	if err != nil {
		return nil, err
	}

	comments, err := c.GetComments(ctx, id)
	if err != nil {
		return nil, err
	}

	item := normalizeWorkItem(raw, comments)
	c.log.Debug("fetched work item",
		zap.Int("id", item.ID),
		zap.String("type", item.Type),
		zap.String("state", item.State),
		zap.Int("comments", len(item.Comments)))
	return item, nil
}

// GetComments retrieves all discussion entries for a work item, normalized
// and ordered earliest first.
func (c *Client) GetComments(ctx context.Context, id int) ([]Comment, error) {
	const op = "get work item comments"
	if id <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: op, ID: id, Message: "work item id must be a positive integer"}
	}

	path := fmt.Sprintf("%s/_apis/wit/workItems/%d/comments", url.PathEscape(c.project), id)
	params := url.Values{
		"api-version": {commentsAPIVersion},
		"order":       {"asc"},
	}
	body, status, err := c.do(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return nil, &Error{Kind: KindRemote, Op: op, ID: id, Err: err}
	}
	if status == http.StatusNotFound {
		return nil, &Error{Kind: KindNotFound, Op: op, ID: id, Status: status, Message: "work item not found in project " + c.project}
	}
	if status < 200 || status > 299 {
		return nil, c.remoteError(op, id, status, body)
	}

	var list commentListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, &Error{Kind: KindRemote, Op: op, ID: id, Status: status, Message: "malformed comments response", Err: err}
	}
	return normalizeComments(list), nil
}

// UpdateWorkItemState issues a single JSON Patch replacing the state field
// and returns the updated projection. Azure DevOps uses "add" as its
// generic set-or-replace verb for field paths, so the same document works
// whether the field exists or not. Exactly one mutating request is made.
func (c *Client) UpdateWorkItemState(ctx context.Context, id int, newState string) (*StateChange, error) {
	const op = "update work item state"
	if id <= 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: op, ID: id, State: newState, Message: "work item id must be a positive integer"}
	}
	if strings.TrimSpace(newState) == "" {
		return nil, &Error{Kind: KindInvalidArgument, Op: op, ID: id, Message: "new state must be non-empty"}
	}

	// Best-effort read of the current state so the caller can report the
	// old-to-new transition. A failure here never fails the update; the
	// patch below remains the only mutating call.
	previous := ""
	if raw, err := c.fetchRaw(ctx, op, id, url.Values{"fields": {fieldState}}); err == nil {
		previous = stringField(raw.Fields, fieldState)
	}

	patch := []patchOperation{{Op: "add", Path: stateFieldPath, Value: newState}}
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, &Error{Kind: KindRemote, Op: op, ID: id, State: newState, Err: err}
	}

	path := fmt.Sprintf("%s/_apis/wit/workitems/%d", url.PathEscape(c.project), id)
	params := url.Values{"api-version": {apiVersion}}
	body, status, err := c.do(ctx, http.MethodPatch, path, params, payload, "application/json-patch+json")
	if err != nil {
		return nil, &Error{Kind: KindRemote, Op: op, ID: id, State: newState, Err: err}
	}

	switch {
	case status == http.StatusNotFound:
		return nil, &Error{Kind: KindNotFound, Op: op, ID: id, State: newState, Status: status, Message: "work item not found in project " + c.project}
	case status == http.StatusBadRequest:
		// Rule validation failures (state not legal for the item's type or
		// workflow) come back as 400 with a RuleValidationException envelope.
		return nil, &Error{Kind: KindInvalidTransition, Op: op, ID: id, State: newState, Status: status,
			Message: fmt.Sprintf("state %q rejected: %s", newState, remoteSummary(body))}
	case status < 200 || status > 299:
		e := c.remoteError(op, id, status, body)
		e.State = newState
		return nil, e
	}

	var raw workItemResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Kind: KindRemote, Op: op, ID: id, State: newState, Status: status, Message: "malformed update response", Err: err}
	}

	item := normalizeWorkItem(raw, nil)
	c.log.Info("updated work item state",
		zap.Int("id", id),
		zap.String("from", previous),
		zap.String("to", item.State))
	return &StateChange{Item: item, PreviousState: previous}, nil
}

// fetchRaw performs the work item GET shared by reads and the pre-update
// state lookup, with classification applied.
func (c *Client) fetchRaw(ctx context.Context, op string, id int, extra url.Values) (workItemResponse, error) {
	path := fmt.Sprintf("%s/_apis/wit/workitems/%d", url.PathEscape(c.project), id)
	params := url.Values{"api-version": {apiVersion}}
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}

	body, status, err := c.do(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return workItemResponse{}, &Error{Kind: KindRemote, Op: op, ID: id, Err: err}
	}
	if status == http.StatusNotFound {
		return workItemResponse{}, &Error{Kind: KindNotFound, Op: op, ID: id, Status: status, Message: "work item not found in project " + c.project}
	}
	if status < 200 || status > 299 {
		return workItemResponse{}, c.remoteError(op, id, status, body)
	}

	var raw workItemResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return workItemResponse{}, &Error{Kind: KindRemote, Op: op, ID: id, Status: status, Message: "malformed work item response", Err: err}
	}
	return raw, nil
}

// do issues one HTTP request and returns the response body and status.
// Transport failures are returned as-is for the caller to classify. There
// is deliberately no retry loop; callers re-invoke if they want another
// attempt.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, contentType string) ([]byte, int, error) {
	fullURL := c.baseURL + "/" + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.SetBasicAuth("", c.pat)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return respBody, resp.StatusCode, nil
}

// remoteError builds the catch-all classification for unexpected statuses,
// with a phrase per failure family instead of the raw remote payload.
func (c *Client) remoteError(op string, id, status int, body []byte) *Error {
	var msg string
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		msg = "authentication was rejected (check the personal access token)"
	case status == http.StatusTooManyRequests:
		msg = "the service is rate limiting requests"
	case status >= 500:
		msg = fmt.Sprintf("the service reported a server error (HTTP %d)", status)
	default:
		msg = fmt.Sprintf("unexpected response (HTTP %d): %s", status, remoteSummary(body))
	}
	c.log.Warn("remote call failed",
		zap.String("op", op),
		zap.Int("id", id),
		zap.Int("status", status))
	return &Error{Kind: KindRemote, Op: op, ID: id, Status: status, Message: msg}
}

// remoteSummary extracts the short message from an Azure DevOps error
// envelope, truncated so it stays a summary rather than a payload dump.
func remoteSummary(body []byte) string {
	var envelope remoteMessage
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return truncate(envelope.Message, 200)
	}
	return "no further detail from the service"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
