package azdo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testProject = "Fabrikam"

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	client, err := NewClient(ts.URL, testProject, "secret-pat", zap.NewNop())
	require.NoError(t, err)
	client.http = ts.Client()
	return client, ts
}

// serveWorkItem writes a work item response with the given fields.
func serveWorkItem(w http.ResponseWriter, id int, fields map[string]any) {
	raw := map[string]any{"id": id, "fields": fields}
	_ = json.NewEncoder(w).Encode(raw)
}

func serveComments(w http.ResponseWriter, comments []map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"count": len(comments), "comments": comments})
}

func TestNewClient_Validation(t *testing.T) {
	log := zap.NewNop()

	_, err := NewClient("", "proj", "pat", log)
	assert.Error(t, err)

	_, err = NewClient("https://dev.azure.com/org", "", "pat", log)
	assert.Error(t, err)

	_, err = NewClient("https://dev.azure.com/org", "proj", "", log)
	assert.Error(t, err)

	c, err := NewClient("https://dev.azure.com/org/", "proj", "pat", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://dev.azure.com/org", c.baseURL)
}

func TestGetWorkItem_ReturnsRequestedID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/comments"):
			assert.Equal(t, "asc", r.URL.Query().Get("order"))
			serveComments(w, []map[string]any{
				{"text": "first", "createdBy": map[string]string{"displayName": "A. Smith"}, "createdDate": "2026-01-02T00:00:00Z"},
			})
		default:
			assert.Equal(t, "/"+testProject+"/_apis/wit/workitems/42", r.URL.Path)
			assert.Equal(t, "all", r.URL.Query().Get("$expand"))
			assert.NotEmpty(t, r.Header.Get("Authorization"))
			serveWorkItem(w, 42, map[string]any{
				"System.Title":        "Fix login crash",
				"System.WorkItemType": "Bug",
				"System.State":        "New",
				"System.AssignedTo":   map[string]string{"displayName": "A. Smith", "uniqueName": "asmith@x.com"},
				"System.Tags":         "bug; urgent; p1",
			})
		}
	}))

	item, err := client.GetWorkItem(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, 42, item.ID)
	assert.Equal(t, "Fix login crash", item.Title)
	assert.Equal(t, "A. Smith", item.AssignedTo)
	assert.Equal(t, []string{"bug", "urgent", "p1"}, item.Tags)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "A. Smith", item.Comments[0].Author)
}

func TestGetWorkItem_ReadsAreIdempotent(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/comments") {
			serveComments(w, []map[string]any{
				{"text": "hello", "createdBy": "B. Jones", "createdDate": "2026-01-02T00:00:00Z"},
			})
			return
		}
		serveWorkItem(w, 42, map[string]any{
			"System.Title": "Stable",
			"System.State": "Active",
			"System.Tags":  "a; b",
		})
	}))

	first, err := client.GetWorkItem(context.Background(), 42)
	require.NoError(t, err)
	second, err := client.GetWorkItem(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetWorkItem_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "TF401232: Work item 999 does not exist"})
	}))

	_, err := client.GetWorkItem(context.Background(), 999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetWorkItem_AuthRejectionIsRemoteError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.GetWorkItem(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Contains(t, e.Message, "authentication")
}

func TestGetWorkItem_NetworkFailureIsRemoteError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	client, err := NewClient(ts.URL, testProject, "pat", zap.NewNop())
	require.NoError(t, err)

	_, err = client.GetWorkItem(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, KindRemote, KindOf(err))
}

func TestGetWorkItem_RejectsNonPositiveID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no remote call expected")
	}))

	_, err := client.GetWorkItem(context.Background(), 0)
	require.Error(t, err)
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestGetComments_EmptyIsValid(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		serveComments(w, nil)
	}))

	comments, err := client.GetComments(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestUpdateWorkItemState_Accepted(t *testing.T) {
	var patchCount int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			// Pre-update state lookup, fields-only.
			assert.Equal(t, fieldState, r.URL.Query().Get("fields"))
			serveWorkItem(w, 42, map[string]any{"System.State": "New"})
		case http.MethodPatch:
			patchCount++
			assert.Equal(t, "application/json-patch+json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			var ops []map[string]any
			require.NoError(t, json.Unmarshal(body, &ops))
			require.Len(t, ops, 1)
			assert.Equal(t, "add", ops[0]["op"])
			assert.Equal(t, "/fields/System.State", ops[0]["path"])
			assert.Equal(t, "Active", ops[0]["value"])

			serveWorkItem(w, 42, map[string]any{
				"System.Title": "Fix login crash",
				"System.State": "Active",
			})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))

	change, err := client.UpdateWorkItemState(context.Background(), 42, "Active")
	require.NoError(t, err)

	assert.Equal(t, 1, patchCount)
	assert.Equal(t, "Active", change.Item.State)
	assert.Equal(t, "New", change.PreviousState)
	assert.Equal(t, 42, change.Item.ID)
}

func TestUpdateWorkItemState_RejectedTransition(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			serveWorkItem(w, 42, map[string]any{"System.State": "New"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": "The field 'State' contains the value 'Shipped' that is not in the list of supported values",
			"typeKey": "RuleValidationException",
		})
	}))

	_, err := client.UpdateWorkItemState(context.Background(), 42, "Shipped")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 42, e.ID)
	assert.Equal(t, "Shipped", e.State)
}

func TestUpdateWorkItemState_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.UpdateWorkItemState(context.Background(), 999, "Active")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestUpdateWorkItemState_PreReadFailureDoesNotFailUpdate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serveWorkItem(w, 42, map[string]any{"System.State": "Active"})
	}))

	change, err := client.UpdateWorkItemState(context.Background(), 42, "Active")
	require.NoError(t, err)
	assert.Equal(t, "Active", change.Item.State)
	assert.Empty(t, change.PreviousState)
}

func TestUpdateWorkItemState_ValidatesInput(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no remote call expected")
	}))

	_, err := client.UpdateWorkItemState(context.Background(), -1, "Active")
	assert.Equal(t, KindInvalidArgument, KindOf(err))

	_, err = client.UpdateWorkItemState(context.Background(), 42, "   ")
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestKindOf_UnknownErrorIsRemote(t *testing.T) {
	assert.Equal(t, KindRemote, KindOf(fmt.Errorf("plain error")))
}
