package azdo

import (
	"encoding/json"
	"sort"
	"strings"
)

// Namespaced field reference names. The field set is defined per process
// template (Agile, Scrum, CMMI, ...), so any of these may be absent from a
// given work item; readers substitute the documented default instead of
// failing.
const (
	fieldTitle         = "System.Title"
	fieldWorkItemType  = "System.WorkItemType"
	fieldState         = "System.State"
	fieldAssignedTo    = "System.AssignedTo"
	fieldCreatedBy     = "System.CreatedBy"
	fieldDescription   = "System.Description"
	fieldCreatedDate   = "System.CreatedDate"
	fieldChangedDate   = "System.ChangedDate"
	fieldAreaPath      = "System.AreaPath"
	fieldIterationPath = "System.IterationPath"
	fieldTags          = "System.Tags"
	fieldReproSteps    = "Microsoft.VSTS.TCM.ReproSteps"
)

// Defaults for absent or empty identity fields.
const (
	defaultAssignee = "Unassigned"
	defaultAuthor   = "Unknown"
)

// normalizeWorkItem reshapes a raw remote record into the stable WorkItem
// projection. comments may be nil (state-transition responses carry none).
func normalizeWorkItem(raw workItemResponse, comments []Comment) *WorkItem {
	f := raw.Fields
	return &WorkItem{
		ID:            raw.ID,
		Title:         stringField(f, fieldTitle),
		Type:          stringField(f, fieldWorkItemType),
		State:         stringField(f, fieldState),
		AssignedTo:    identityField(f, fieldAssignedTo, defaultAssignee),
		CreatedBy:     identityField(f, fieldCreatedBy, defaultAuthor),
		Description:   stringField(f, fieldDescription),
		ReproSteps:    stringField(f, fieldReproSteps),
		CreatedDate:   stringField(f, fieldCreatedDate),
		ChangedDate:   stringField(f, fieldChangedDate),
		AreaPath:      stringField(f, fieldAreaPath),
		IterationPath: stringField(f, fieldIterationPath),
		Tags:          splitTags(stringField(f, fieldTags)),
		Comments:      comments,
	}
}

// stringField decodes a field as text, returning "" when the field is
// absent or not a string.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// identityField decodes an object-or-string identity field and normalizes
// it to display text. Absent or undecodable values yield the fallback.
func identityField(fields map[string]json.RawMessage, key, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return fallback
	}
	return id.Display(fallback)
}

// splitTags turns the semicolon-delimited System.Tags value into discrete
// tag strings, preserving source order. Empty input yields nil.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// normalizeComments converts the wire comment list to the chronological,
// earliest-first Comment sequence. The endpoint is asked for ascending
// order, but the sort keeps the guarantee even if the server ignores it
// (createdDate is ISO 8601, so string order is chronological order).
func normalizeComments(raw commentListResponse) []Comment {
	comments := make([]Comment, 0, len(raw.Comments))
	for _, c := range raw.Comments {
		comments = append(comments, Comment{
			Author:      c.CreatedBy.Display(defaultAuthor),
			Text:        c.Text,
			CreatedDate: c.CreatedDate,
		})
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedDate < comments[j].CreatedDate
	})
	return comments
}
