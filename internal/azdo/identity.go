package azdo

import "encoding/json"

// Identity is a tagged union for Azure DevOps identity fields, which arrive
// either as an object like {"displayName": "...", "uniqueName": "..."} or as
// a bare string, depending on API version and process template. Decoding
// happens once here; everything downstream sees plain text via Display.
type Identity struct {
	DisplayName string
	UniqueName  string
	Literal     string // set when the wire value was a bare string
}

type identityObject struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
	ID          string `json:"id"`
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = Identity{Literal: s}
		return nil
	}
	var obj identityObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*i = Identity{DisplayName: obj.DisplayName, UniqueName: obj.UniqueName}
	return nil
}

// Display normalizes the identity to a single textual representation:
// display name, then unique name, then the bare string form, then fallback.
// The result is never empty as long as fallback is non-empty.
func (i Identity) Display(fallback string) string {
	switch {
	case i.DisplayName != "":
		return i.DisplayName
	case i.UniqueName != "":
		return i.UniqueName
	case i.Literal != "":
		return i.Literal
	default:
		return fallback
	}
}
