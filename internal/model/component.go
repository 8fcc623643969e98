package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Component is a generated code artifact attached to a project.
//
// Data holds the raw JSON payload produced by the AI collaborator. The shape
// is loosely typed upstream, so we keep the raw text and parse on demand:
// known fields are read through ComponentData, anything unparsable falls back
// to "opaque payload, contributes nothing to derived stats".
type Component struct {
	ID           string    `json:"id"           db:"id"`
	ProjectID    string    `json:"projectId"    db:"project_id"`
	GenerationID string    `json:"generationId" db:"generation_id"`
	Name         string    `json:"name"         db:"name"`
	Data         string    `json:"componentData" db:"component_data"` // raw JSON payload
	Order        int       `json:"order"        db:"display_order"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
}

// ComponentData is the known shape of a component payload.
type ComponentData struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// CodeLines returns the newline-delimited line count of the payload's code
// field. A malformed payload or a missing code field counts as 0 lines —
// never an error, so one bad payload cannot poison a stats scan.
func (c Component) CodeLines() int {
	var data ComponentData
	if err := json.Unmarshal([]byte(c.Data), &data); err != nil {
		return 0
	}
	if data.Code == "" {
		return 0
	}
	return len(strings.Split(data.Code, "\n"))
}
