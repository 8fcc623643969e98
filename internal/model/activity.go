package model

import (
	"encoding/json"
	"time"
)

// Activity action tags. Free-form strings in the DB, but writers stick to
// this fixed set so readers can filter on them.
const (
	ActionProjectCreated    = "project_created"
	ActionProjectUpdated    = "project_updated"
	ActionProjectDeleted    = "project_deleted"
	ActionGenerationStarted = "generation_started"
)

// ActivityLog is an append-only audit record. Metadata is free-form JSON
// text; a writer never fails the operation it describes because of a logging
// problem, and a reader that cannot parse an entry's metadata simply excludes
// that entry from filtered results.
type ActivityLog struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	Action    string    `json:"action"    db:"action"`
	Metadata  string    `json:"metadata"  db:"metadata"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ActivityMetadata is the union of fields writers put in audit metadata.
// Only the fields relevant to a given action are set.
type ActivityMetadata struct {
	ProjectID    string         `json:"projectId,omitempty"`
	ProjectName  string         `json:"projectName,omitempty"`
	GenerationID string         `json:"generationId,omitempty"`
	Changes      map[string]any `json:"changes,omitempty"`
}

// ParseMetadata decodes the entry's metadata. The bool is false when the
// payload is not valid JSON; callers treat that as "no metadata", not an
// error.
func (a ActivityLog) ParseMetadata() (ActivityMetadata, bool) {
	var md ActivityMetadata
	if err := json.Unmarshal([]byte(a.Metadata), &md); err != nil {
		return ActivityMetadata{}, false
	}
	return md, true
}
