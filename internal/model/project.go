package model

import "time"

// Project is a container for generation activity. Each project is exclusively
// owned by one user; every ownership check in the service layer goes through
// the (projectID, userID) pair so that other users' projects look absent, not
// forbidden.
type Project struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status"      db:"status"` // free-text, "active" on create
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}

// ProjectSummary is a Project enriched with the derived fields the dashboard
// list view shows. Computed per row at read time, never stored.
type ProjectSummary struct {
	Project
	ComponentCount   int         `json:"componentCount"`
	LatestGeneration *Generation `json:"latestGeneration,omitempty"`
	UserName         string      `json:"userName"`
}

// ProjectDetail is the full single-project view: the project plus its
// components (display order), its most recent generations, and the recent
// update activities that reference it.
type ProjectDetail struct {
	Project
	Components       []Component   `json:"components"`
	Generations      []Generation  `json:"generations"`
	RecentActivities []ActivityLog `json:"recentActivities"`
}
