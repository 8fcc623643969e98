package model

import "time"

// GenerationStatus is the lifecycle state of a generation request.
//
// State machine:
//
//	pending --(worker claims job)--> running --(success)--> completed
//	                                 running --(failure)--> failed
//
// completed and failed are absorbing: once a generation is terminal it is
// never written again, by anyone.
type GenerationStatus string

const (
	GenerationPending   GenerationStatus = "pending"
	GenerationRunning   GenerationStatus = "running"
	GenerationCompleted GenerationStatus = "completed"
	GenerationFailed    GenerationStatus = "failed"
)

// Terminal reports whether no further status transition can occur.
func (s GenerationStatus) Terminal() bool {
	return s == GenerationCompleted || s == GenerationFailed
}

// Generation is one AI generation request.
//
// Created by the orchestrator in state pending; mutated only by the worker
// that claimed its job, which eliminates write-write races on the record.
// TokensUsed is set only on completion, Error only on failure, and
// CompletedAt only in a terminal state.
type Generation struct {
	ID          string           `json:"id"          db:"id"`
	ProjectID   string           `json:"projectId"   db:"project_id"`
	Prompt      string           `json:"prompt"      db:"prompt"`
	Status      GenerationStatus `json:"status"      db:"status"`
	TokensUsed  int              `json:"tokensUsed"  db:"tokens_used"`
	Error       string           `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time        `json:"createdAt"   db:"created_at"`
	CompletedAt *time.Time       `json:"completedAt,omitempty" db:"completed_at"`
}
