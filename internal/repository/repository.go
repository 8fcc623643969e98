// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage provides the real implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/aminulbx/genboard/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound when no account exists for the
	// address; login treats that as "create one".
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	// GetByOwner fetches a project only when it exists AND belongs to userID.
	// Both misses return the same NotFound error.
	GetByOwner(ctx context.Context, id, userID string) (*model.Project, error)
	ListByOwner(ctx context.Context, userID string, opts ListOptions) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	// DeleteCascade removes the project and everything under it in one
	// transaction, in the order components, then generations, then the
	// project row. The order matters: the schema's foreign keys reject any
	// other sequence.
	DeleteCascade(ctx context.Context, id string) error
}

type GenerationRepository interface {
	Create(ctx context.Context, gen *model.Generation) error
	GetByID(ctx context.Context, id string) (*model.Generation, error)
	// ListByProject returns up to opts.Limit generations, newest first.
	ListByProject(ctx context.Context, projectID string, opts ListOptions) ([]model.Generation, error)
	// ListAllByProject returns every generation of the project, for stats
	// scans.
	ListAllByProject(ctx context.Context, projectID string) ([]model.Generation, error)
	// CountRecentByUser counts generations created since the given instant
	// across ALL projects owned by userID. Quota accounting is per user, not
	// per project.
	CountRecentByUser(ctx context.Context, userID string, since time.Time) (int, error)
	// MarkRunning transitions pending -> running. Returns ErrNotFound when
	// the generation is missing or not pending, so a terminal record can
	// never regress.
	MarkRunning(ctx context.Context, id string) error
	// MarkCompleted transitions running -> completed with token usage.
	MarkCompleted(ctx context.Context, id string, tokensUsed int, completedAt time.Time) error
	// MarkFailed transitions a non-terminal generation to failed with a
	// reason. Accepts pending as well as running so that enqueue failures
	// can park the record.
	MarkFailed(ctx context.Context, id string, reason string, completedAt time.Time) error
}

type ComponentRepository interface {
	Create(ctx context.Context, component *model.Component) error
	// ListByProject returns the project's components in display order.
	ListByProject(ctx context.Context, projectID string) ([]model.Component, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
}

type ActivityRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	// ListByUserAction returns the user's most recent entries with the given
	// action tag, newest first.
	ListByUserAction(ctx context.Context, userID, action string, limit int) ([]model.ActivityLog, error)
}
