// Package service contains the business logic layer: validation, ownership
// checks, quota enforcement, and orchestration between the repositories, the
// job queue, and the audit log. Services accept plain values and return
// domain errors; they know nothing about HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/queue"
	"github.com/aminulbx/genboard/internal/repository"
)

const (
	MaxPromptLength        = 5000
	DefaultGenerationLimit = 20
	MaxGenerationLimit     = 50
)

// GenerationService is the orchestrator for the generation pipeline's write
// path: it validates ownership, consults the quota guard, creates the
// pending record, enqueues the job, and records the audit entry. It returns
// before the worker runs — callers observe completion by polling.
type GenerationService struct {
	projects    repository.ProjectRepository
	generations repository.GenerationRepository
	jobs        queue.Queue
	quota       *QuotaGuard
	activity    *ActivityRecorder
	logger      *slog.Logger
	now         func() time.Time
}

func NewGenerationService(
	projects repository.ProjectRepository,
	generations repository.GenerationRepository,
	jobs queue.Queue,
	quota *QuotaGuard,
	activity *ActivityRecorder,
	logger *slog.Logger,
) *GenerationService {
	return &GenerationService{
		projects:    projects,
		generations: generations,
		jobs:        jobs,
		quota:       quota,
		activity:    activity,
		logger:      logger,
		now:         time.Now,
	}
}

// Generate accepts a generation request and hands it to the worker pool.
//
// Failure ordering matters: validation, then ownership, then quota — each
// check runs before any side effect, so a rejected request leaves no record
// and no audit entry. The one partial-failure case is enqueue: the record
// already exists, so rather than leave it pending forever with no job behind
// it, we park it as failed and surface 503.
func (s *GenerationService) Generate(ctx context.Context, userID, projectID, prompt string) (*model.Generation, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, apperror.ValidationFailed("prompt", "prompt is required")
	}
	// The limit is characters, not bytes — multi-byte prompts count by rune.
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return nil, apperror.ValidationFailed("prompt",
			fmt.Sprintf("prompt must be %d characters or less", MaxPromptLength))
	}

	if _, err := s.projects.GetByOwner(ctx, projectID, userID); err != nil {
		return nil, err
	}

	allowed, err := s.quota.Allow(ctx, userID)
	if err != nil {
		s.logger.Error("quota check failed",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("checking quota: %w", err)
	}
	if !allowed {
		return nil, apperror.QuotaExceeded("generation quota exceeded")
	}

	gen := &model.Generation{
		ProjectID: projectID,
		Prompt:    prompt,
		Status:    model.GenerationPending,
		CreatedAt: s.now(),
	}
	if err := s.generations.Create(ctx, gen); err != nil {
		s.logger.Error("failed to create generation",
			slog.String("projectId", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating generation: %w", err)
	}

	if err := s.jobs.Enqueue(ctx, queue.Job{GenerationID: gen.ID, Prompt: prompt}); err != nil {
		s.logger.Warn("could not enqueue generation job",
			slog.String("generationId", gen.ID),
			slog.String("error", err.Error()),
		)
		if failErr := s.generations.MarkFailed(ctx, gen.ID, "queue unavailable", s.now()); failErr != nil {
			s.logger.Error("could not park unqueued generation",
				slog.String("generationId", gen.ID),
				slog.String("error", failErr.Error()),
			)
		}
		return nil, apperror.Unavailable("generation queue is not accepting jobs")
	}

	s.activity.Record(ctx, userID, model.ActionGenerationStarted, model.ActivityMetadata{
		ProjectID:    projectID,
		GenerationID: gen.ID,
	})

	s.logger.Info("generation queued",
		slog.String("generationId", gen.ID),
		slog.String("projectId", projectID),
	)
	return gen, nil
}

// ListGenerations returns up to limit generations of the project, newest
// first. Within a project, completion order is not submission order — the
// worker pool may finish concurrently enqueued jobs out of order.
func (s *GenerationService) ListGenerations(ctx context.Context, userID, projectID string, limit int) ([]model.Generation, error) {
	if _, err := s.projects.GetByOwner(ctx, projectID, userID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultGenerationLimit
	}
	if limit > MaxGenerationLimit {
		limit = MaxGenerationLimit
	}

	gens, err := s.generations.ListByProject(ctx, projectID, repository.ListOptions{Limit: limit})
	if err != nil {
		s.logger.Error("failed to list generations",
			slog.String("projectId", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing generations: %w", err)
	}
	return gens, nil
}
