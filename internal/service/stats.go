package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/repository"
)

// StatsService computes the per-project usage summary by scanning the
// historical record at call time. No counters are cached or maintained
// incrementally; the result is a snapshot, and a generation mid-transition
// counts under whichever status the scan happens to see. That race is
// accepted — the read path never blocks the workers.
type StatsService struct {
	projects    repository.ProjectRepository
	generations repository.GenerationRepository
	components  repository.ComponentRepository
	logger      *slog.Logger
}

func NewStatsService(
	projects repository.ProjectRepository,
	generations repository.GenerationRepository,
	components repository.ComponentRepository,
	logger *slog.Logger,
) *StatsService {
	return &StatsService{
		projects:    projects,
		generations: generations,
		components:  components,
		logger:      logger,
	}
}

// Stats aggregates generation and component counters for one project.
func (s *StatsService) Stats(ctx context.Context, userID, projectID string) (*model.StatsSummary, error) {
	if _, err := s.projects.GetByOwner(ctx, projectID, userID); err != nil {
		return nil, err
	}

	gens, err := s.generations.ListAllByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to scan generations for stats",
			slog.String("projectId", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("scanning generations: %w", err)
	}

	components, err := s.components.ListByProject(ctx, projectID)
	if err != nil {
		s.logger.Error("failed to scan components for stats",
			slog.String("projectId", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("scanning components: %w", err)
	}

	summary := &model.StatsSummary{
		TotalGenerations: len(gens),
		TotalComponents:  len(components),
	}

	for _, gen := range gens {
		switch gen.Status {
		case model.GenerationCompleted:
			summary.SuccessfulGenerations++
			summary.TotalTokens += gen.TokensUsed
		case model.GenerationFailed:
			summary.FailedGenerations++
		}
	}

	for _, comp := range components {
		// CodeLines is 0 for malformed payloads; one bad component never
		// aborts the scan.
		summary.TotalComponentLines += comp.CodeLines()
	}

	return summary, nil
}
