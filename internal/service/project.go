package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/repository"
)

const (
	MaxProjectNameLength        = 255
	MaxProjectDescriptionLength = 1000
	DefaultProjectListLimit     = 20
	MaxProjectListLimit         = 100
)

// ProjectService handles project management around the generation pipeline:
// CRUD plus the dashboard read views. All operations are scoped to the
// calling user; a project owned by someone else is reported as absent.
type ProjectService struct {
	projects    repository.ProjectRepository
	generations repository.GenerationRepository
	components  repository.ComponentRepository
	users       repository.UserRepository
	activity    *ActivityRecorder
	logger      *slog.Logger
}

func NewProjectService(
	projects repository.ProjectRepository,
	generations repository.GenerationRepository,
	components repository.ComponentRepository,
	users repository.UserRepository,
	activity *ActivityRecorder,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		generations: generations,
		components:  components,
		users:       users,
		activity:    activity,
		logger:      logger,
	}
}

// Create validates and saves a new project in status "active".
func (s *ProjectService) Create(ctx context.Context, userID, name, description string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "project name is required")
	}
	if len(name) > MaxProjectNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("project name must be %d characters or less", MaxProjectNameLength))
	}
	if len(description) > MaxProjectDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxProjectDescriptionLength))
	}

	project := &model.Project{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Status:      "active",
	}
	if err := s.projects.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.activity.Record(ctx, userID, model.ActionProjectCreated, model.ActivityMetadata{
		ProjectID:   project.ID,
		ProjectName: project.Name,
	})

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("name", project.Name),
	)
	return project, nil
}

// List returns the user's projects, newest first, each enriched with its
// component count, latest generation, and owner name.
func (s *ProjectService) List(ctx context.Context, userID string, limit, offset int) ([]model.ProjectSummary, error) {
	if limit <= 0 {
		limit = DefaultProjectListLimit
	}
	if limit > MaxProjectListLimit {
		limit = MaxProjectListLimit
	}
	if offset < 0 {
		offset = 0
	}

	projects, err := s.projects.ListByOwner(ctx, userID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list projects", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	userName := ""
	if user, err := s.users.GetByID(ctx, userID); err == nil {
		userName = user.Name
	}

	summaries := make([]model.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summary := model.ProjectSummary{Project: project, UserName: userName}

		count, err := s.components.CountByProject(ctx, project.ID)
		if err != nil {
			return nil, fmt.Errorf("counting components of %s: %w", project.ID, err)
		}
		summary.ComponentCount = count

		latest, err := s.generations.ListByProject(ctx, project.ID, repository.ListOptions{Limit: 1})
		if err != nil {
			return nil, fmt.Errorf("fetching latest generation of %s: %w", project.ID, err)
		}
		if len(latest) > 0 {
			summary.LatestGeneration = &latest[0]
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Get returns the full project view: components in display order, the ten
// most recent generations, and the recent update activities referencing it.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*model.ProjectDetail, error) {
	project, err := s.projects.GetByOwner(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	components, err := s.components.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing components: %w", err)
	}

	generations, err := s.generations.ListByProject(ctx, projectID, repository.ListOptions{Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("listing generations: %w", err)
	}

	activities, err := s.activity.RecentProjectUpdates(ctx, userID, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	return &model.ProjectDetail{
		Project:          *project,
		Components:       components,
		Generations:      generations,
		RecentActivities: activities,
	}, nil
}

// UpdateInput carries the optional fields of an update; nil means "leave
// unchanged".
type UpdateInput struct {
	Name        *string
	Description *string
	Status      *string
}

// Update applies a partial update after an ownership check.
func (s *ProjectService) Update(ctx context.Context, userID, projectID string, input UpdateInput) (*model.Project, error) {
	project, err := s.projects.GetByOwner(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "project name is required")
		}
		if len(name) > MaxProjectNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("project name must be %d characters or less", MaxProjectNameLength))
		}
		project.Name = name
		changes["name"] = name
	}
	if input.Description != nil {
		if len(*input.Description) > MaxProjectDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxProjectDescriptionLength))
		}
		project.Description = strings.TrimSpace(*input.Description)
		changes["description"] = project.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
		changes["status"] = project.Status
	}

	if err := s.projects.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project",
			slog.String("id", projectID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.activity.Record(ctx, userID, model.ActionProjectUpdated, model.ActivityMetadata{
		ProjectID: project.ID,
		Changes:   changes,
	})

	return project, nil
}

// Delete removes a project and everything under it. The repository deletes
// components, then generations, then the project row, in one transaction —
// the order the schema's foreign keys require.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	project, err := s.projects.GetByOwner(ctx, projectID, userID)
	if err != nil {
		return err
	}

	if err := s.projects.DeleteCascade(ctx, projectID); err != nil {
		s.logger.Error("failed to delete project",
			slog.String("id", projectID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting project: %w", err)
	}

	s.activity.Record(ctx, userID, model.ActionProjectDeleted, model.ActivityMetadata{
		ProjectID:   projectID,
		ProjectName: project.Name,
	})

	s.logger.Info("project deleted", slog.String("id", projectID))
	return nil
}
