package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/model"
	"github.com/aminulbx/genboard/internal/queue"
	"github.com/aminulbx/genboard/internal/repository"
)

// Hand-written in-memory mocks. They implement the same interfaces as the
// sqlite repositories, including the guarded generation transitions, so the
// services cannot tell the difference.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- users ---

type mockUserRepo struct {
	users  map[string]*model.User // by id
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// --- projects ---

type mockProjectRepo struct {
	projects  map[string]*model.Project
	nextID    int
	deleted   []string // cascade-deleted project ids, in call order
	updateErr error
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[string]*model.Project)}
}

func (m *mockProjectRepo) add(userID, name string) *model.Project {
	m.nextID++
	p := &model.Project{
		ID:        fmt.Sprintf("proj-%d", m.nextID),
		UserID:    userID,
		Name:      name,
		Status:    "active",
		CreatedAt: time.Now(),
	}
	m.projects[p.ID] = p
	return p
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	m.nextID++
	project.ID = fmt.Sprintf("proj-%d", m.nextID)
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepo) GetByOwner(_ context.Context, id, userID string) (*model.Project, error) {
	project, ok := m.projects[id]
	if !ok || project.UserID != userID {
		return nil, apperror.NotFound("project", id)
	}
	result := *project
	return &result, nil
}

func (m *mockProjectRepo) ListByOwner(_ context.Context, userID string, opts repository.ListOptions) ([]model.Project, error) {
	var result []model.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if opts.Limit > 0 && opts.Limit < len(result) {
		result = result[:opts.Limit]
	}
	return result, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.projects[project.ID]; !ok {
		return apperror.NotFound("project", project.ID)
	}
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepo) DeleteCascade(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return apperror.NotFound("project", id)
	}
	delete(m.projects, id)
	m.deleted = append(m.deleted, id)
	return nil
}

// --- generations ---

type mockGenerationRepo struct {
	gens      []*model.Generation
	projects  *mockProjectRepo // for resolving owners in CountRecentByUser
	nextID    int
	createErr error
	failedIDs []string // MarkFailed calls, in order
}

func newMockGenerationRepo(projects *mockProjectRepo) *mockGenerationRepo {
	return &mockGenerationRepo{projects: projects}
}

func (m *mockGenerationRepo) add(projectID string, status model.GenerationStatus, tokens int, createdAt time.Time) *model.Generation {
	m.nextID++
	gen := &model.Generation{
		ID:         fmt.Sprintf("gen-%d", m.nextID),
		ProjectID:  projectID,
		Prompt:     "prompt",
		Status:     status,
		TokensUsed: tokens,
		CreatedAt:  createdAt,
	}
	m.gens = append(m.gens, gen)
	return gen
}

func (m *mockGenerationRepo) Create(_ context.Context, gen *model.Generation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	gen.ID = fmt.Sprintf("gen-%d", m.nextID)
	stored := *gen
	m.gens = append(m.gens, &stored)
	return nil
}

func (m *mockGenerationRepo) GetByID(_ context.Context, id string) (*model.Generation, error) {
	for _, gen := range m.gens {
		if gen.ID == id {
			result := *gen
			return &result, nil
		}
	}
	return nil, apperror.NotFound("generation", id)
}

func (m *mockGenerationRepo) ListByProject(_ context.Context, projectID string, opts repository.ListOptions) ([]model.Generation, error) {
	all, _ := m.ListAllByProject(context.Background(), projectID)
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (m *mockGenerationRepo) ListAllByProject(_ context.Context, projectID string) ([]model.Generation, error) {
	var result []model.Generation
	for _, gen := range m.gens {
		if gen.ProjectID == projectID {
			result = append(result, *gen)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockGenerationRepo) CountRecentByUser(_ context.Context, userID string, since time.Time) (int, error) {
	count := 0
	for _, gen := range m.gens {
		project, ok := m.projects.projects[gen.ProjectID]
		if !ok || project.UserID != userID {
			continue
		}
		if !gen.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockGenerationRepo) MarkRunning(_ context.Context, id string) error {
	for _, gen := range m.gens {
		if gen.ID == id && gen.Status == model.GenerationPending {
			gen.Status = model.GenerationRunning
			return nil
		}
	}
	return apperror.NotFound("generation", id)
}

func (m *mockGenerationRepo) MarkCompleted(_ context.Context, id string, tokensUsed int, completedAt time.Time) error {
	for _, gen := range m.gens {
		if gen.ID == id && gen.Status == model.GenerationRunning {
			gen.Status = model.GenerationCompleted
			gen.TokensUsed = tokensUsed
			gen.CompletedAt = &completedAt
			return nil
		}
	}
	return apperror.NotFound("generation", id)
}

func (m *mockGenerationRepo) MarkFailed(_ context.Context, id string, reason string, completedAt time.Time) error {
	for _, gen := range m.gens {
		if gen.ID == id && !gen.Status.Terminal() {
			gen.Status = model.GenerationFailed
			gen.Error = reason
			gen.CompletedAt = &completedAt
			m.failedIDs = append(m.failedIDs, id)
			return nil
		}
	}
	return apperror.NotFound("generation", id)
}

// --- components ---

type mockComponentRepo struct {
	components []model.Component
	nextID     int
}

func (m *mockComponentRepo) add(projectID, data string) {
	m.nextID++
	m.components = append(m.components, model.Component{
		ID:        fmt.Sprintf("comp-%d", m.nextID),
		ProjectID: projectID,
		Data:      data,
	})
}

func (m *mockComponentRepo) Create(_ context.Context, component *model.Component) error {
	m.nextID++
	component.ID = fmt.Sprintf("comp-%d", m.nextID)
	m.components = append(m.components, *component)
	return nil
}

func (m *mockComponentRepo) ListByProject(_ context.Context, projectID string) ([]model.Component, error) {
	var result []model.Component
	for _, c := range m.components {
		if c.ProjectID == projectID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockComponentRepo) CountByProject(_ context.Context, projectID string) (int, error) {
	list, _ := m.ListByProject(context.Background(), projectID)
	return len(list), nil
}

// --- activity ---

type mockActivityRepo struct {
	entries   []model.ActivityLog
	createErr error
}

func (m *mockActivityRepo) Create(_ context.Context, entry *model.ActivityLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	entry.ID = fmt.Sprintf("act-%d", len(m.entries)+1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockActivityRepo) ListByUserAction(_ context.Context, userID, action string, limit int) ([]model.ActivityLog, error) {
	var result []model.ActivityLog
	for _, e := range m.entries {
		if e.UserID == userID && e.Action == action {
			result = append(result, e)
		}
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// --- queue ---

type mockQueue struct {
	jobs       []queue.Job
	enqueueErr error
}

func (m *mockQueue) Enqueue(_ context.Context, job queue.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockQueue) Dequeue(_ context.Context) (queue.Job, error) {
	if len(m.jobs) == 0 {
		return queue.Job{}, queue.ErrClosed
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	return job, nil
}

func (m *mockQueue) Close() error { return nil }
