package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aminulbx/genboard/internal/apperror"
	"github.com/aminulbx/genboard/internal/model"
)

type projectFixture struct {
	projects   *mockProjectRepo
	gens       *mockGenerationRepo
	components *mockComponentRepo
	users      *mockUserRepo
	activity   *mockActivityRepo
	svc        *ProjectService
}

func newProjectFixture() *projectFixture {
	logger := testLogger()
	projects := newMockProjectRepo()
	gens := newMockGenerationRepo(projects)
	components := &mockComponentRepo{}
	users := newMockUserRepo()
	activity := &mockActivityRepo{}
	svc := NewProjectService(projects, gens, components, users,
		NewActivityRecorder(activity, logger), logger)
	return &projectFixture{
		projects:   projects,
		gens:       gens,
		components: components,
		users:      users,
		activity:   activity,
		svc:        svc,
	}
}

func TestProjectCreate(t *testing.T) {
	f := newProjectFixture()

	project, err := f.svc.Create(context.Background(), "user-1", "  Landing Page  ", "marketing site")
	require.NoError(t, err)

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Landing Page", project.Name)
	assert.Equal(t, "active", project.Status)

	require.Len(t, f.activity.entries, 1)
	assert.Equal(t, model.ActionProjectCreated, f.activity.entries[0].Action)
	md, ok := f.activity.entries[0].ParseMetadata()
	require.True(t, ok)
	assert.Equal(t, project.ID, md.ProjectID)
	assert.Equal(t, "Landing Page", md.ProjectName)
}

func TestProjectCreate_Validation(t *testing.T) {
	f := newProjectFixture()

	_, err := f.svc.Create(context.Background(), "user-1", "", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Create(context.Background(), "user-1", strings.Repeat("n", MaxProjectNameLength+1), "")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.Create(context.Background(), "user-1", "ok", strings.Repeat("d", MaxProjectDescriptionLength+1))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	assert.Empty(t, f.projects.projects)
}

func TestProjectCreate_AuditFailureDoesNotFailCreate(t *testing.T) {
	f := newProjectFixture()
	f.activity.createErr = assert.AnError

	project, err := f.svc.Create(context.Background(), "user-1", "Still Works", "")
	require.NoError(t, err, "audit writes are best-effort")
	assert.NotEmpty(t, project.ID)
}

func TestProjectList_Enrichment(t *testing.T) {
	f := newProjectFixture()

	owner := &model.User{Email: "ada@example.com", Name: "ada"}
	require.NoError(t, f.users.Create(context.Background(), owner))

	project := f.projects.add(owner.ID, "dashboard")
	f.components.add(project.ID, `{"code":"x"}`)
	f.components.add(project.ID, `{"code":"y"}`)

	old := f.gens.add(project.ID, model.GenerationCompleted, 10, time.Now().Add(-time.Hour))
	latest := f.gens.add(project.ID, model.GenerationPending, 0, time.Now())

	summaries, err := f.svc.List(context.Background(), owner.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	got := summaries[0]
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, 2, got.ComponentCount)
	assert.Equal(t, "ada", got.UserName)
	require.NotNil(t, got.LatestGeneration)
	assert.Equal(t, latest.ID, got.LatestGeneration.ID)
	assert.NotEqual(t, old.ID, got.LatestGeneration.ID)
}

func TestProjectGet(t *testing.T) {
	f := newProjectFixture()

	project := f.projects.add("user-1", "dashboard")
	f.components.add(project.ID, `{"code":"x"}`)
	for i := 0; i < 15; i++ {
		f.gens.add(project.ID, model.GenerationCompleted, 1, time.Now().Add(time.Duration(i)*time.Second))
	}

	detail, err := f.svc.Get(context.Background(), "user-1", project.ID)
	require.NoError(t, err)

	assert.Equal(t, project.ID, detail.ID)
	assert.Len(t, detail.Components, 1)
	assert.Len(t, detail.Generations, 10, "detail view caps its generation list")
}

func TestProjectUpdate_Partial(t *testing.T) {
	f := newProjectFixture()

	project := f.projects.add("user-1", "old name")
	project.Description = "old description"

	name := "new name"
	updated, err := f.svc.Update(context.Background(), "user-1", project.ID, UpdateInput{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "new name", updated.Name)
	assert.Equal(t, "old description", updated.Description, "unset fields are untouched")

	require.Len(t, f.activity.entries, 1)
	md, ok := f.activity.entries[0].ParseMetadata()
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "new name"}, md.Changes)
}

func TestProjectUpdate_Validation(t *testing.T) {
	f := newProjectFixture()
	project := f.projects.add("user-1", "keep me")

	empty := ""
	_, err := f.svc.Update(context.Background(), "user-1", project.ID, UpdateInput{Name: &empty})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	got, _ := f.projects.GetByOwner(context.Background(), project.ID, "user-1")
	assert.Equal(t, "keep me", got.Name)
}

func TestProjectDelete(t *testing.T) {
	f := newProjectFixture()

	project := f.projects.add("user-1", "doomed")

	err := f.svc.Delete(context.Background(), "user-1", project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{project.ID}, f.projects.deleted)

	require.Len(t, f.activity.entries, 1)
	assert.Equal(t, model.ActionProjectDeleted, f.activity.entries[0].Action)
	md, ok := f.activity.entries[0].ParseMetadata()
	require.True(t, ok)
	assert.Equal(t, "doomed", md.ProjectName)
}

func TestProjectOwnership(t *testing.T) {
	f := newProjectFixture()
	theirs := f.projects.add("user-2", "theirs")

	_, err := f.svc.Get(context.Background(), "user-1", theirs.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	name := "hijacked"
	_, err = f.svc.Update(context.Background(), "user-1", theirs.ID, UpdateInput{Name: &name})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = f.svc.Delete(context.Background(), "user-1", theirs.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Empty(t, f.projects.deleted)

	// A missing project reads the same as a foreign one.
	_, err = f.svc.Get(context.Background(), "user-1", "no-such-id")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProjectGet_RecentActivities(t *testing.T) {
	f := newProjectFixture()
	project := f.projects.add("user-1", "dashboard")
	other := f.projects.add("user-1", "other")

	name := "renamed"
	_, err := f.svc.Update(context.Background(), "user-1", project.ID, UpdateInput{Name: &name})
	require.NoError(t, err)
	_, err = f.svc.Update(context.Background(), "user-1", other.ID, UpdateInput{Name: &name})
	require.NoError(t, err)

	// A corrupt row in the log must not break the view.
	f.activity.entries = append(f.activity.entries, model.ActivityLog{
		UserID:   "user-1",
		Action:   model.ActionProjectUpdated,
		Metadata: "{broken",
	})

	detail, err := f.svc.Get(context.Background(), "user-1", project.ID)
	require.NoError(t, err)
	require.Len(t, detail.RecentActivities, 1, "only this project's parsable updates")
	md, ok := detail.RecentActivities[0].ParseMetadata()
	require.True(t, ok)
	assert.Equal(t, project.ID, md.ProjectID)
}
