package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskboard/internal/domain"
)

func newProject(name string, start time.Time, end *time.Time) *domain.Project {
	return &domain.Project{Name: name, Description: name + " description", StartDate: start, EndDate: end}
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestProjectLifecycle_ActiveThenOverdue(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newMemoryStore(), testConfig())

	p, err := svc.CreateProject(ctx, newProject("Website", today, nil))
	require.NoError(t, err)
	assert.Positive(t, p.ID)

	active, err := svc.ListActiveProjects(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, p.ID, active[0].ID)

	// An end date before the start date is rejected, so start yesterday too.
	changed := *p
	changed.StartDate = domain.AddDays(today, -1)
	changed.EndDate = datePtr(domain.AddDays(today, -1))
	_, err = svc.UpdateProject(ctx, &changed)
	require.NoError(t, err)

	overdue, err := svc.ListOverdueProjects(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, p.ID, overdue[0].ID)

	active, err = svc.ListActiveProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUpdateProject_EndBeforeStartIsBusinessRule(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewProjectService(store, testConfig())

	p, err := svc.CreateProject(ctx, newProject("Website", today, nil))
	require.NoError(t, err)

	changed := *p
	changed.EndDate = datePtr(domain.AddDays(today, -1))
	_, err = svc.UpdateProject(ctx, &changed)
	assert.ErrorIs(t, err, domain.ErrBusinessRule)
	assert.Equal(t, 1, store.writes)
}

func TestUpdateProject_Missing(t *testing.T) {
	svc := NewProjectService(newMemoryStore(), testConfig())

	p := newProject("Website", today, nil)
	p.ID = 5
	_, err := svc.UpdateProject(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	projects := NewProjectService(store, testConfig())

	withTasks, err := projects.CreateProject(ctx, newProject("Busy", today, nil))
	require.NoError(t, err)
	empty, err := projects.CreateProject(ctx, newProject("Idle", today, nil))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := store.SaveTask(ctx, &domain.Task{
			Name: "t", Description: "d", Status: "TODO", Priority: 1,
			DueDate: domain.AddDays(today, i), ProjectID: withTasks.ID, UserID: 1,
		})
		require.NoError(t, err)
	}

	t.Run("project with tasks", func(t *testing.T) {
		err := projects.DeleteProject(ctx, withTasks.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrBusinessRule)
		assert.Contains(t, err.Error(), "found 2 tasks")

		_, err = projects.GetProject(ctx, withTasks.ID)
		assert.NoError(t, err)
	})

	t.Run("project without tasks", func(t *testing.T) {
		require.NoError(t, projects.DeleteProject(ctx, empty.ID))

		_, err := projects.GetProject(ctx, empty.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing project", func(t *testing.T) {
		assert.ErrorIs(t, projects.DeleteProject(ctx, 404), domain.ErrNotFound)
	})

	t.Run("invalid id", func(t *testing.T) {
		assert.ErrorIs(t, projects.DeleteProject(ctx, 0), domain.ErrInvalidArgument)
	})
}

func TestListProjectsByDateRange(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newMemoryStore(), testConfig())

	seed := []*domain.Project{
		newProject("Early", domain.AddDays(today, -60), datePtr(domain.AddDays(today, -40))),
		newProject("Touching", domain.AddDays(today, -30), datePtr(domain.AddDays(today, -10))),
		newProject("Ongoing", domain.AddDays(today, -100), nil),
		newProject("Later", domain.AddDays(today, 5), nil),
	}
	for _, p := range seed {
		_, err := svc.CreateProject(ctx, p)
		require.NoError(t, err)
	}

	got, err := svc.ListProjectsByDateRange(ctx, domain.AddDays(today, -10), today)
	require.NoError(t, err)

	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Touching", "Ongoing"}, names)

	_, err = svc.ListProjectsByDateRange(ctx, today, domain.AddDays(today, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = svc.ListProjectsByDateRange(ctx, time.Time{}, today)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSearchProjectsByName(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newMemoryStore(), testConfig())

	for _, name := range []string{"Website Development", "Mobile App", "Web Shop"} {
		_, err := svc.CreateProject(ctx, newProject(name, today, nil))
		require.NoError(t, err)
	}

	got, err := svc.SearchProjectsByName(ctx, "WEB")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.SearchProjectsByName(ctx, "desktop")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = svc.SearchProjectsByName(ctx, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	n, err := svc.CountProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestProjectStatistics(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	svc := NewProjectService(store, testConfig())

	p, err := svc.CreateProject(ctx, newProject("Website", today, nil))
	require.NoError(t, err)

	stats, err := svc.ProjectStatistics(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalTasks)
	assert.Equal(t, 0.0, stats.CompletionPercentage)

	statuses := []string{"COMPLETED", "completed", "Completed", "TODO", "TODO", "TODO", "IN_PROGRESS", "BLOCKED", "TODO", "TODO"}
	for _, s := range statuses {
		_, err := store.SaveTask(ctx, &domain.Task{
			Name: "t", Description: "d", Status: s, Priority: 2,
			DueDate: today, ProjectID: p.ID, UserID: 1,
		})
		require.NoError(t, err)
	}

	stats, err = svc.ProjectStatistics(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", stats.ProjectName)
	assert.Equal(t, 10, stats.TotalTasks)
	assert.Equal(t, 3, stats.CompletedTasks)
	assert.Equal(t, 7, stats.PendingTasks)
	assert.Equal(t, 30.0, stats.CompletionPercentage)

	_, err = svc.ProjectStatistics(ctx, p.ID+100)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectExists(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newMemoryStore(), testConfig())

	p, err := svc.CreateProject(ctx, newProject("Website", today, nil))
	require.NoError(t, err)

	ok, err := svc.ProjectExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ProjectExists(ctx, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}
