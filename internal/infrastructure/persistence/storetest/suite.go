// Package storetest holds a compliance suite that every tracker.Store implementation must pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskboard/internal/application/tracker"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/ptr"
)

var day = domain.Date(2026, 3, 15)

func saveUser(t *testing.T, store tracker.Store, username, email string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: email, Role: "USER"}
	id, err := store.SaveUser(context.Background(), u)
	require.NoError(t, err)
	require.Positive(t, id)
	u.ID = id
	return u
}

func saveProject(t *testing.T, store tracker.Store, name string, end *time.Time) *domain.Project {
	t.Helper()
	p := &domain.Project{Name: name, Description: name + " description", StartDate: domain.AddDays(day, -30), EndDate: end}
	id, err := store.SaveProject(context.Background(), p)
	require.NoError(t, err)
	require.Positive(t, id)
	p.ID = id
	return p
}

func saveTask(t *testing.T, store tracker.Store, projectID, userID int64, status string, due time.Time) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Name:        "task " + status,
		Description: "description",
		Status:      status,
		Priority:    3,
		DueDate:     due,
		ProjectID:   projectID,
		UserID:      userID,
	}
	id, err := store.SaveTask(context.Background(), task)
	require.NoError(t, err)
	require.Positive(t, id)
	task.ID = id
	return task
}

func ids[T any](items []*T, id func(*T) int64) []int64 {
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = id(item)
	}
	return out
}

func taskIDs(tasks []*domain.Task) []int64 {
	return ids(tasks, func(t *domain.Task) int64 { return t.ID })
}

// RunStoreComplianceTest runs the standard store checks.
// setup returns a fresh, empty store and a teardown func.
func RunStoreComplianceTest(t *testing.T, setup func() (tracker.Store, func())) {
	t.Run("Users", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		john := saveUser(t, store, "john_doe", "John@Example.com")
		jane := saveUser(t, store, "jane_doe", "jane@example.com")
		assert.Greater(t, jane.ID, john.ID, "ids increase")

		fetched, err := store.FindUserByID(ctx, john.ID)
		require.NoError(t, err)
		assert.Equal(t, john, fetched)

		all, err := store.FindAllUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{john.ID, jane.ID}, ids(all, func(u *domain.User) int64 { return u.ID }))

		john.Role = "ADMIN"
		john.Email = "john.doe@example.com"
		require.NoError(t, store.UpdateUser(ctx, john))
		fetched, err = store.FindUserByID(ctx, john.ID)
		require.NoError(t, err)
		assert.Equal(t, john, fetched)

		require.NoError(t, store.DeleteUserByID(ctx, jane.ID))
		_, err = store.FindUserByID(ctx, jane.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, store.DeleteUserByID(ctx, jane.ID), domain.ErrNotFound)
		assert.ErrorIs(t, store.UpdateUser(ctx, jane), domain.ErrNotFound)
	})

	t.Run("UserEmailLookup", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		lookup, ok := store.(tracker.UserEmailLookup)
		if !ok {
			t.Skip("store has no indexed email lookup")
		}

		john := saveUser(t, store, "john_doe", "john@example.com")

		found, err := lookup.FindUserByEmail(ctx, "JOHN@example.COM")
		require.NoError(t, err)
		assert.Equal(t, john.ID, found.ID)

		_, err = lookup.FindUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Projects", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		ongoing := saveProject(t, store, "Ongoing", nil)
		finished := saveProject(t, store, "Finished", ptr.To(domain.AddDays(day, -1)))

		fetched, err := store.FindProjectByID(ctx, finished.ID)
		require.NoError(t, err)
		assert.Equal(t, finished, fetched, "dates survive the round trip")

		_, err = store.FindProjectByID(ctx, finished.ID+1000)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		active, err := store.FindActiveProjects(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, ongoing.ID, active[0].ID)
		assert.Nil(t, active[0].EndDate)

		n, err := store.CountProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		ongoing.EndDate = ptr.To(day)
		ongoing.Name = "Closed"
		require.NoError(t, store.UpdateProject(ctx, ongoing))
		active, err = store.FindActiveProjects(ctx)
		require.NoError(t, err)
		assert.Empty(t, active)

		all, err := store.FindAllProjects(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, ongoing, all[0])

		require.NoError(t, store.DeleteProjectByID(ctx, finished.ID))
		assert.ErrorIs(t, store.DeleteProjectByID(ctx, finished.ID), domain.ErrNotFound)
		assert.ErrorIs(t, store.UpdateProject(ctx, finished), domain.ErrNotFound)
	})

	t.Run("Tasks", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		user := saveUser(t, store, "john_doe", "john@example.com")
		other := saveUser(t, store, "jane_doe", "jane@example.com")
		project := saveProject(t, store, "Website", nil)
		empty := saveProject(t, store, "Empty", nil)

		todo := saveTask(t, store, project.ID, user.ID, "todo", domain.AddDays(day, -2))
		done := saveTask(t, store, project.ID, other.ID, "COMPLETED", domain.AddDays(day, -1))
		future := saveTask(t, store, project.ID, user.ID, "TODO", day)

		fetched, err := store.FindTaskByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo, fetched)

		_, err = store.FindTaskByID(ctx, future.ID+1000)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		byProject, err := store.FindTasksByProjectID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{todo.ID, done.ID, future.ID}, taskIDs(byProject))

		none, err := store.FindTasksByProjectID(ctx, empty.ID)
		require.NoError(t, err)
		assert.Empty(t, none)

		byUser, err := store.FindTasksByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{todo.ID, future.ID}, taskIDs(byUser))

		byStatus, err := store.FindTasksByStatus(ctx, "TODO")
		require.NoError(t, err)
		assert.Equal(t, []int64{todo.ID, future.ID}, taskIDs(byStatus), "status match ignores case")

		overdue, err := store.FindOverdueTasks(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, []int64{todo.ID, done.ID}, taskIDs(overdue), "date-only filter keeps completed tasks")

		n, err := store.CountTasksByProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		todo.Status = "IN_PROGRESS"
		todo.Priority = 5
		todo.UserID = other.ID
		require.NoError(t, store.UpdateTask(ctx, todo))
		fetched, err = store.FindTaskByID(ctx, todo.ID)
		require.NoError(t, err)
		assert.Equal(t, todo, fetched)

		require.NoError(t, store.DeleteTaskByID(ctx, future.ID))
		all, err := store.FindAllTasks(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{todo.ID, done.ID}, taskIDs(all))
		assert.ErrorIs(t, store.DeleteTaskByID(ctx, future.ID), domain.ErrNotFound)
	})

	t.Run("DateRangeEdges", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		user := saveUser(t, store, "john_doe", "john@example.com")
		last := domain.Date(domain.MaxYear, 12, 31)
		project := saveProject(t, store, "Long Haul", &last)
		first := saveTask(t, store, project.ID, user.ID, "TODO", domain.Date(domain.MinYear, 1, 2))
		current := saveTask(t, store, project.ID, user.ID, "TODO", day)

		fetchedProject, err := store.FindProjectByID(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project, fetchedProject)

		fetchedTask, err := store.FindTaskByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, fetchedTask)

		overdue, err := store.FindOverdueTasks(ctx, day)
		require.NoError(t, err)
		assert.Equal(t, []int64{first.ID}, taskIDs(overdue))

		overdue, err = store.FindOverdueTasks(ctx, domain.AddDays(day, 1))
		require.NoError(t, err)
		assert.Equal(t, []int64{first.ID, current.ID}, taskIDs(overdue))
	})

	t.Run("AtomicCommits", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		var id int64
		err := store.Atomic(ctx, func(tx tracker.Store) error {
			var err error
			id, err = tx.SaveUser(ctx, &domain.User{Username: "john_doe", Email: "john@example.com", Role: "USER"})
			return err
		})
		require.NoError(t, err)

		_, err = store.FindUserByID(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("AtomicRollsBackOnError", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()
		errAbort := errors.New("abort")

		err := store.Atomic(ctx, func(tx tracker.Store) error {
			if _, err := tx.SaveUser(ctx, &domain.User{Username: "john_doe", Email: "john@example.com", Role: "USER"}); err != nil {
				return err
			}
			return errAbort
		})
		assert.ErrorIs(t, err, errAbort)

		users, err := store.FindAllUsers(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("AtomicRollsBackOnPanic", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		assert.Panics(t, func() {
			_ = store.Atomic(ctx, func(tx tracker.Store) error {
				if _, err := tx.SaveUser(ctx, &domain.User{Username: "john_doe", Email: "john@example.com", Role: "USER"}); err != nil {
					return err
				}
				panic("boom")
			})
		})

		users, err := store.FindAllUsers(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("ServicesEndToEnd", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()
		cfg := tracker.Config{Now: func() time.Time { return day.Add(9 * time.Hour) }}

		users := tracker.NewUserService(store, cfg)
		projects := tracker.NewProjectService(store, cfg)
		tasks := tracker.NewTaskService(store, cfg)

		user, err := users.CreateUser(ctx, &domain.User{Username: "john_doe", Email: "john@example.com", Role: "ADMIN"})
		require.NoError(t, err)
		_, err = users.CreateUser(ctx, &domain.User{Username: "johnny", Email: "JOHN@example.com", Role: "USER"})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)

		project, err := projects.CreateProject(ctx, &domain.Project{
			Name: "Website Development", Description: "Build company website",
			StartDate: day, EndDate: ptr.To(domain.AddDays(day, 30)),
		})
		require.NoError(t, err)

		task, err := tasks.CreateTask(ctx, &domain.Task{
			Name: "Design Homepage", Description: "Create homepage design",
			Status: "IN_PROGRESS", Priority: 1, DueDate: domain.AddDays(day, 7),
			ProjectID: project.ID, UserID: user.ID,
		})
		require.NoError(t, err)

		err = projects.DeleteProject(ctx, project.ID)
		assert.ErrorIs(t, err, domain.ErrBusinessRule)

		_, err = tasks.ReassignTask(ctx, task.ID, user.ID+1000)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)

		_, err = tasks.UpdateTaskStatus(ctx, task.ID, "completed")
		require.NoError(t, err)

		stats, err := projects.ProjectStatistics(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalTasks)
		assert.Equal(t, 100.0, stats.CompletionPercentage)

		require.NoError(t, tasks.DeleteTask(ctx, task.ID))
		require.NoError(t, projects.DeleteProject(ctx, project.ID))
		_, err = projects.GetProject(ctx, project.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
