package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/persistence/sqlite"
)

func newTestApp(t *testing.T, now *time.Time) (*app, *bytes.Buffer) {
	t.Helper()
	st, err := sqlite.Open(context.Background(), sqlite.Config{Path: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	var out bytes.Buffer
	return newApp(st, func() time.Time { return *now }, &out), &out
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	a, out := newTestApp(t, &now)

	require.NoError(t, a.seed(ctx))
	assert.Contains(t, out.String(), "found 1 users, 1 projects, 1 tasks")
	assert.Contains(t, out.String(), "found 1 tasks for project")
	assert.Contains(t, out.String(), "found 1 tasks for user")

	t.Run("second run reuses the user", func(t *testing.T) {
		out.Reset()
		require.NoError(t, a.seed(ctx))
		assert.Contains(t, out.String(), "found 1 users, 2 projects, 2 tasks")

		tasks, err := a.tasks.ListTasks(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, tasks[0].UserID, tasks[1].UserID)
		assert.Equal(t, domain.Date(2026, 3, 22), tasks[0].DueDate)
	})
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	a, out := newTestApp(t, &now)
	require.NoError(t, a.seed(ctx))

	// Forty days later the project has ended and the task is past due.
	now = now.AddDate(0, 0, 40)
	out.Reset()

	require.NoError(t, a.report(ctx))
	report := out.String()
	assert.Contains(t, report, "Project: Website Development | Total: 1 | Completed: 0 | Pending: 1 | Progress: 0.0%")
	assert.Contains(t, report, "2026-03-15 .. 2026-04-14")
	assert.Contains(t, report, "Overall Statistics | Total: 1 | TODO: 0 | In Progress: 1 | Completed: 0 | Blocked: 0 | Overdue: 1")
	assert.Contains(t, report, "overdue projects: 1")
	assert.Contains(t, report, `past due: task 1 "Design Homepage" due 2026-03-22 (IN_PROGRESS)`)
}
