package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tasksWithStatuses(statuses ...string) []*Task {
	tasks := make([]*Task, len(statuses))
	for i, s := range statuses {
		tasks[i] = &Task{ID: int64(i + 1), Status: s, DueDate: AddDays(today, 1)}
	}
	return tasks
}

func TestTally_CountsEachPredicateIndependently(t *testing.T) {
	even := Predicate[int]{Name: "even", Match: func(n int) bool { return n%2 == 0 }}
	small := Predicate[int]{Name: "small", Match: func(n int) bool { return n < 3 }}

	c := Tally([]int{1, 2, 3, 4}, even, small)

	assert.Equal(t, 4, c.Total)
	assert.Equal(t, 2, c.Get("even"))
	assert.Equal(t, 2, c.Get("small"))
	assert.Equal(t, 0, c.Get("unknown"))
}

func TestTally_Empty(t *testing.T) {
	c := Tally[int](nil, Predicate[int]{Name: "any", Match: func(int) bool { return true }})
	assert.Equal(t, 0, c.Total)
	assert.Equal(t, 0, c.Get("any"))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 30.0, Percentage(3, 10))
	assert.Equal(t, 0.0, Percentage(0, 0))
	assert.Equal(t, 100.0, Percentage(4, 4))
	assert.InDelta(t, 33.333, Percentage(1, 3), 0.001)
}

func TestNewProjectStatistics(t *testing.T) {
	project := &Project{ID: 7, Name: "Website"}
	tasks := tasksWithStatuses("COMPLETED", "completed", "Completed", "TODO", "TODO",
		"IN_PROGRESS", "BLOCKED", "TODO", "IN_PROGRESS", "TODO")

	stats := NewProjectStatistics(project, tasks)

	assert.Equal(t, int64(7), stats.ProjectID)
	assert.Equal(t, "Website", stats.ProjectName)
	assert.Equal(t, 10, stats.TotalTasks)
	assert.Equal(t, 3, stats.CompletedTasks)
	assert.Equal(t, 7, stats.PendingTasks)
	assert.Equal(t, 30.0, stats.CompletionPercentage)
	assert.Equal(t, "Project: Website | Total: 10 | Completed: 3 | Pending: 7 | Progress: 30.0%", stats.String())
}

func TestNewProjectStatistics_NoTasks(t *testing.T) {
	stats := NewProjectStatistics(&Project{ID: 1, Name: "Empty"}, nil)

	assert.Equal(t, 0, stats.TotalTasks)
	assert.Equal(t, 0, stats.PendingTasks)
	assert.Equal(t, 0.0, stats.CompletionPercentage)
}

func TestNewTaskStatistics(t *testing.T) {
	tasks := []*Task{
		{Status: "TODO", DueDate: AddDays(today, -2)},        // overdue
		{Status: "in_progress", DueDate: AddDays(today, -1)}, // overdue
		{Status: "COMPLETED", DueDate: AddDays(today, -5)},   // late but completed
		{Status: "BLOCKED", DueDate: today},                  // due today, not overdue
		{Status: "todo", DueDate: AddDays(today, 3)},
	}

	stats := NewTaskStatistics("Overall", tasks, today)

	assert.Equal(t, "Overall", stats.Context)
	assert.Equal(t, 5, stats.TotalTasks)
	assert.Equal(t, 2, stats.TodoTasks)
	assert.Equal(t, 1, stats.InProgressTasks)
	assert.Equal(t, 1, stats.CompletedTasks)
	assert.Equal(t, 1, stats.BlockedTasks)
	assert.Equal(t, 2, stats.OverdueTasks)
	assert.Equal(t, 20.0, stats.CompletionPercentage)
	assert.Equal(t,
		"Overall Statistics | Total: 5 | TODO: 2 | In Progress: 1 | Completed: 1 | Blocked: 1 | Overdue: 2 | Progress: 20.0%",
		stats.String())
}

func TestNewTaskStatistics_Deterministic(t *testing.T) {
	tasks := tasksWithStatuses("TODO", "COMPLETED", "BLOCKED")
	reversed := []*Task{tasks[2], tasks[1], tasks[0]}

	assert.Equal(t, NewTaskStatistics("x", tasks, today), NewTaskStatistics("x", reversed, today))
}
