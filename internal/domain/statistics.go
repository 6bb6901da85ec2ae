package domain

import (
	"fmt"
	"time"
)

// Predicate is a named boolean test used by Tally.
type Predicate[T any] struct {
	Name  string
	Match func(T) bool
}

// Counts is the result of Tally: the collection size and one count per predicate name.
type Counts struct {
	Total  int
	byName map[string]int
}

// Get returns the count for the named predicate (0 if unknown).
func (c Counts) Get(name string) int {
	return c.byName[name]
}

// Tally counts, for every predicate, how many items match it.
// Predicates are evaluated independently; an item may match several.
func Tally[T any](items []T, predicates ...Predicate[T]) Counts {
	counts := Counts{Total: len(items), byName: make(map[string]int, len(predicates))}
	for _, p := range predicates {
		counts.byName[p.Name] = 0
	}
	for _, item := range items {
		for _, p := range predicates {
			if p.Match(item) {
				counts.byName[p.Name]++
			}
		}
	}
	return counts
}

// Percentage returns part*100/total, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) * 100.0 / float64(total)
}

const (
	countCompleted  = "completed"
	countTodo       = "todo"
	countInProgress = "in_progress"
	countBlocked    = "blocked"
	countOverdue    = "overdue"
)

func statusPredicate(name string, s TaskStatus) Predicate[*Task] {
	return Predicate[*Task]{Name: name, Match: func(t *Task) bool { return t.HasStatus(s) }}
}

// ProjectStatistics summarises task completion for one project.
type ProjectStatistics struct {
	ProjectID            int64
	ProjectName          string
	TotalTasks           int
	CompletedTasks       int
	PendingTasks         int
	CompletionPercentage float64
}

// NewProjectStatistics computes completion figures for the tasks of project.
func NewProjectStatistics(project *Project, tasks []*Task) ProjectStatistics {
	c := Tally(tasks, statusPredicate(countCompleted, TaskStatusCompleted))
	completed := c.Get(countCompleted)
	return ProjectStatistics{
		ProjectID:            project.ID,
		ProjectName:          project.Name,
		TotalTasks:           c.Total,
		CompletedTasks:       completed,
		PendingTasks:         c.Total - completed,
		CompletionPercentage: Percentage(completed, c.Total),
	}
}

func (s ProjectStatistics) String() string {
	return fmt.Sprintf("Project: %s | Total: %d | Completed: %d | Pending: %d | Progress: %.1f%%",
		s.ProjectName, s.TotalTasks, s.CompletedTasks, s.PendingTasks, s.CompletionPercentage)
}

// TaskStatistics summarises a collection of tasks by status and overdue state.
// Context labels the collection, e.g. "Project 3", "User 7" or "Overall".
type TaskStatistics struct {
	Context              string
	TotalTasks           int
	TodoTasks            int
	InProgressTasks      int
	CompletedTasks       int
	BlockedTasks         int
	OverdueTasks         int
	CompletionPercentage float64
}

// NewTaskStatistics computes status buckets and the overdue count as of today.
// Overdue means due before today and not completed.
func NewTaskStatistics(context string, tasks []*Task, today time.Time) TaskStatistics {
	c := Tally(tasks,
		statusPredicate(countTodo, TaskStatusTodo),
		statusPredicate(countInProgress, TaskStatusInProgress),
		statusPredicate(countCompleted, TaskStatusCompleted),
		statusPredicate(countBlocked, TaskStatusBlocked),
		Predicate[*Task]{Name: countOverdue, Match: func(t *Task) bool { return t.IsOverdue(today) }},
	)
	return TaskStatistics{
		Context:              context,
		TotalTasks:           c.Total,
		TodoTasks:            c.Get(countTodo),
		InProgressTasks:      c.Get(countInProgress),
		CompletedTasks:       c.Get(countCompleted),
		BlockedTasks:         c.Get(countBlocked),
		OverdueTasks:         c.Get(countOverdue),
		CompletionPercentage: Percentage(c.Get(countCompleted), c.Total),
	}
}

func (s TaskStatistics) String() string {
	return fmt.Sprintf("%s Statistics | Total: %d | TODO: %d | In Progress: %d | Completed: %d | Blocked: %d | Overdue: %d | Progress: %.1f%%",
		s.Context, s.TotalTasks, s.TodoTasks, s.InProgressTasks, s.CompletedTasks,
		s.BlockedTasks, s.OverdueTasks, s.CompletionPercentage)
}
