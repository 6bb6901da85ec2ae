package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/rezkam/taskboard/internal/application/tracker"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/ptr"
)

// app runs the CLI commands against the tracker services.
type app struct {
	users    *tracker.UserService
	projects *tracker.ProjectService
	tasks    *tracker.TaskService
	now      func() time.Time
	out      io.Writer
}

func newApp(store tracker.Store, now func() time.Time, out io.Writer) *app {
	cfg := tracker.Config{Now: now}
	return &app{
		users:    tracker.NewUserService(store, cfg),
		projects: tracker.NewProjectService(store, cfg),
		tasks:    tracker.NewTaskService(store, cfg),
		now:      now,
		out:      out,
	}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// seed creates a sample user, project and task, then runs the relationship queries over them.
// Running it twice reuses the user, since emails are unique.
func (a *app) seed(ctx context.Context) error {
	today := domain.DateOf(a.now())

	user, err := a.users.CreateUser(ctx, &domain.User{
		Username: "john_doe",
		Email:    "john@example.com",
		Role:     string(domain.RoleAdmin),
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		slog.InfoContext(ctx, "seed user already exists, reusing it", "email", "john@example.com")
		user, err = a.users.GetUserByEmail(ctx, "john@example.com")
	}
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}
	a.printf("user saved with ID: %d\n", user.ID)

	project, err := a.projects.CreateProject(ctx, &domain.Project{
		Name:        "Website Development",
		Description: "Build company website",
		StartDate:   today,
		EndDate:     ptr.To(domain.AddDays(today, 30)),
	})
	if err != nil {
		return fmt.Errorf("failed to seed project: %w", err)
	}
	a.printf("project saved with ID: %d\n", project.ID)

	task, err := a.tasks.CreateTask(ctx, &domain.Task{
		Name:        "Design Homepage",
		Description: "Create homepage design",
		Status:      string(domain.TaskStatusInProgress),
		Priority:    1,
		DueDate:     domain.AddDays(today, 7),
		ProjectID:   project.ID,
		UserID:      user.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to seed task: %w", err)
	}
	a.printf("task saved with ID: %d\n", task.ID)

	users, err := a.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	projects, err := a.projects.ListProjects(ctx)
	if err != nil {
		return err
	}
	tasks, err := a.tasks.ListTasks(ctx)
	if err != nil {
		return err
	}
	a.printf("found %d users, %d projects, %d tasks\n", len(users), len(projects), len(tasks))

	projectTasks, err := a.tasks.ListTasksByProject(ctx, project.ID)
	if err != nil {
		return err
	}
	a.printf("found %d tasks for project %d\n", len(projectTasks), project.ID)

	userTasks, err := a.tasks.ListTasksByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	a.printf("found %d tasks for user %d\n", len(userTasks), user.ID)

	slog.InfoContext(ctx, "seed completed",
		"user_id", user.ID,
		"project_id", project.ID,
		"task_id", task.ID)
	return nil
}

// report prints per-project completion, overall task statistics and the overdue lists.
func (a *app) report(ctx context.Context) error {
	projects, err := a.projects.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		stats, err := a.projects.ProjectStatistics(ctx, p.ID)
		if err != nil {
			return err
		}
		end := "ongoing"
		if p.EndDate != nil {
			end = domain.FormatDate(*p.EndDate)
		}
		a.printf("%s | %s .. %s\n", stats, domain.FormatDate(p.StartDate), end)
	}

	overall, err := a.tasks.OverallTaskStatistics(ctx)
	if err != nil {
		return err
	}
	a.printf("%s\n", overall)

	overdueProjects, err := a.projects.ListOverdueProjects(ctx)
	if err != nil {
		return err
	}
	a.printf("overdue projects: %d\n", len(overdueProjects))

	overdueTasks, err := a.tasks.ListOverdueTasks(ctx)
	if err != nil {
		return err
	}
	for _, t := range overdueTasks {
		a.printf("past due: task %d %q due %s (%s)\n", t.ID, t.Name, domain.FormatDate(t.DueDate), t.Status)
	}
	return nil
}
