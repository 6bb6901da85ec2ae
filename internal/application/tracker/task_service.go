package tracker

import (
	"context"
	"fmt"

	"github.com/rezkam/taskboard/internal/domain"
)

// TaskService enforces the task rules, including the project and user references.
type TaskService struct {
	store  Store
	config Config
}

// NewTaskService creates a task service backed by store.
func NewTaskService(store Store, config Config) *TaskService {
	return &TaskService{store: store, config: config.withDefaults()}
}

// ListTasks returns every task.
func (s *TaskService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.store.FindAllTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns the task with the given ID.
func (s *TaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	if err := domain.ValidateID("task", id); err != nil {
		return nil, err
	}
	return getTask(ctx, s.store, id)
}

// TaskExists reports whether a task with the given ID is stored.
func (s *TaskService) TaskExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	task, err := lookup(ctx, s.store.FindTaskByID, "task", id)
	return task != nil, err
}

// CreateTask validates a new task and its references, then stores it.
func (s *TaskService) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := domain.ValidateTask(task, s.config.today()); err != nil {
		return nil, err
	}
	if task.ID != 0 {
		return nil, domain.InvalidArgument("new task must not have an ID")
	}

	created := *task
	err := s.store.Atomic(ctx, func(tx Store) error {
		if err := checkReferences(ctx, tx, task); err != nil {
			return err
		}
		id, err := tx.SaveTask(ctx, task)
		if err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}
		created.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask overwrites every field of an existing task.
// The task must exist before its references are checked.
func (s *TaskService) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if err := domain.ValidateTask(task, s.config.today()); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("task", task.ID); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx Store) error {
		if _, err := getTask(ctx, tx, task.ID); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, task); err != nil {
			return err
		}
		if err := tx.UpdateTask(ctx, task); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated := *task
	return &updated, nil
}

// DeleteTask removes an existing task.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if err := domain.ValidateID("task", id); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx Store) error {
		if _, err := getTask(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.DeleteTaskByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// ListTasksByProject returns the tasks of an existing project.
// A missing project is an invalid argument, not a miss.
func (s *TaskService) ListTasksByProject(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	if err := domain.ValidateID("project", projectID); err != nil {
		return nil, err
	}
	project, err := lookup(ctx, s.store.FindProjectByID, "project", projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, missingReference("project", projectID)
	}
	tasks, err := s.store.FindTasksByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of project %d: %w", projectID, err)
	}
	return tasks, nil
}

// ListTasksByUser returns the tasks assigned to an existing user.
func (s *TaskService) ListTasksByUser(ctx context.Context, userID int64) ([]*domain.Task, error) {
	if err := domain.ValidateID("user", userID); err != nil {
		return nil, err
	}
	user, err := lookup(ctx, s.store.FindUserByID, "user", userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, missingReference("user", userID)
	}
	tasks, err := s.store.FindTasksByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of user %d: %w", userID, err)
	}
	return tasks, nil
}

// ListTasksByStatus returns tasks with the given status, ignoring case.
func (s *TaskService) ListTasksByStatus(ctx context.Context, status string) ([]*domain.Task, error) {
	canonical, err := domain.NewTaskStatus(status)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.FindTasksByStatus(ctx, string(canonical))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by status: %w", err)
	}
	return tasks, nil
}

// ListOverdueTasks returns tasks due before today, completed ones included.
// Statistics count overdue tasks more strictly; see domain.Task.IsOverdue.
func (s *TaskService) ListOverdueTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.store.FindOverdueTasks(ctx, s.config.today())
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByPriority returns tasks with exactly the given priority.
func (s *TaskService) ListTasksByPriority(ctx context.Context, priority int) ([]*domain.Task, error) {
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, err
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return filter(tasks, func(t *domain.Task) bool {
		return t.Priority == priority
	}), nil
}

// ListTasksDueWithin returns tasks due between today and today+days inclusive.
func (s *TaskService) ListTasksDueWithin(ctx context.Context, days int) ([]*domain.Task, error) {
	if days < 0 {
		return nil, domain.InvalidArgument("days cannot be negative")
	}
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	today := s.config.today()
	return filter(tasks, func(t *domain.Task) bool {
		return t.IsDueWithin(today, days)
	}), nil
}

// UpdateTaskStatus changes only the status of an existing task.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, id int64, status string) (*domain.Task, error) {
	if err := domain.ValidateID("task", id); err != nil {
		return nil, err
	}
	if _, err := domain.NewTaskStatus(status); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, nil, func(t *domain.Task) {
		t.Status = status
	})
}

// UpdateTaskPriority changes only the priority of an existing task.
func (s *TaskService) UpdateTaskPriority(ctx context.Context, id int64, priority int) (*domain.Task, error) {
	if err := domain.ValidateID("task", id); err != nil {
		return nil, err
	}
	if err := domain.ValidatePriority(priority); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, nil, func(t *domain.Task) {
		t.Priority = priority
	})
}

// ReassignTask moves an existing task to another existing user.
// A missing user is an invalid argument; a missing task is not found.
func (s *TaskService) ReassignTask(ctx context.Context, id, userID int64) (*domain.Task, error) {
	if err := domain.ValidateID("task", id); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("user", userID); err != nil {
		return nil, err
	}
	check := func(tx Store) error {
		return requireUser(ctx, tx, userID)
	}
	return s.mutate(ctx, id, check, func(t *domain.Task) {
		t.UserID = userID
	})
}

// mutate runs check, loads a task, applies change and persists the result in one transaction.
func (s *TaskService) mutate(ctx context.Context, id int64, check func(tx Store) error, change func(t *domain.Task)) (*domain.Task, error) {
	var result *domain.Task
	err := s.store.Atomic(ctx, func(tx Store) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}
		task, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		changed := *task
		change(&changed)
		if err := tx.UpdateTask(ctx, &changed); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		result = &changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProjectTaskStatistics summarises the tasks of one project.
func (s *TaskService) ProjectTaskStatistics(ctx context.Context, projectID int64) (domain.TaskStatistics, error) {
	tasks, err := s.ListTasksByProject(ctx, projectID)
	if err != nil {
		return domain.TaskStatistics{}, err
	}
	return domain.NewTaskStatistics(fmt.Sprintf("Project %d", projectID), tasks, s.config.today()), nil
}

// UserTaskStatistics summarises the tasks assigned to one user.
func (s *TaskService) UserTaskStatistics(ctx context.Context, userID int64) (domain.TaskStatistics, error) {
	tasks, err := s.ListTasksByUser(ctx, userID)
	if err != nil {
		return domain.TaskStatistics{}, err
	}
	return domain.NewTaskStatistics(fmt.Sprintf("User %d", userID), tasks, s.config.today()), nil
}

// OverallTaskStatistics summarises every task.
func (s *TaskService) OverallTaskStatistics(ctx context.Context) (domain.TaskStatistics, error) {
	tasks, err := s.ListTasks(ctx)
	if err != nil {
		return domain.TaskStatistics{}, err
	}
	return domain.NewTaskStatistics("Overall", tasks, s.config.today()), nil
}

func getTask(ctx context.Context, store Store, id int64) (*domain.Task, error) {
	task, err := lookup(ctx, store.FindTaskByID, "task", id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFound(domain.ErrTaskNotFound, id)
	}
	return task, nil
}

// checkReferences requires the task's project and user to exist.
func checkReferences(ctx context.Context, store Store, task *domain.Task) error {
	if err := domain.ValidateID("project", task.ProjectID); err != nil {
		return err
	}
	project, err := lookup(ctx, store.FindProjectByID, "project", task.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return missingReference("project", task.ProjectID)
	}
	if err := domain.ValidateID("user", task.UserID); err != nil {
		return err
	}
	return requireUser(ctx, store, task.UserID)
}

func requireUser(ctx context.Context, store Store, id int64) error {
	user, err := lookup(ctx, store.FindUserByID, "user", id)
	if err != nil {
		return err
	}
	if user == nil {
		return missingReference("user", id)
	}
	return nil
}
