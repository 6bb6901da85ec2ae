package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

const (
	userColumns    = "id, username, email, role"
	projectColumns = "id, name, description, start_date, end_date"
	taskColumns    = "id, name, description, status, priority, due_date, project_id, user_id"
)

type scanner interface {
	Scan(dest ...any) error
}

// === Users ===

func scanUser(row scanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindAllUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users, err := collect(rows, func(r *sql.Rows) (*domain.User, error) { return scanUser(r) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// FindUserByEmail matches on lower(email), which the unique index covers.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE lower(email) = lower(?)", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: email %s", domain.ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (s *Store) SaveUser(ctx context.Context, user *domain.User) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO users (username, email, role) VALUES (?, ?, ?)",
		user.Username, user.Email, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: email %s: %w", domain.ErrAlreadyExists, user.Email, err)
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return lastInsertID(res)
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	res, err := s.q.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, role = ? WHERE id = ?",
		user.Username, user.Email, user.Role, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email %s: %w", domain.ErrAlreadyExists, user.Email, err)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkRowsAffected(res, domain.ErrUserNotFound, user.ID)
}

func (s *Store) DeleteUserByID(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkRowsAffected(res, domain.ErrUserNotFound, id)
}

func lastInsertID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

// === Projects ===

func scanProject(row scanner) (*domain.Project, error) {
	var (
		p     domain.Project
		start string
		end   sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &start, &end); err != nil {
		return nil, err
	}
	var err error
	if p.StartDate, err = parseDate(start); err != nil {
		return nil, err
	}
	if p.EndDate, err = parseDatePtr(end); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) queryProjects(ctx context.Context, where string, args ...any) ([]*domain.Project, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	projects, err := collect(rows, func(r *sql.Rows) (*domain.Project, error) { return scanProject(r) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}
	return projects, nil
}

func (s *Store) FindAllProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.queryProjects(ctx, "")
}

func (s *Store) FindActiveProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.queryProjects(ctx, "WHERE end_date IS NULL")
}

func (s *Store) FindProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	p, err := scanProject(s.q.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// projectDates encodes both project dates or reports the first unencodable one.
func projectDates(project *domain.Project) (string, sql.NullString, error) {
	start, err := formatDate(project.StartDate)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("project start date: %w", err)
	}
	end, err := formatDatePtr(project.EndDate)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("project end date: %w", err)
	}
	return start, end, nil
}

func (s *Store) SaveProject(ctx context.Context, project *domain.Project) (int64, error) {
	start, end, err := projectDates(project)
	if err != nil {
		return 0, err
	}
	res, err := s.q.ExecContext(ctx,
		"INSERT INTO projects (name, description, start_date, end_date) VALUES (?, ?, ?, ?)",
		project.Name, project.Description, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to insert project: %w", err)
	}
	return lastInsertID(res)
}

func (s *Store) UpdateProject(ctx context.Context, project *domain.Project) error {
	start, end, err := projectDates(project)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx,
		"UPDATE projects SET name = ?, description = ?, start_date = ?, end_date = ? WHERE id = ?",
		project.Name, project.Description, start, end, project.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return checkRowsAffected(res, domain.ErrProjectNotFound, project.ID)
}

// DeleteProjectByID fails with domain.ErrBusinessRule while tasks still reference the project.
func (s *Store) DeleteProjectByID(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: project %d still has tasks: %w", domain.ErrBusinessRule, id, err)
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return checkRowsAffected(res, domain.ErrProjectNotFound, id)
}

func (s *Store) CountProjects(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT count(*) FROM projects").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// === Tasks ===

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t   domain.Task
		due string
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.Priority, &due, &t.ProjectID, &t.UserID); err != nil {
		return nil, err
	}
	var err error
	if t.DueDate, err = parseDate(due); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) queryTasks(ctx context.Context, where string, args ...any) ([]*domain.Task, error) {
	rows, err := s.q.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	tasks, err := collect(rows, func(r *sql.Rows) (*domain.Task, error) { return scanTask(r) })
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) FindAllTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "")
}

func (s *Store) FindTasksByProjectID(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE project_id = ?", projectID)
}

func (s *Store) FindTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE user_id = ?", userID)
}

func (s *Store) FindTasksByStatus(ctx context.Context, status string) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE upper(status) = upper(?)", status)
}

// FindOverdueTasks filters on the due date only; completed tasks are included.
func (s *Store) FindOverdueTasks(ctx context.Context, asOf time.Time) ([]*domain.Task, error) {
	day, err := formatDate(asOf)
	if err != nil {
		return nil, err
	}
	return s.queryTasks(ctx, "WHERE due_date < ?", day)
}

func (s *Store) FindTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(s.q.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (s *Store) SaveTask(ctx context.Context, task *domain.Task) (int64, error) {
	due, err := formatDate(task.DueDate)
	if err != nil {
		return 0, fmt.Errorf("task due date: %w", err)
	}
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO tasks (name, description, status, priority, due_date, project_id, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		task.Name, task.Description, task.Status, task.Priority,
		due, task.ProjectID, task.UserID)
	if err != nil {
		return 0, taskWriteError("insert", task, err)
	}
	return lastInsertID(res)
}

func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	due, err := formatDate(task.DueDate)
	if err != nil {
		return fmt.Errorf("task due date: %w", err)
	}
	res, err := s.q.ExecContext(ctx,
		`UPDATE tasks SET name = ?, description = ?, status = ?, priority = ?,
		 due_date = ?, project_id = ?, user_id = ? WHERE id = ?`,
		task.Name, task.Description, task.Status, task.Priority,
		due, task.ProjectID, task.UserID, task.ID)
	if err != nil {
		return taskWriteError("update", task, err)
	}
	return checkRowsAffected(res, domain.ErrTaskNotFound, task.ID)
}

func taskWriteError(op string, task *domain.Task, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: project with ID %d does not exist: %w", domain.ErrInvalidArgument, task.ProjectID, err)
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}

func (s *Store) DeleteTaskByID(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return checkRowsAffected(res, domain.ErrTaskNotFound, id)
}

func (s *Store) CountTasksByProject(ctx context.Context, projectID int64) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, "SELECT count(*) FROM tasks WHERE project_id = ?", projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}
