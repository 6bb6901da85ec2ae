package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rezkam/taskboard/internal/domain"
)

const taskColumns = "id, name, description, status, priority, due_date, project_id, user_id"

func (s *Store) queryTasks(ctx context.Context, where string, args ...any) ([]*domain.Task, error) {
	rows, err := s.db.Query(ctx, "SELECT "+taskColumns+" FROM tasks "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[taskRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan tasks: %w", err)
	}
	return mapRows(tasks, taskRow.toDomain), nil
}

func (s *Store) FindAllTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "")
}

func (s *Store) FindTasksByProjectID(ctx context.Context, projectID int64) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE project_id = $1", projectID)
}

func (s *Store) FindTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE user_id = $1", userID)
}

// FindTasksByStatus compares upper-cased values; statuses are stored as submitted.
func (s *Store) FindTasksByStatus(ctx context.Context, status string) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE upper(status) = upper($1)", status)
}

// FindOverdueTasks filters on the due date only; completed tasks are included.
func (s *Store) FindOverdueTasks(ctx context.Context, asOf time.Time) ([]*domain.Task, error) {
	return s.queryTasks(ctx, "WHERE due_date < $1", dateToPgtype(asOf))
}

func (s *Store) FindTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	rows, err := s.db.Query(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query task: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[taskRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrTaskNotFound, id)
		}
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) SaveTask(ctx context.Context, task *domain.Task) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		`INSERT INTO tasks (name, description, status, priority, due_date, project_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		task.Name, task.Description, task.Status, int32(task.Priority),
		dateToPgtype(task.DueDate), task.ProjectID, task.UserID,
	).Scan(&id)
	if err != nil {
		return 0, taskWriteError("insert", task, err)
	}
	return id, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *domain.Task) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tasks SET name = $2, description = $3, status = $4, priority = $5,
		 due_date = $6, project_id = $7, user_id = $8 WHERE id = $1`,
		task.ID, task.Name, task.Description, task.Status, int32(task.Priority),
		dateToPgtype(task.DueDate), task.ProjectID, task.UserID,
	)
	if err != nil {
		return taskWriteError("update", task, err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrTaskNotFound, task.ID)
}

// taskWriteError maps a dangling project reference to domain.ErrInvalidArgument.
func taskWriteError(op string, task *domain.Task, err error) error {
	if hasCode(err, codeForeignKeyViolation) {
		return fmt.Errorf("%w: project with ID %d does not exist: %w", domain.ErrInvalidArgument, task.ProjectID, err)
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}

func (s *Store) DeleteTaskByID(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrTaskNotFound, id)
}

func (s *Store) CountTasksByProject(ctx context.Context, projectID int64) (int, error) {
	var n int64
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM tasks WHERE project_id = $1", projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return int(n), nil
}
