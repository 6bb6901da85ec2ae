package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rezkam/taskboard/internal/domain"
)

const projectColumns = "id, name, description, start_date, end_date"

func (s *Store) queryProjects(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	projects, err := pgx.CollectRows(rows, pgx.RowToStructByName[projectRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}
	return mapRows(projects, projectRow.toDomain), nil
}

func (s *Store) FindAllProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.queryProjects(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY id")
}

// FindActiveProjects returns projects with a NULL end date.
func (s *Store) FindActiveProjects(ctx context.Context) ([]*domain.Project, error) {
	return s.queryProjects(ctx, "SELECT "+projectColumns+" FROM projects WHERE end_date IS NULL ORDER BY id")
}

func (s *Store) FindProjectByID(ctx context.Context, id int64) (*domain.Project, error) {
	rows, err := s.db.Query(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[projectRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrProjectNotFound, id)
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) SaveProject(ctx context.Context, project *domain.Project) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		"INSERT INTO projects (name, description, start_date, end_date) VALUES ($1, $2, $3, $4) RETURNING id",
		project.Name, project.Description, dateToPgtype(project.StartDate), datePtrToPgtype(project.EndDate),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert project: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateProject(ctx context.Context, project *domain.Project) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE projects SET name = $2, description = $3, start_date = $4, end_date = $5 WHERE id = $1",
		project.ID, project.Name, project.Description, dateToPgtype(project.StartDate), datePtrToPgtype(project.EndDate),
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrProjectNotFound, project.ID)
}

// DeleteProjectByID fails with domain.ErrBusinessRule while tasks still reference the project.
func (s *Store) DeleteProjectByID(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return fmt.Errorf("%w: project %d still has tasks: %w", domain.ErrBusinessRule, id, err)
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrProjectNotFound, id)
}

func (s *Store) CountProjects(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.QueryRow(ctx, "SELECT count(*) FROM projects").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return int(n), nil
}
