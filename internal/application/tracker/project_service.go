package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// ProjectService enforces the project rules.
type ProjectService struct {
	store  Store
	config Config
}

// NewProjectService creates a project service backed by store.
func NewProjectService(store Store, config Config) *ProjectService {
	return &ProjectService{store: store, config: config.withDefaults()}
}

// ListProjects returns every project.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.store.FindAllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns the project with the given ID.
func (s *ProjectService) GetProject(ctx context.Context, id int64) (*domain.Project, error) {
	if err := domain.ValidateID("project", id); err != nil {
		return nil, err
	}
	project, err := lookup(ctx, s.store.FindProjectByID, "project", id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFound(domain.ErrProjectNotFound, id)
	}
	return project, nil
}

// ProjectExists reports whether a project with the given ID is stored.
func (s *ProjectService) ProjectExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	project, err := lookup(ctx, s.store.FindProjectByID, "project", id)
	return project != nil, err
}

// CreateProject validates and stores a new project.
func (s *ProjectService) CreateProject(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if err := domain.ValidateProject(project, s.config.today()); err != nil {
		return nil, err
	}
	if project.ID != 0 {
		return nil, domain.InvalidArgument("new project must not have an ID")
	}

	id, err := s.store.SaveProject(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	created := *project
	created.ID = id
	return &created, nil
}

// UpdateProject overwrites every field of an existing project.
func (s *ProjectService) UpdateProject(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	if err := domain.ValidateProject(project, s.config.today()); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("project", project.ID); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx Store) error {
		existing, err := lookup(ctx, tx.FindProjectByID, "project", project.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound(domain.ErrProjectNotFound, project.ID)
		}
		if err := tx.UpdateProject(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated := *project
	return &updated, nil
}

// DeleteProject removes a project that has no tasks.
// Fails with ErrBusinessRule when tasks still reference the project.
func (s *ProjectService) DeleteProject(ctx context.Context, id int64) error {
	if err := domain.ValidateID("project", id); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx Store) error {
		existing, err := lookup(ctx, tx.FindProjectByID, "project", id)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound(domain.ErrProjectNotFound, id)
		}

		count, err := tx.CountTasksByProject(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count tasks of project %d: %w", id, err)
		}
		if count > 0 {
			slog.WarnContext(ctx, "refusing to delete project with tasks",
				"project_id", id,
				"task_count", count)
			return fmt.Errorf("%w: cannot delete project %d with existing tasks, found %d tasks",
				domain.ErrBusinessRule, id, count)
		}

		if err := tx.DeleteProjectByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
}

// ListActiveProjects returns projects without an end date.
func (s *ProjectService) ListActiveProjects(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.store.FindActiveProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active projects: %w", err)
	}
	return projects, nil
}

// ListProjectsByDateRange returns projects whose run overlaps [start, end],
// tolerating one day on each side. Ongoing projects extend indefinitely.
func (s *ProjectService) ListProjectsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Project, error) {
	if start.IsZero() || end.IsZero() {
		return nil, domain.InvalidArgument("start and end dates are required")
	}
	if domain.DateOf(start).After(domain.DateOf(end)) {
		return nil, domain.InvalidArgument("start date cannot be after end date")
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return filter(projects, func(p *domain.Project) bool {
		return p.OverlapsRange(start, end)
	}), nil
}

// ListOverdueProjects returns projects whose end date is before today.
func (s *ProjectService) ListOverdueProjects(ctx context.Context) ([]*domain.Project, error) {
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	today := s.config.today()
	return filter(projects, func(p *domain.Project) bool {
		return p.IsOverdue(today)
	}), nil
}

// SearchProjectsByName returns projects whose name contains pattern, ignoring case.
func (s *ProjectService) SearchProjectsByName(ctx context.Context, pattern string) ([]*domain.Project, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, domain.InvalidArgument("search pattern cannot be blank")
	}
	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(pattern)
	return filter(projects, func(p *domain.Project) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), nil
}

// CountProjects returns the number of stored projects.
func (s *ProjectService) CountProjects(ctx context.Context) (int, error) {
	n, err := s.store.CountProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// ProjectStatistics computes completion figures for one project.
func (s *ProjectService) ProjectStatistics(ctx context.Context, id int64) (domain.ProjectStatistics, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return domain.ProjectStatistics{}, err
	}
	tasks, err := s.store.FindTasksByProjectID(ctx, id)
	if err != nil {
		return domain.ProjectStatistics{}, fmt.Errorf("failed to list tasks of project %d: %w", id, err)
	}
	return domain.NewProjectStatistics(project, tasks), nil
}
