package tracker

import (
	"context"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// UserRepository defines storage operations for users.
type UserRepository interface {
	// FindAllUsers returns every user ordered by ID.
	FindAllUsers(ctx context.Context) ([]*domain.User, error)

	// FindUserByID returns domain.ErrNotFound if the user doesn't exist.
	FindUserByID(ctx context.Context, id int64) (*domain.User, error)

	// SaveUser persists a user without ID and returns the assigned ID.
	SaveUser(ctx context.Context, user *domain.User) (int64, error)

	// UpdateUser overwrites username, email and role of an existing user.
	UpdateUser(ctx context.Context, user *domain.User) error

	DeleteUserByID(ctx context.Context, id int64) error
}

// UserEmailLookup is an optional indexed lookup a store may provide.
// When the Store implements it, email uniqueness checks avoid a full scan.
type UserEmailLookup interface {
	// FindUserByEmail matches case-insensitively.
	// Returns domain.ErrNotFound if no user has the email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProjectRepository defines storage operations for projects.
type ProjectRepository interface {
	FindAllProjects(ctx context.Context) ([]*domain.Project, error)

	// FindProjectByID returns domain.ErrNotFound if the project doesn't exist.
	FindProjectByID(ctx context.Context, id int64) (*domain.Project, error)

	SaveProject(ctx context.Context, project *domain.Project) (int64, error)
	UpdateProject(ctx context.Context, project *domain.Project) error
	DeleteProjectByID(ctx context.Context, id int64) error

	// FindActiveProjects returns projects without an end date.
	FindActiveProjects(ctx context.Context) ([]*domain.Project, error)

	CountProjects(ctx context.Context) (int, error)
}

// TaskRepository defines storage operations for tasks.
type TaskRepository interface {
	FindAllTasks(ctx context.Context) ([]*domain.Task, error)

	// FindTaskByID returns domain.ErrNotFound if the task doesn't exist.
	FindTaskByID(ctx context.Context, id int64) (*domain.Task, error)

	SaveTask(ctx context.Context, task *domain.Task) (int64, error)
	UpdateTask(ctx context.Context, task *domain.Task) error
	DeleteTaskByID(ctx context.Context, id int64) error

	FindTasksByProjectID(ctx context.Context, projectID int64) ([]*domain.Task, error)
	FindTasksByUserID(ctx context.Context, userID int64) ([]*domain.Task, error)

	// FindTasksByStatus matches the status case-insensitively.
	FindTasksByStatus(ctx context.Context, status string) ([]*domain.Task, error)

	// FindOverdueTasks returns tasks due strictly before asOf, whatever their status.
	FindOverdueTasks(ctx context.Context, asOf time.Time) ([]*domain.Task, error)

	CountTasksByProject(ctx context.Context, projectID int64) (int, error)
}

// Store is the storage contract of the rule services.
type Store interface {
	UserRepository
	ProjectRepository
	TaskRepository

	// Atomic runs fn inside a single storage transaction.
	// The Store passed to fn is bound to that transaction: checks made through it
	// and the writes that follow commit together, or roll back together when fn
	// returns an error or panics.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
