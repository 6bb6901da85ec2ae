package tracker

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rezkam/taskboard/internal/domain"
)

// memoryStore is an in-memory Store for service tests.
// Atomic does not isolate anything; it only counts calls.
type memoryStore struct {
	mu       sync.Mutex
	users    map[int64]domain.User
	projects map[int64]domain.Project
	tasks    map[int64]domain.Task
	nextID   int64

	writes      int
	atomicCalls int

	// failWith, when set, is returned by every write.
	failWith error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[int64]domain.User),
		projects: make(map[int64]domain.Project),
		tasks:    make(map[int64]domain.Task),
	}
}

func (m *memoryStore) Atomic(_ context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	m.atomicCalls++
	m.mu.Unlock()
	return fn(m)
}

func (m *memoryStore) write() (int64, error) {
	if m.failWith != nil {
		return 0, m.failWith
	}
	m.writes++
	m.nextID++
	return m.nextID, nil
}

func sortedValues[T any](items map[int64]T, keep func(T) bool) []*T {
	ids := make([]int64, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v := items[id]
		if keep == nil || keep(v) {
			out = append(out, &v)
		}
	}
	return out
}

// === Users ===

func (m *memoryStore) FindAllUsers(context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.users, nil), nil
}

func (m *memoryStore) FindUserByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memoryStore) SaveUser(_ context.Context, user *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := m.write()
	if err != nil {
		return 0, err
	}
	u := *user
	u.ID = id
	m.users[id] = u
	return id, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.write(); err != nil {
		return err
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memoryStore) DeleteUserByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.write(); err != nil {
		return err
	}
	delete(m.users, id)
	return nil
}

// === Projects ===

func (m *memoryStore) FindAllProjects(context.Context) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.projects, nil), nil
}

func (m *memoryStore) FindProjectByID(_ context.Context, id int64) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (m *memoryStore) SaveProject(_ context.Context, project *domain.Project) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := m.write()
	if err != nil {
		return 0, err
	}
	p := *project
	p.ID = id
	m.projects[id] = p
	return id, nil
}

func (m *memoryStore) UpdateProject(_ context.Context, project *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.write(); err != nil {
		return err
	}
	m.projects[project.ID] = *project
	return nil
}

func (m *memoryStore) DeleteProjectByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.write(); err != nil {
		return err
	}
	delete(m.projects, id)
	return nil
}

func (m *memoryStore) FindActiveProjects(context.Context) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.projects, func(p domain.Project) bool { return p.EndDate == nil }), nil
}

func (m *memoryStore) CountProjects(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.projects), nil
}

// === Tasks ===

func (m *memoryStore) FindAllTasks(context.Context) ([]*domain.Task, error) {
	return m.findTasks(nil), nil
}

func (m *memoryStore) findTasks(keep func(domain.Task) bool) []*domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedValues(m.tasks, keep)
}

func (m *memoryStore) FindTaskByID(_ context.Context, id int64) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (m *memoryStore) SaveTask(_ context.Context, task *domain.Task) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := m.write()
	if err != nil {
		return 0, err
	}
	t := *task
	t.ID = id
	m.tasks[id] = t
	return id, nil
}

func (m *memoryStore) UpdateTask(_ context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.write(); err != nil {
		return err
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *memoryStore) DeleteTaskByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.write(); err != nil {
		return err
	}
	delete(m.tasks, id)
	return nil
}

func (m *memoryStore) FindTasksByProjectID(_ context.Context, projectID int64) ([]*domain.Task, error) {
	return m.findTasks(func(t domain.Task) bool { return t.ProjectID == projectID }), nil
}

func (m *memoryStore) FindTasksByUserID(_ context.Context, userID int64) ([]*domain.Task, error) {
	return m.findTasks(func(t domain.Task) bool { return t.UserID == userID }), nil
}

func (m *memoryStore) FindTasksByStatus(_ context.Context, status string) ([]*domain.Task, error) {
	return m.findTasks(func(t domain.Task) bool { return domain.EqualFoldASCII(t.Status, status) }), nil
}

func (m *memoryStore) FindOverdueTasks(_ context.Context, asOf time.Time) ([]*domain.Task, error) {
	return m.findTasks(func(t domain.Task) bool { return t.IsPastDue(asOf) }), nil
}

func (m *memoryStore) CountTasksByProject(ctx context.Context, projectID int64) (int, error) {
	tasks, _ := m.FindTasksByProjectID(ctx, projectID)
	return len(tasks), nil
}

// indexedStore adds the optional email lookup and records its use.
type indexedStore struct {
	*memoryStore
	emailLookups int
}

func (s *indexedStore) Atomic(_ context.Context, fn func(tx Store) error) error {
	return fn(s)
}

func (s *indexedStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.emailLookups++
	users, _ := s.FindAllUsers(ctx)
	for _, u := range users {
		if domain.EqualFoldASCII(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

var errStoreDown = errors.New("store unavailable")
