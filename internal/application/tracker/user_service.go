package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rezkam/taskboard/internal/domain"
)

// UserService enforces the user rules.
type UserService struct {
	store  Store
	config Config
}

// NewUserService creates a user service backed by store.
func NewUserService(store Store, config Config) *UserService {
	return &UserService{store: store, config: config.withDefaults()}
}

// ListUsers returns every user.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.FindAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns the user with the given ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if err := domain.ValidateID("user", id); err != nil {
		return nil, err
	}
	user, err := lookup(ctx, s.store.FindUserByID, "user", id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(domain.ErrUserNotFound, id)
	}
	return user, nil
}

// UserExists reports whether a user with the given ID is stored.
// Non-positive IDs never exist.
func (s *UserService) UserExists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	user, err := lookup(ctx, s.store.FindUserByID, "user", id)
	return user != nil, err
}

// CreateUser validates and stores a new user.
// Fails with ErrAlreadyExists when another user has the same email, ignoring case.
func (s *UserService) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}
	if user.ID != 0 {
		return nil, domain.InvalidArgument("new user must not have an ID")
	}

	created := *user
	err := s.store.Atomic(ctx, func(tx Store) error {
		if err := ensureEmailAvailable(ctx, tx, user.Email, 0); err != nil {
			return err
		}
		id, err := tx.SaveUser(ctx, user)
		if err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		created.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateUser overwrites username, email and role of an existing user.
// Email uniqueness is re-checked only when the email changes.
func (s *UserService) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}
	if err := domain.ValidateID("user", user.ID); err != nil {
		return nil, err
	}

	err := s.store.Atomic(ctx, func(tx Store) error {
		existing, err := lookup(ctx, tx.FindUserByID, "user", user.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound(domain.ErrUserNotFound, user.ID)
		}
		if existing.Email != user.Email {
			if err := ensureEmailAvailable(ctx, tx, user.Email, user.ID); err != nil {
				return err
			}
		}
		if err := tx.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	updated := *user
	return &updated, nil
}

// DeleteUser removes an existing user. Tasks assigned to the user are left untouched.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := domain.ValidateID("user", id); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(tx Store) error {
		existing, err := lookup(ctx, tx.FindUserByID, "user", id)
		if err != nil {
			return err
		}
		if existing == nil {
			return notFound(domain.ErrUserNotFound, id)
		}
		if err := tx.DeleteUserByID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

// GetUserByEmail returns the user whose email equals email, ignoring case.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, domain.InvalidArgument("email cannot be blank")
	}
	user, err := findByEmail(ctx, s.store, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: email %s", domain.ErrUserNotFound, email)
	}
	return user, nil
}

// ListUsersByRole returns users whose role equals role, ignoring case.
func (s *UserService) ListUsersByRole(ctx context.Context, role string) ([]*domain.User, error) {
	if _, err := domain.NewRole(role); err != nil {
		return nil, err
	}
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return filter(users, func(u *domain.User) bool {
		return domain.EqualFoldASCII(u.Role, role)
	}), nil
}

// findByEmail uses the store's indexed lookup when it has one and scans all users otherwise.
// Returns (nil, nil) when no user matches.
func findByEmail(ctx context.Context, store Store, email string) (*domain.User, error) {
	if indexed, ok := store.(UserEmailLookup); ok {
		user, err := indexed.FindUserByEmail(ctx, email)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
		return user, nil
	}

	users, err := store.FindAllUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if domain.EqualFoldASCII(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

// ensureEmailAvailable fails with ErrAlreadyExists when a user other than exceptID owns email.
func ensureEmailAvailable(ctx context.Context, store Store, email string, exceptID int64) error {
	owner, err := findByEmail(ctx, store, email)
	if err != nil {
		return err
	}
	if owner != nil && owner.ID != exceptID {
		return fmt.Errorf("%w: user with email %s already exists", domain.ErrAlreadyExists, email)
	}
	return nil
}
