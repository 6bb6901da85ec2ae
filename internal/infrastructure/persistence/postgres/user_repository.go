package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rezkam/taskboard/internal/domain"
)

const userColumns = "id, username, email, role"

// checkRowsAffected returns a not-found error when an UPDATE/DELETE matched no row.
func checkRowsAffected(rowsAffected int64, notFound error, id int64) error {
	if rowsAffected == 0 {
		return fmt.Errorf("%w: id %d", notFound, id)
	}
	return nil
}

func (s *Store) FindAllUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return mapRows(users, userRow.toDomain), nil
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.findUser(ctx, fmt.Sprintf("id %d", id), "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// FindUserByEmail matches on lower(email), which the unique index covers.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "email "+email, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
}

func (s *Store) findUser(ctx context.Context, key, query string, arg any) (*domain.User, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, key)
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Store) SaveUser(ctx context.Context, user *domain.User) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		"INSERT INTO users (username, email, role) VALUES ($1, $2, $3) RETURNING id",
		user.Username, user.Email, user.Role,
	).Scan(&id)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return 0, fmt.Errorf("%w: email %s: %w", domain.ErrAlreadyExists, user.Email, err)
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE users SET username = $2, email = $3, role = $4 WHERE id = $1",
		user.ID, user.Username, user.Email, user.Role,
	)
	if err != nil {
		if hasCode(err, codeUniqueViolation) {
			return fmt.Errorf("%w: email %s: %w", domain.ErrAlreadyExists, user.Email, err)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrUserNotFound, user.ID)
}

func (s *Store) DeleteUserByID(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return checkRowsAffected(tag.RowsAffected(), domain.ErrUserNotFound, id)
}
