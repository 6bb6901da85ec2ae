package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rezkam/taskboard/internal/domain"
)

// PostgreSQL error codes mapped to domain kinds.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// === pgtype Conversion Helpers ===

// dateToPgtype converts a calendar date to pgtype.Date.
func dateToPgtype(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOf(t), Valid: true}
}

// datePtrToPgtype converts *time.Time to pgtype.Date, NULL for nil.
func datePtrToPgtype(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return dateToPgtype(*t)
}

// pgtypeToDate converts pgtype.Date to a calendar date (zero if NULL).
func pgtypeToDate(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return domain.DateOf(d.Time)
}

// pgtypeToDatePtr converts pgtype.Date to *time.Time (nil if NULL).
func pgtypeToDatePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	date := domain.DateOf(d.Time)
	return &date
}

// === Row Types ===
// Scanned with pgx.RowToStructByName; db tags match the column names.

type userRow struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Role     string `db:"role"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Username: r.Username, Email: r.Email, Role: r.Role}
}

type projectRow struct {
	ID          int64       `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	StartDate   pgtype.Date `db:"start_date"`
	EndDate     pgtype.Date `db:"end_date"`
}

func (r projectRow) toDomain() *domain.Project {
	return &domain.Project{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		StartDate:   pgtypeToDate(r.StartDate),
		EndDate:     pgtypeToDatePtr(r.EndDate),
	}
}

type taskRow struct {
	ID          int64       `db:"id"`
	Name        string      `db:"name"`
	Description string      `db:"description"`
	Status      string      `db:"status"`
	Priority    int32       `db:"priority"`
	DueDate     pgtype.Date `db:"due_date"`
	ProjectID   int64       `db:"project_id"`
	UserID      int64       `db:"user_id"`
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Priority:    int(r.Priority),
		DueDate:     pgtypeToDate(r.DueDate),
		ProjectID:   r.ProjectID,
		UserID:      r.UserID,
	}
}

// mapRows converts scanned rows; the result is never nil.
func mapRows[R, D any](rows []R, convert func(R) *D) []*D {
	out := make([]*D, len(rows))
	for i, r := range rows {
		out[i] = convert(r)
	}
	return out
}
