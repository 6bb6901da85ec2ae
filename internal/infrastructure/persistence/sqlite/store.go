// Package sqlite implements tracker.Store on an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rezkam/taskboard/internal/application/tracker"
	"github.com/rezkam/taskboard/internal/domain"
	"github.com/rezkam/taskboard/internal/infrastructure/observability"
)

// querier is the query surface shared by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQLite implementation of tracker.Store.
type Store struct {
	db          *sql.DB
	q           querier
	instruments *observability.TxInstruments
	inTx        bool
}

var (
	_ tracker.Store           = (*Store)(nil)
	_ tracker.UserEmailLookup = (*Store)(nil)
)

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) (*Store, error) {
	instruments, err := observability.NewTxInstruments("sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction instruments: %w", err)
	}
	return &Store{db: db, q: db, instruments: instruments}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Atomic runs fn in an IMMEDIATE transaction. Nested calls join the outer transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx tracker.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.executeInTransaction(ctx, func(txStore *Store) error {
		return fn(txStore)
	})
}

func finalizeTx(ctx context.Context, tx *sql.Tx, txID string, err *error) {
	if *err != nil {
		slog.ErrorContext(ctx, "transaction failed, rolling back",
			"tx_id", txID,
			"error", *err)
		if rbErr := tx.Rollback(); rbErr != nil {
			*err = fmt.Errorf("transaction failed: %w (rollback error: %v)", *err, rbErr)
		}
		return
	}
	if cErr := tx.Commit(); cErr != nil {
		slog.ErrorContext(ctx, "transaction commit failed",
			"tx_id", txID,
			"error", cErr)
		*err = fmt.Errorf("failed to commit transaction: %w", cErr)
	}
}

func (s *Store) executeInTransaction(ctx context.Context, fn func(txStore *Store) error) (err error) {
	txID := uuid.NewString()
	ctx, finish := s.instruments.Start(ctx, txID)
	start := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		finish(observability.OutcomeRolledBack, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back",
				"tx_id", txID,
				"panic", p)
			_ = tx.Rollback()
			finish(observability.OutcomePanicked, fmt.Errorf("panic: %v", p))
			panic(p)
		}

		finalizeTx(ctx, tx, txID, &err)
		if err != nil {
			finish(observability.OutcomeRolledBack, err)
			return
		}
		slog.DebugContext(ctx, "transaction completed",
			"tx_id", txID,
			"duration_ms", time.Since(start).Milliseconds())
		finish(observability.OutcomeCommitted, nil)
	}()

	err = fn(&Store{db: s.db, q: tx, instruments: s.instruments, inTx: true})
	return
}

// === Conversion Helpers ===

// formatDate refuses years that YYYY-MM-DD cannot hold; such text would neither
// parse back nor sort chronologically.
func formatDate(t time.Time) (string, error) {
	if !domain.InDateRange(t) {
		return "", domain.InvalidArgument("date %s is outside years %d to %d", t.Format(time.RFC3339), domain.MinYear, domain.MaxYear)
	}
	return domain.FormatDate(t), nil
}

func formatDatePtr(t *time.Time) (sql.NullString, error) {
	if t == nil {
		return sql.NullString{}, nil
	}
	s, err := formatDate(*t)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: s, Valid: true}, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored date %q: %w", s, err)
	}
	return d, nil
}

func parseDatePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := parseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// constraintViolation matches the extended result code, or the primary
// SQLITE_CONSTRAINT code plus the message marker when extended codes are off.
func constraintViolation(err error, extended int, marker string) bool {
	var sqliteErr *sqlitedriver.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == extended ||
		(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), marker))
}

func isUniqueViolation(err error) bool {
	return constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return constraintViolation(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY")
}

// checkRowsAffected returns a not-found error when an UPDATE/DELETE matched no row.
func checkRowsAffected(res sql.Result, notFound error, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", notFound, id)
	}
	return nil
}

// collect scans every row with scan and closes rows. The result is never nil.
func collect[T any](rows *sql.Rows, scan func(*sql.Rows) (*T, error)) ([]*T, error) {
	defer rows.Close()
	out := make([]*T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
