package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rezkam/taskboard/internal/application/tracker"
	"github.com/rezkam/taskboard/internal/infrastructure/observability"
)

// dbtx is the query surface shared by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL implementation of tracker.Store.
//
// A Store returned by NewStore runs each method on its own pooled connection.
// The Store handed to an Atomic callback runs every method on that transaction.
type Store struct {
	pool        *pgxpool.Pool
	db          dbtx
	instruments *observability.TxInstruments
	inTx        bool
}

var (
	_ tracker.Store           = (*Store)(nil)
	_ tracker.UserEmailLookup = (*Store)(nil)
)

// NewStore creates a store on top of an open connection pool.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	instruments, err := observability.NewTxInstruments("postgresql")
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction instruments: %w", err)
	}
	return &Store{pool: pool, db: pool, instruments: instruments}, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Atomic runs fn in a SERIALIZABLE transaction, so a check made through tx
// still holds when the following write commits. Nested calls join the outer transaction.
func (s *Store) Atomic(ctx context.Context, fn func(tx tracker.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.executeInTransaction(ctx, func(txStore *Store) error {
		return fn(txStore)
	})
}

// finalizeTx rolls back on error and commits otherwise.
// Panics are handled by the caller before finalizeTx runs.
func finalizeTx(ctx context.Context, tx pgx.Tx, txID string, err *error) {
	if *err != nil {
		slog.ErrorContext(ctx, "transaction failed, rolling back",
			"tx_id", txID,
			"error", *err)
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.ErrorContext(ctx, "rollback failed",
				"tx_id", txID,
				"original_error", *err,
				"rollback_error", rbErr)
			*err = fmt.Errorf("transaction failed: %w (rollback error: %v)", *err, rbErr)
		}
		return
	}

	if cErr := tx.Commit(ctx); cErr != nil {
		slog.ErrorContext(ctx, "transaction commit failed",
			"tx_id", txID,
			"error", cErr)
		*err = fmt.Errorf("failed to commit transaction: %w", cErr)
	}
}

// executeInTransaction runs fn on a transaction-bound Store with logging, telemetry and panic recovery.
func (s *Store) executeInTransaction(ctx context.Context, fn func(txStore *Store) error) (err error) {
	txID := uuid.NewString()
	ctx, finish := s.instruments.Start(ctx, txID)
	start := time.Now().UTC()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		slog.ErrorContext(ctx, "failed to begin transaction",
			"tx_id", txID,
			"error", err)
		finish(observability.OutcomeRolledBack, err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back",
				"tx_id", txID,
				"panic", p)
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.ErrorContext(ctx, "rollback after panic failed",
					"tx_id", txID,
					"rollback_error", rbErr)
			}
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

	err = fn(&Store{pool: s.pool, db: tx, instruments: s.instruments, inTx: true})
	return
}
