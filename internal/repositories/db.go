package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the statement surface shared by a pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DB is satisfied by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Transactor runs fn inside one database transaction. Repository calls made with
// the context handed to fn join that transaction. Nested calls reuse the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// InTx reports whether ctx already carries an open transaction.
	InTx(ctx context.Context) bool
}

type txKey struct{}

type pgTransactor struct {
	db DB
}

func NewTransactor(db DB) Transactor {
	return &pgTransactor{db: db}
}

func (t *pgTransactor) InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.InTx(ctx) {
		return fn(ctx)
	}

	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// conn returns the transaction carried by ctx, or db when there is none.
func conn(ctx context.Context, db DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
