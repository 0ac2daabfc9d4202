package db

import (
	"context"
	"errors"
	"fmt"

	gen "github.com/clinica-platform/apps/api/internal/gen/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Transactor runs a function against queries bound to a single transaction.
// The transaction commits only when fn returns nil.
type Transactor struct {
	Pool    *pgxpool.Pool
	Queries *gen.Queries
}

func NewTransactor(pool *pgxpool.Pool, q *gen.Queries) *Transactor {
	return &Transactor{Pool: pool, Queries: q}
}

func (t *Transactor) InTx(ctx context.Context, fn func(q *gen.Queries) error) error {
	tx, err := t.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(t.Queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
