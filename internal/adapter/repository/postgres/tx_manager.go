package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// readOnlyOptions gives every statement of a report read the same snapshot.
var readOnlyOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

var readWriteOptions = pgx.TxOptions{
	IsoLevel: pgx.ReadCommitted,
}

// TxManager runs functions inside database transactions.
type TxManager struct {
	pool pgxBeginner
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxBeginner) *TxManager {
	return &TxManager{pool: pool}
}

// ReadOnly runs fn in a read-only repeatable-read transaction. The
// transaction is committed when fn returns nil and rolled back otherwise.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return m.run(ctx, readOnlyOptions, fn)
}

// WithTx runs fn in a read-write transaction.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return m.run(ctx, readWriteOptions, fn)
}

func (m *TxManager) run(ctx context.Context, opts pgx.TxOptions, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}
