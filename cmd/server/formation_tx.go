package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "formation/pkg/domain-errors"
	txcontext "formation/pkg/platform/tx"
)

const defaultFormationTxTimeout = 5 * time.Second

// formationPostgresTx runs a unit of work in a database transaction carried
// through the context, so stores built on txcontext.Pick join it.
type formationPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newFormationPostgresTx(db *sql.DB) *formationPostgresTx {
	return &formationPostgresTx{db: db}
}

func (t *formationPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultFormationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
