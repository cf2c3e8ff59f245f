package service

import (
	"context"
	"sync"

	dErrors "formation/pkg/domain-errors"
)

// TxRunner runs fn as one unit of work. The context passed to fn carries the
// transaction for stores that support one.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LockingTx serialises units of work with a mutex. It stands in for a
// database transaction when the stores are in memory.
type LockingTx struct {
	mu sync.Mutex
}

func NewLockingTx() *LockingTx {
	return &LockingTx{}
}

func (t *LockingTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}
