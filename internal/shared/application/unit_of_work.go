// Package application holds the ports and helpers shared by the command
// and query handlers of all bounded contexts.
package application

import "context"

// UnitOfWork groups repository writes into a single transaction.
// Begin returns a context carrying the transaction; repositories pick
// it up transparently.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc runs inside a unit of work.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork begins a transaction, runs fn, and commits. On any fn
// error the transaction is rolled back and the original error returned.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
