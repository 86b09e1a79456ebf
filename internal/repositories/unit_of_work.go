package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork runs a function inside one transaction.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(exec SQLExecutor) error) error
}

type dbUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a UnitOfWork backed by db.
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &dbUnitOfWork{db: db}
}

// Execute commits when fn returns nil and rolls back on error or panic.
func (u *dbUnitOfWork) Execute(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", ErrDatabaseError, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w: rolling back after %v: %v", ErrDatabaseError, err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", ErrDatabaseError, err)
	}
	return nil
}
