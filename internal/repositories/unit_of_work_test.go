package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUnitOfWorkCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM necessidades_cardapio").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewUnitOfWork(db).Execute(context.Background(), func(exec SQLExecutor) error {
		_, err := exec.ExecContext(context.Background(), "DELETE FROM necessidades_cardapio WHERE id = $1", 1)
		return err
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = NewUnitOfWork(db).Execute(context.Background(), func(exec SQLExecutor) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		_ = NewUnitOfWork(db).Execute(context.Background(), func(exec SQLExecutor) error { panic("bad row") })
	}()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUnitOfWorkBeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err = NewUnitOfWork(db).Execute(context.Background(), func(exec SQLExecutor) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrDatabaseError) || called {
		t.Fatalf("expected ErrDatabaseError without running fn, got %v (called=%v)", err, called)
	}
}
