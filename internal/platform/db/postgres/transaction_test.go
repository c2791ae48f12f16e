package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockManager(t *testing.T) (pgxmock.PgxPoolIface, *TransactionManager) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewTransactionManager(mock)
}

func assertExpectations(t *testing.T, mock pgxmock.PgxPoolIface) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_WritesGoThroughContextTx(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)
	closeAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE required_configs SET effective_to = $1::date WHERE id = $2`)).
		WithArgs(closeAt, "cfg-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		exec := QueryerFromContext(ctx, nil)
		if exec == nil {
			t.Fatalf("expected transaction queryer in context")
		}
		_, err := exec.Exec(ctx, `UPDATE required_configs SET effective_to = $1::date WHERE id = $2`, closeAt, "cfg-1")
		return err
	})
	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestTransactionManager_ReadOnlyRollsBackOnNotFound(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectRollback()

	errNotFound := errors.New("attendance: not found")
	err := tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); !ok {
			t.Fatalf("transaction not injected into context")
		}
		return errNotFound
	})
	if !errors.Is(err, errNotFound) {
		t.Fatalf("expected %v, got %v", errNotFound, err)
	}

	assertExpectations(t, mock)
}

func TestTransactionManager_PublisherJoinsCatalogTx(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err := tm.WithinReadWrite(context.Background(), func(catalogCtx context.Context) error {
		outer, _ := txFromContext(catalogCtx)
		return tm.WithinReadWrite(catalogCtx, func(publishCtx context.Context) error {
			inner, ok := txFromContext(publishCtx)
			if !ok || inner != outer {
				t.Fatalf("nested call did not reuse the outer transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested transaction returned error: %v", err)
	}

	assertExpectations(t, mock)
}

func TestTransactionManager_ReadWriteRetriesDeadlock(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectRollback()
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	calls := 0
	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: deadlockDetectedCode}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}

	assertExpectations(t, mock)
}

func TestTransactionManager_ReadWriteGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)
	for i := 0; i < defaultMaxAttempts; i++ {
		mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
		mock.ExpectRollback()
	}

	calls := 0
	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		calls++
		return &pgconn.PgError{Code: serializationFailureCode}
	})
	if pgErrCode(err) != serializationFailureCode {
		t.Fatalf("expected serialization failure, got %v", err)
	}
	if calls != defaultMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", defaultMaxAttempts, calls)
	}

	assertExpectations(t, mock)
}

func TestTransactionManager_ReadWriteDoesNotRetryDomainError(t *testing.T) {
	t.Parallel()

	mock, tm := newMockManager(t)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectRollback()

	errConflict := errors.New("schedule: active schedule already exists")
	calls := 0
	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		calls++
		return errConflict
	})
	if !errors.Is(err, errConflict) {
		t.Fatalf("expected %v, got %v", errConflict, err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}

	assertExpectations(t, mock)
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
