package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestTxManager_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error {
			_, err := conn(ctx, db).ExecContext(ctx, `UPDATE events SET name = 'x'`)
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = NewTxManager(db).WithinTx(ctx, func(ctx context.Context) error { return boom })
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		tm := NewTxManager(db)
		err = tm.WithinTx(ctx, func(ctx context.Context) error {
			return tm.WithinTx(ctx, func(context.Context) error { return nil })
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "registrations_ticket_id_key"}
	require.True(t, isUniqueViolation(err, "registrations_ticket_id_key"))
	require.True(t, isUniqueViolation(err, ""))
	require.False(t, isUniqueViolation(err, "registrations_one_active_idx"))
	require.False(t, isUniqueViolation(&pq.Error{Code: "23503"}, ""))
	require.False(t, isUniqueViolation(errors.New("plain"), ""))
	require.False(t, isUniqueViolation(nil, ""))
}
