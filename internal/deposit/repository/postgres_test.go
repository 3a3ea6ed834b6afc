package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"depositrelay/internal/apperr"
	"depositrelay/internal/deposit"
	"depositrelay/internal/okx/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var insertSQL = regexp.QuoteMeta("INSERT INTO deposits (id, user_id, currency, chain, address, memo, status, created_at)")

func newMockLedger(t *testing.T) (*PostgresLedger, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostgresLedger(sqlx.NewDb(db, "postgres"), time.Second), mock
}

func TestRecordAssignsIDAndDefaults(t *testing.T) {
	ledger, mock := newMockLedger(t)
	memo := "778899"

	mock.ExpectExec(insertSQL).
		WithArgs(sqlmock.AnyArg(), "u1", "TON", "TON", "EQ123", "778899", "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &deposit.Request{UserID: "u1", Currency: "TON", Chain: "TON", Address: "EQ123", Memo: &memo}
	id, err := ledger.Record(context.Background(), req)

	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, req.ID)
	assert.Equal(t, entity.StatusPending, req.Status)
	assert.False(t, req.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordKeepsCallerID(t *testing.T) {
	ledger, mock := newMockLedger(t)

	mock.ExpectExec(insertSQL).
		WithArgs("given-id", "u1", "USDT", "TRC20", "T1", nil, "pending", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := ledger.Record(context.Background(), &deposit.Request{
		ID: "given-id", UserID: "u1", Currency: "USDT", Chain: "TRC20", Address: "T1",
	})
	require.NoError(t, err)
	assert.Equal(t, "given-id", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordUniqueIDs(t *testing.T) {
	ledger, mock := newMockLedger(t)
	for i := 0; i < 2; i++ {
		mock.ExpectExec(insertSQL).WillReturnResult(sqlmock.NewResult(0, 1))
	}

	a, err := ledger.Record(context.Background(), &deposit.Request{UserID: "u", Currency: "BTC", Chain: "BTC", Address: "x"})
	require.NoError(t, err)
	b, err := ledger.Record(context.Background(), &deposit.Request{UserID: "u", Currency: "BTC", Chain: "BTC", Address: "x"})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRecordPersistenceError(t *testing.T) {
	t.Run("generic failure", func(t *testing.T) {
		ledger, mock := newMockLedger(t)
		mock.ExpectExec(insertSQL).WillReturnError(errors.New("connection refused"))

		_, err := ledger.Record(context.Background(), &deposit.Request{UserID: "u", Currency: "BTC", Chain: "BTC", Address: "x"})
		assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
	})

	t.Run("duplicate id", func(t *testing.T) {
		ledger, mock := newMockLedger(t)
		mock.ExpectExec(insertSQL).WillReturnError(&pq.Error{Code: uniqueViolation})

		_, err := ledger.Record(context.Background(), &deposit.Request{ID: "dup", UserID: "u", Currency: "BTC", Chain: "BTC", Address: "x"})
		assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
		assert.Contains(t, err.Error(), "duplicate deposit id dup")
	})
}

func TestFindByID(t *testing.T) {
	cols := []string{"id", "user_id", "currency", "chain", "address", "memo", "status", "created_at"}
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		ledger, mock := newMockLedger(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
			WithArgs("d1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("d1", "u1", "USDT", "TRC20", "T1", nil, "pending", created))

		req, err := ledger.FindByID(context.Background(), "d1")
		require.NoError(t, err)
		assert.Equal(t, "T1", req.Address)
		assert.Nil(t, req.Memo)
		assert.Equal(t, entity.StatusPending, req.Status)
		assert.Equal(t, created, req.CreatedAt)
	})

	t.Run("missing", func(t *testing.T) {
		ledger, mock := newMockLedger(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id")).
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(cols))

		_, err := ledger.FindByID(context.Background(), "nope")
		assert.ErrorIs(t, err, deposit.ErrNotFound)
	})
}

func TestEnsureSchema(t *testing.T) {
	ledger, mock := newMockLedger(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS deposits")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ledger.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
