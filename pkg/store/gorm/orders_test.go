package gorm

import (
	"context"
	"math/big"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store"
)

// Write paths are covered by the in-memory store parity tests and the
// testcontainers integration suite; sqlmock covers the read queries here.
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{},
	)
	require.NoError(t, err)

	return NewStore(gdb), mock
}

func TestGetOrder(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "request_id", "status", "fulfillment_type"}).
		AddRow("0x1-lock_and_fulfill", "0x1", "pending_proving", "lock_and_fulfill")
	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE id = .+`).
		WithArgs("0x1-lock_and_fulfill").
		WillReturnRows(rows)

	order, err := s.GetOrder(context.Background(), "0x1-lock_and_fulfill")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingProving, order.Status)
	assert.Equal(t, "0x1", order.RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE id = .+`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCommittedOrders(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "status"}).
		AddRow("0x1-lock_and_fulfill", "proving").
		AddRow("0x2-lock_and_fulfill", "pending_proving")
	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE status IN .+`).
		WillReturnRows(rows)

	orders, err := s.GetCommittedOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, model.StatusProving, orders[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRequestLocked(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT count\(.+\) FROM "request_locks" WHERE request_id = .+`).
		WithArgs("0x2a").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	locked, err := s.IsRequestLocked(context.Background(), big.NewInt(42))
	require.NoError(t, err)
	assert.True(t, locked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRequestLockerNotLocked(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM "request_locks" WHERE request_id = .+`).
		WithArgs("0x2a").
		WillReturnRows(sqlmock.NewRows([]string{"request_id"}))

	_, _, ok, err := s.GetRequestLocker(context.Background(), big.NewInt(42))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
