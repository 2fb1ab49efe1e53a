package memory

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store"
)

func testOrderRequest(id int64, ft model.FulfillmentType) *model.OrderRequest {
	return &model.OrderRequest{
		Request: model.ProofRequest{
			RequestID: big.NewInt(id),
			ImageURL:  "https://images.example.com/echo",
			Offer: model.Offer{
				MinPrice:     big.NewInt(1),
				MaxPrice:     big.NewInt(2),
				BiddingStart: 1000,
				RampUpPeriod: 1,
				LockTimeout:  100,
				Timeout:      200,
				LockStake:    big.NewInt(0),
			},
		},
		FulfillmentType: ft,
	}
}

func TestInsertAcceptedOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	req := testOrderRequest(1, model.LockAndFulfill)
	require.NoError(t, s.InsertAcceptedOrder(ctx, req, big.NewInt(42)))

	order, err := s.GetOrder(ctx, req.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingProving, order.Status)
	assert.Equal(t, "42", order.LockPrice)
	assert.Equal(t, big.NewInt(42), order.LockPriceWei())
}

func TestInsertSkippedOrderDoesNotOverwrite(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	req := testOrderRequest(2, model.FulfillAfterLockExpire)
	require.NoError(t, s.InsertAcceptedOrder(ctx, req, nil))
	require.NoError(t, s.InsertSkippedOrder(ctx, req))

	order, err := s.GetOrder(ctx, req.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingProving, order.Status, "skip after commit must not regress status")
}

func TestGetOrderNotFound(t *testing.T) {
	s := NewStore()
	_, err := s.GetOrder(context.Background(), "0xdead-lock_and_fulfill")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestGetCommittedOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	committed := testOrderRequest(3, model.LockAndFulfill)
	require.NoError(t, s.InsertAcceptedOrder(ctx, committed, nil))

	skipped := testOrderRequest(4, model.LockAndFulfill)
	require.NoError(t, s.InsertSkippedOrder(ctx, skipped))

	orders, err := s.GetCommittedOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, committed.ID(), orders[0].ID)
}

func TestSetOrderStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	req := testOrderRequest(5, model.LockAndFulfill)
	require.NoError(t, s.InsertAcceptedOrder(ctx, req, nil))
	require.NoError(t, s.SetOrderStatus(ctx, req.ID(), model.StatusProving))

	order, err := s.GetOrder(ctx, req.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StatusProving, order.Status)

	err = s.SetOrderStatus(ctx, "missing", model.StatusDone)
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func TestRequestIndex(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	id := big.NewInt(77)

	locked, err := s.IsRequestLocked(ctx, id)
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, s.SetRequestLocked(ctx, id, "0x00000000000000000000000000000000000000aa", 123))

	locked, err = s.IsRequestLocked(ctx, id)
	require.NoError(t, err)
	assert.True(t, locked)

	locker, lockedAt, ok, err := s.GetRequestLocker(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0x00000000000000000000000000000000000000aa", locker)
	assert.Equal(t, uint64(123), lockedAt)

	fulfilled, err := s.IsRequestFulfilled(ctx, id)
	require.NoError(t, err)
	assert.False(t, fulfilled)

	require.NoError(t, s.SetRequestFulfilled(ctx, id, 456))
	fulfilled, err = s.IsRequestFulfilled(ctx, id)
	require.NoError(t, err)
	assert.True(t, fulfilled)
}

func TestListOrdersByStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.InsertAcceptedOrder(ctx, testOrderRequest(6, model.LockAndFulfill), nil))
	require.NoError(t, s.InsertSkippedOrder(ctx, testOrderRequest(7, model.LockAndFulfill)))

	skipped := model.StatusSkipped
	orders, err := s.ListOrders(ctx, &skipped)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, model.StatusSkipped, orders[0].Status)

	all, err := s.ListOrders(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
