package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRequestID(t *testing.T) {
	order := &OrderRequest{
		Request:         ProofRequest{RequestID: big.NewInt(0xab)},
		FulfillmentType: LockAndFulfill,
	}
	assert.Equal(t, "0xab-lock_and_fulfill", order.ID())

	order.FulfillmentType = FulfillAfterLockExpire
	assert.Equal(t, "0xab-fulfill_after_lock_expire", order.ID())
}

func TestOrderRequestExpiry(t *testing.T) {
	order := &OrderRequest{
		Request: ProofRequest{
			RequestID: big.NewInt(1),
			Offer:     *testOffer(),
		},
		FulfillmentType: LockAndFulfill,
	}
	assert.Equal(t, uint64(1050), order.Expiry(), "lock-and-fulfill orders expire with the lock")

	order.FulfillmentType = FulfillAfterLockExpire
	assert.Equal(t, uint64(1100), order.Expiry(), "fulfill-only orders expire with the request")
}

func TestFulfillmentTypeRoundTrip(t *testing.T) {
	for _, ft := range FulfillmentTypeValues() {
		parsed, err := FulfillmentTypeString(ft.String())
		require.NoError(t, err)
		assert.Equal(t, ft, parsed)
	}
}

func TestOrderStatusRoundTrip(t *testing.T) {
	for _, st := range OrderStatusValues() {
		parsed, err := OrderStatusString(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, parsed)
	}

	_, err := OrderStatusString("bogus")
	assert.Error(t, err)
}
