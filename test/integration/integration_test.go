package integration

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkmarket/broker/pkg/model"
)

func requireIntegration(t *testing.T) *TestContext {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx := context.Background()
	tc, err := NewTestContext(ctx)
	if err != nil {
		t.Fatalf("Failed to create test context: %v", err)
	}
	t.Cleanup(func() { tc.Close(ctx) })
	return tc
}

func TestFeatures(t *testing.T) {
	tc := requireIntegration(t)

	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			steps := NewStepsContext(tc)
			steps.RegisterSteps(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("Non-zero status returned, failed to run feature tests")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	tc := requireIntegration(t)
	ctx := context.Background()

	order := &model.OrderRequest{
		Request: model.ProofRequest{
			RequestID: big.NewInt(0x900),
			ImageURL:  "http://example.com/image",
			InputURL:  "http://example.com/input",
			Offer: model.Offer{
				MinPrice:     big.NewInt(1),
				MaxPrice:     big.NewInt(10),
				BiddingStart: uint64(time.Now().Unix()),
				LockTimeout:  600,
				Timeout:      1200,
				LockStake:    big.NewInt(5),
			},
		},
		ClientSig:       []byte{1, 2, 3},
		FulfillmentType: model.LockAndFulfill,
		TotalCycles:     42_000,
	}

	require.NoError(t, tc.Store.InsertAcceptedOrder(ctx, order, big.NewInt(7)))

	got, err := tc.Store.GetOrder(ctx, order.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingProving, got.Status)
	assert.Equal(t, "7", got.LockPrice)
	assert.Equal(t, uint64(42_000), got.TotalCycles)
	assert.Equal(t, []byte{1, 2, 3}, got.ClientSig)

	committed, err := tc.Store.GetCommittedOrders(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, committed)

	require.NoError(t, tc.Store.SetOrderStatus(ctx, order.ID(), model.StatusProving))
	got, err = tc.Store.GetOrder(ctx, order.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StatusProving, got.Status)
	require.NotNil(t, got.ProvingStartedAt)

	locked, err := tc.Store.IsRequestLocked(ctx, big.NewInt(0x900))
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, tc.Store.SetRequestLocked(ctx, big.NewInt(0x900), "0xabc", 1234))
	locked, err = tc.Store.IsRequestLocked(ctx, big.NewInt(0x900))
	require.NoError(t, err)
	assert.True(t, locked)

	locker, lockedAt, ok, err := tc.Store.GetRequestLocker(ctx, big.NewInt(0x900))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0xabc", locker)
	assert.Equal(t, uint64(1234), lockedAt)

	require.NoError(t, tc.Store.SetRequestFulfilled(ctx, big.NewInt(0x900), 5678))
	fulfilled, err := tc.Store.IsRequestFulfilled(ctx, big.NewInt(0x900))
	require.NoError(t, err)
	assert.True(t, fulfilled)
}
