package storage

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store/memory"
)

func seedPendingOrder(t *testing.T, mem *memory.Store, id int64, imageURL, inputURL string) string {
	t.Helper()
	order := &model.OrderRequest{
		Request: model.ProofRequest{
			RequestID: big.NewInt(id),
			ImageURL:  imageURL,
			InputURL:  inputURL,
			Offer: model.Offer{
				MinPrice:  big.NewInt(1),
				MaxPrice:  big.NewInt(2),
				LockStake: big.NewInt(0),
			},
		},
		FulfillmentType: model.LockAndFulfill,
	}
	require.NoError(t, mem.InsertAcceptedOrder(context.Background(), order, big.NewInt(1)))
	return order.ID()
}

func TestPrefetcherStagesOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image bytes"))
	}))
	defer srv.Close()

	mem := memory.NewStore()
	id := seedPendingOrder(t, mem, 1, srv.URL+"/image", srv.URL+"/input")

	p := NewPrefetcher(mem, &Client{httpClient: srv.Client()}, time.Millisecond)
	require.NoError(t, p.tick(context.Background()))

	order, err := mem.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusProving, order.Status)
	require.NotNil(t, order.ProvingStartedAt)
}

func TestPrefetcherFailsUnfetchableOrders(t *testing.T) {
	mem := memory.NewStore()
	id := seedPendingOrder(t, mem, 2, "ftp://example.com/image", "")

	p := NewPrefetcher(mem, &Client{httpClient: http.DefaultClient}, time.Millisecond)
	require.NoError(t, p.tick(context.Background()))

	order, err := mem.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, order.Status)
}

func TestPrefetcherLeavesOrdersOnTransientFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mem := memory.NewStore()
	id := seedPendingOrder(t, mem, 3, srv.URL+"/image", "")

	p := NewPrefetcher(mem, &Client{httpClient: srv.Client()}, time.Millisecond)
	require.NoError(t, p.tick(context.Background()))

	order, err := mem.GetOrder(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPendingProving, order.Status)
}

func TestPrefetcherRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPrefetcher(memory.NewStore(), &Client{httpClient: http.DefaultClient}, time.Millisecond)
	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
