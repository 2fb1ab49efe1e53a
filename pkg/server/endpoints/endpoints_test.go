package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkmarket/broker/pkg/config"
	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/middleware"
	"github.com/zkmarket/broker/pkg/store/memory"
)

func newTestServer(t *testing.T, health server.HealthCheck) (*server.Server, *memory.Store, *middleware.APIAuthenticator) {
	t.Helper()

	mem := memory.NewStore()
	cfg := config.NewHandle(&config.Config{})
	s := server.NewServer(mem, cfg, health, "127.0.0.1", "0")
	auth := middleware.NewAPIAuthenticatorWithSecret([]byte("test-secret"))
	RegisterEndpoints(s, auth)
	return s, mem, auth
}

func authedRequest(t *testing.T, auth *middleware.APIAuthenticator, method, target string) *http.Request {
	t.Helper()
	token, err := auth.IssueToken("test", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func seedOrder(t *testing.T, mem *memory.Store, id int64, fulfillmentType model.FulfillmentType) string {
	t.Helper()
	order := &model.OrderRequest{
		Request: model.ProofRequest{
			RequestID: big.NewInt(id),
			ImageURL:  "http://example.com/image",
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
		FulfillmentType: fulfillmentType,
	}
	require.NoError(t, mem.InsertAcceptedOrder(context.Background(), order, big.NewInt(5)))
	return order.ID()
}

func TestHealthOK(t *testing.T) {
	s, _, _ := newTestServer(t, func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
}

func TestHealthUnavailable(t *testing.T) {
	s, _, _ := newTestServer(t, func(ctx context.Context) error { return errors.New("db down") })

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "db down", body.Error)
}

func TestGetOrder(t *testing.T) {
	s, mem, auth := newTestServer(t, nil)
	id := seedOrder(t, mem, 42, model.LockAndFulfill)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, authedRequest(t, auth, http.MethodGet, "/orders/"+id))

	require.Equal(t, http.StatusOK, rec.Code)
	var body OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, id, body.ID)
	assert.Equal(t, "pending_proving", body.Status)
	assert.Equal(t, "5", body.LockPrice)
	assert.Equal(t, uint64(1200), body.ExpiresAt)
}

func TestGetOrderNotFound(t *testing.T) {
	s, _, auth := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, authedRequest(t, auth, http.MethodGet, "/orders/0x99-lock_and_fulfill"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListOrdersFiltersByStatus(t *testing.T) {
	s, mem, auth := newTestServer(t, nil)
	seedOrder(t, mem, 1, model.LockAndFulfill)
	seedOrder(t, mem, 2, model.FulfillAfterLockExpire)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, authedRequest(t, auth, http.MethodGet, "/orders?status=pending_proving"))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 2)
}

func TestListOrdersRejectsBadStatus(t *testing.T) {
	s, _, auth := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, authedRequest(t, auth, http.MethodGet, "/orders?status=bogus"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersRequireAuth(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConfigShow(t *testing.T) {
	s, _, auth := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, authedRequest(t, auth, http.MethodGet, "/config"))

	require.Equal(t, http.StatusOK, rec.Code)
	var attrs []config.Attribute
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &attrs))
	assert.NotEmpty(t, attrs)
}

func TestMetricsExposed(t *testing.T) {
	s, _, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
