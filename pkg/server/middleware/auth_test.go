package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(auth *APIAuthenticator) http.Handler {
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := r.Context().Value(SubjectKey).(string)
		_, _ = w.Write([]byte("hello " + subject))
	}))
}

func TestMiddlewareAcceptsValidToken(t *testing.T) {
	auth := NewAPIAuthenticatorWithSecret([]byte("test-secret"))
	token, err := auth.IssueToken("operator", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(auth).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello operator", rec.Body.String())
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	auth := NewAPIAuthenticatorWithSecret([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	rec := httptest.NewRecorder()

	protected(auth).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsMalformedHeader(t *testing.T) {
	auth := NewAPIAuthenticatorWithSecret([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()

	protected(auth).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	other := NewAPIAuthenticatorWithSecret([]byte("other-secret"))
	token, err := other.IssueToken("operator", time.Minute)
	require.NoError(t, err)

	auth := NewAPIAuthenticatorWithSecret([]byte("test-secret"))
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(auth).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	auth := NewAPIAuthenticatorWithSecret([]byte("test-secret"))
	token, err := auth.IssueToken("operator", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(auth).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsWhenSecretUnset(t *testing.T) {
	auth := NewAPIAuthenticatorWithSecret(nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()

	protected(auth).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
