package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{httpClient: http.DefaultClient}
}

func TestFetchFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.bin")
	require.NoError(t, os.WriteFile(path, []byte("guest input"), 0o600))

	data, err := newTestClient().Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, []byte("guest input"), data)
}

func TestFetchFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))

	c := newTestClient()
	c.MaxBytes = 32
	_, err := c.Fetch(context.Background(), "file://"+path)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image bytes"))
	}))
	defer srv.Close()

	data, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestFetchHTTPNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient().Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetchHTTPTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 128))
	}))
	defer srv.Close()

	c := newTestClient()
	c.MaxBytes = 64
	_, err := c.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, err := newTestClient().Fetch(context.Background(), "ftp://example.com/input")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestFetchS3RequiresBucket(t *testing.T) {
	c := newTestClient()
	_, err := c.Fetch(context.Background(), "s3:///just-a-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S3_BUCKET")
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("S3_ACCESS", "test-access")
	t.Setenv("S3_SECRET", "test-secret")
	t.Setenv("S3_BUCKET", "proof-inputs")
	t.Setenv("S3_URL", "http://127.0.0.1:9000")
	t.Setenv("S3_NO_PRESIGNED", "true")

	c, err := NewFromEnv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "proof-inputs", c.bucket)
	assert.True(t, c.noPresigned)
}
