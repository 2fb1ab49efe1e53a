// Package storage fetches guest images and proof inputs referenced by orders.
// Supported schemes are http(s), file and s3; s3 objects are fetched through
// presigned URLs unless disabled.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/zkmarket/broker/pkg/log"
)

// ErrUnsupportedScheme is returned for URLs the fetcher cannot handle.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// ErrTooLarge is returned when a download exceeds the size limit.
var ErrTooLarge = errors.New("download exceeds size limit")

// DefaultMaxBytes caps downloads at 100 MiB.
const DefaultMaxBytes = 100 << 20

const presignExpiry = 15 * time.Minute

// Fetcher retrieves the content behind an order's image or input URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Client fetches over HTTP, the local filesystem and S3.
type Client struct {
	httpClient  *http.Client
	s3Client    *s3.Client
	presigner   *s3.PresignClient
	bucket      string
	noPresigned bool

	// MaxBytes caps download sizes. Zero uses DefaultMaxBytes.
	MaxBytes int64
}

var _ Fetcher = (*Client)(nil)

// NewFromEnv builds a client from the environment:
//
//	S3_ACCESS, S3_SECRET  static credentials (falls back to the default chain)
//	S3_BUCKET             default bucket for s3:// URLs without a host
//	S3_URL                custom endpoint, e.g. MinIO
//	AWS_REGION            region
//	S3_NO_PRESIGNED       fetch objects directly instead of presigning
func NewFromEnv(ctx context.Context) (*Client, error) {
	logger := log.WithComponent("storage")

	var opts []func(*awsconfig.LoadOptions) error
	if region := os.Getenv("AWS_REGION"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if access := os.Getenv("S3_ACCESS"); access != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(access, os.Getenv("S3_SECRET"), ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	endpoint := os.Getenv("S3_URL")
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	noPresigned, _ := strconv.ParseBool(os.Getenv("S3_NO_PRESIGNED"))
	if endpoint != "" {
		logger.Info().Str("endpoint", endpoint).Bool("no_presigned", noPresigned).
			Msg("using custom s3 endpoint")
	}

	return &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		s3Client:    s3Client,
		presigner:   s3.NewPresignClient(s3Client),
		bucket:      os.Getenv("S3_BUCKET"),
		noPresigned: noPresigned,
	}, nil
}

func (c *Client) maxBytes() int64 {
	if c.MaxBytes > 0 {
		return c.MaxBytes
	}
	return DefaultMaxBytes
}

// Fetch retrieves the content at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "http", "https":
		return c.fetchHTTP(ctx, rawURL)
	case "file":
		return c.fetchFile(u.Path)
	case "s3":
		return c.fetchS3(ctx, u)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func (c *Client) fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed: unexpected status %d", resp.StatusCode)
	}
	return c.readLimited(resp.Body)
}

func (c *Client) fetchFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > c.maxBytes() {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
	}
	return os.ReadFile(path)
}

func (c *Client) fetchS3(ctx context.Context, u *url.URL) ([]byte, error) {
	bucket := u.Host
	if bucket == "" {
		bucket = c.bucket
	}
	if bucket == "" {
		return nil, errors.New("s3 url has no bucket and S3_BUCKET is not set")
	}
	key := strings.TrimPrefix(u.Path, "/")

	if c.noPresigned {
		out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("s3 get s3://%s/%s failed: %w", bucket, key, err)
		}
		defer func() { _ = out.Body.Close() }()
		return c.readLimited(out.Body)
	}

	presigned, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("presign s3://%s/%s failed: %w", bucket, key, err)
	}
	return c.fetchHTTP(ctx, presigned.URL)
}

func (c *Client) readLimited(r io.Reader) ([]byte, error) {
	limit := c.maxBytes()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
