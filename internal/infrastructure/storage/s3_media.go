// Package storage resolves product image keys into URLs the storefront can import from.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	appintegration "github.com/erp/storesync/internal/application/integration"
	infraconfig "github.com/erp/storesync/internal/infrastructure/config"
)

// ErrEmptyMediaKey is returned when an image key is blank
var ErrEmptyMediaKey = errors.New("storage: media key is required")

// Ensure S3MediaStore implements MediaURLResolver
var _ appintegration.MediaURLResolver = (*S3MediaStore)(nil)

// S3MediaStore hands out presigned GET URLs for product images kept in an
// S3-compatible bucket (AWS S3, MinIO, RustFS)
type S3MediaStore struct {
	client            *s3.Client
	presignClient     *s3.PresignClient
	bucket            string
	presignExpiration time.Duration
	logger            *zap.Logger
}

// S3MediaStoreOption is a functional option for configuring S3MediaStore
type S3MediaStoreOption func(*S3MediaStore)

// WithLogger sets a custom logger for S3MediaStore
func WithLogger(logger *zap.Logger) S3MediaStoreOption {
	return func(s *S3MediaStore) {
		s.logger = logger
	}
}

// WithPresignExpiration sets a custom presign expiration duration
func WithPresignExpiration(d time.Duration) S3MediaStoreOption {
	return func(s *S3MediaStore) {
		s.presignExpiration = d
	}
}

// NewS3MediaStore creates a new S3MediaStore from configuration
func NewS3MediaStore(cfg *infraconfig.StorageConfig, opts ...S3MediaStoreOption) (*S3MediaStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	store := &S3MediaStore{
		client:            client,
		presignClient:     s3.NewPresignClient(client),
		bucket:            cfg.Bucket,
		presignExpiration: cfg.URLExpiry,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}

	// The storefront downloads the image asynchronously after the batch call
	if store.presignExpiration == 0 {
		store.presignExpiration = time.Hour
	}

	return store, nil
}

// URL returns a presigned GET URL for key. Keys that already are absolute
// URLs are returned unchanged.
func (s *S3MediaStore) URL(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyMediaKey
	}
	if isAbsoluteURL(key) {
		return key, nil
	}

	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	}, s3.WithPresignExpires(s.presignExpiration))
	if err != nil {
		return "", fmt.Errorf("failed to presign media url: %w", err)
	}
	return req.URL, nil
}

// ObjectExists checks if an image is stored under key
func (s *S3MediaStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyMediaKey
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return true, nil
}

// CheckBucket verifies the bucket is reachable. Call it at startup.
func (s *S3MediaStore) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("storage bucket %q unavailable: %w", s.bucket, err)
	}
	s.logger.Info("Media bucket reachable", zap.String("bucket", s.bucket))
	return nil
}

// GetBucket returns the bucket name
func (s *S3MediaStore) GetBucket() string {
	return s.bucket
}

func isAbsoluteURL(key string) bool {
	return strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://")
}
