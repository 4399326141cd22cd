package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/tafa/dashboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure S3Fetcher implements Fetcher
var _ Fetcher = (*S3Fetcher)(nil)

// S3Fetcher reads source files from an S3-compatible bucket
// (AWS S3, MinIO, RustFS, etc.)
type S3Fetcher struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3FetcherOption is a functional option for configuring S3Fetcher
type S3FetcherOption func(*S3Fetcher)

// WithS3Logger sets a custom logger for S3Fetcher
func WithS3Logger(logger *zap.Logger) S3FetcherOption {
	return func(s *S3Fetcher) {
		s.logger = logger
	}
}

// NewS3Fetcher creates a fetcher from storage configuration.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain applies.
func NewS3Fetcher(cfg *config.StorageConfig, opts ...S3FetcherOption) (*S3Fetcher, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	f := &S3Fetcher{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// normalizeEndpoint adds a scheme to a bare host. An empty endpoint means
// the AWS default.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if useSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

// objectKey joins the configured prefix and file
func (s *S3Fetcher) objectKey(file string) string {
	if s.prefix == "" {
		return file
	}
	return path.Join(s.prefix, file)
}

// Fetch downloads the object for file. The caller closes the body.
func (s *S3Fetcher) Fetch(ctx context.Context, file string) (io.ReadCloser, error) {
	key := s.objectKey(file)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, s.bucket, key)
		}
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", s.bucket, key, err)
	}

	s.logger.Debug("Fetched source object",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
	)
	return out.Body, nil
}

// GetBucket returns the bucket name
func (s *S3Fetcher) GetBucket() string {
	return s.bucket
}
