// Package storage provides S3-compatible object storage for competition highlight videos.
// Objects are served to clients through time-limited presigned download URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned by ConfigFromEnv when S3 settings are absent
var ErrNotConfigured = errors.New("object storage is not configured")

// Service defines the interface for storage operations
type Service interface {
	// PresignDownload creates a time-limited URL for reading key
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)

	// EnsureBucketExists creates the bucket if it doesn't exist
	EnsureBucketExists(ctx context.Context) error

	// Health checks if the storage service is accessible
	Health(ctx context.Context) error
}

// Config holds the S3 connection settings
type Config struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
}

// ConfigFromEnv reads S3_* variables. It returns ErrNotConfigured when no endpoint is set.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Endpoint:       os.Getenv("S3_ENDPOINT"),
		PublicEndpoint: os.Getenv("S3_PUBLIC_ENDPOINT"),
		AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		SecretKey:      os.Getenv("S3_SECRET_KEY"),
		Bucket:         os.Getenv("S3_BUCKET_NAME"),
		Region:         os.Getenv("S3_REGION"),
		UseSSL:         os.Getenv("S3_USE_SSL") == "true",
	}

	if cfg.Endpoint == "" {
		return cfg, ErrNotConfigured
	}
	if cfg.AccessKey == "" {
		return cfg, fmt.Errorf("S3_ACCESS_KEY environment variable is required")
	}
	if cfg.SecretKey == "" {
		return cfg, fmt.Errorf("S3_SECRET_KEY environment variable is required")
	}
	if cfg.Bucket == "" {
		return cfg, fmt.Errorf("S3_BUCKET_NAME environment variable is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PublicEndpoint == "" {
		cfg.PublicEndpoint = cfg.Endpoint
	}

	return cfg, nil
}

func (c Config) url(host string) string {
	if c.UseSSL {
		return "https://" + host
	}
	return "http://" + host
}

type service struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	logger    *slog.Logger
}

// New creates a storage service for cfg. Presigned URLs point at the public endpoint.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (Service, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Path-style addressing is required for MinIO
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.url(cfg.Endpoint))
		o.UsePathStyle = true
	})

	publicClient := client
	if cfg.PublicEndpoint != cfg.Endpoint {
		publicClient = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.url(cfg.PublicEndpoint))
			o.UsePathStyle = true
		})
	}

	s := &service{
		client:    client,
		presigner: s3.NewPresignClient(publicClient),
		bucket:    cfg.Bucket,
		logger:    logger,
	}

	logger.Info("Storage service initialized",
		"endpoint", cfg.Endpoint,
		"public_endpoint", cfg.PublicEndpoint,
		"bucket", cfg.Bucket)

	return s, nil
}

// EnsureBucketExists creates the bucket if it doesn't already exist
func (s *service) EnsureBucketExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.logger.Info("Created S3 bucket", "bucket", s.bucket)
	return nil
}

// PresignDownload creates a presigned URL for downloading
func (s *service) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("object key cannot be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("TTL must be positive")
	}

	request, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign download for key %s: %w", key, err)
	}

	return request.URL, nil
}

// Health checks if the storage service is accessible
func (s *service) Health(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}
