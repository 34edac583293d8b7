// Package s3doc stores the habit document as one object in an S3-compatible
// bucket (AWS S3 or MinIO). Enabling bucket versioning keeps every save.
package s3doc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	// DefaultKey is the object key used when none is configured.
	DefaultKey = "habit_data.json"

	maxObjectSize = 10 << 20
)

// ErrNotFound indicates the object does not exist yet.
var ErrNotFound = errors.New("s3doc: object not found")

// Config holds construction parameters. Credentials fall back to the
// default AWS chain when AccessKeyID is empty.
type Config struct {
	Bucket          string
	Key             string
	Region          string
	Endpoint        string // optional; custom endpoint such as MinIO
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// Store reads and overwrites a single object.
type Store struct {
	client *s3.Client
	bucket string
	key    string
	logger *slog.Logger
}

// New creates a Store from cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3doc: bucket required")
	}
	if cfg.Key == "" {
		cfg.Key = DefaultKey
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	if logger == nil {
		logger = slog.Default()
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3doc: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return &Store{client: client, bucket: cfg.Bucket, key: cfg.Key, logger: logger}, nil
}

// Name identifies the backend in logs and metrics.
func (s *Store) Name() string { return "s3" }

// Location returns the s3:// URL of the document.
func (s *Store) Location() string { return "s3://" + s.bucket + "/" + s.key }

// Fetch returns the object's content.
func (s *Store) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3doc: get %s: %w", s.Location(), err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("s3doc: reading %s: %w", s.Location(), err)
	}
	if len(data) > maxObjectSize {
		return nil, fmt.Errorf("s3doc: %s is over %d bytes", s.Location(), maxObjectSize)
	}
	return data, nil
}

// Put overwrites the object with content.
func (s *Store) Put(ctx context.Context, content []byte) error {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &s.key,
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3doc: put %s: %w", s.Location(), err)
	}
	s.logger.Debug("s3 document saved",
		"location", s.Location(),
		"etag", aws.ToString(out.ETag),
		"version_id", aws.ToString(out.VersionId),
	)
	return nil
}
