package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	appconfig "github.com/Sanalemba991/digiallink-sa/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const s3Scheme = "s3://"

// ObjectAPI is the subset of *s3.Client the store calls.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store writes resumes to a bucket and returns s3://bucket/key locators.
// Inline data URIs written before the bucket was configured stay readable.
type S3Store struct {
	client ObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

func NewS3Store(ctx context.Context, cfg appconfig.ResumeS3Config, logger *slog.Logger) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info("S3 resume store initialized", "bucket", cfg.Bucket, "prefix", cfg.Prefix)

	return NewS3StoreWithClient(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func NewS3StoreWithClient(client ObjectAPI, bucket, prefix string, logger *slog.Logger) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (s *S3Store) Put(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := s.prefix + filename

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upload resume", "key", key, "error", err)
		return "", fmt.Errorf("failed to upload resume: %w", err)
	}

	s.logger.InfoContext(ctx, "resume uploaded", "bucket", s.bucket, "key", key, "size", len(data))
	return s3Scheme + s.bucket + "/" + key, nil
}

func (s *S3Store) Get(ctx context.Context, locator string) (string, []byte, error) {
	if locator == "" {
		return "", nil, ErrNotFound
	}
	if IsDataURI(locator) {
		return DecodeDataURI(locator)
	}

	bucket, key, err := parseLocator(locator)
	if err != nil {
		return "", nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("failed to download resume: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read resume: %w", err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = "application/pdf"
	}
	return contentType, data, nil
}

func parseLocator(locator string) (bucket, key string, err error) {
	if !strings.HasPrefix(locator, s3Scheme) {
		return "", "", ErrInvalidFormat
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(locator, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", ErrInvalidFormat
	}
	return bucket, key, nil
}
