// Package s3store keeps media blobs in S3-compatible buckets.
package s3store

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"media-market/internal/backend"
)

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Config struct {
	Endpoint      string
	Region        string
	AccessKeyID   string
	SecretKey     string
	BucketPrefix  string
	PublicBaseURL string
}

// Store maps logical buckets (videos, tracks, covers) onto
// <prefix><bucket> S3 buckets.
type Store struct {
	client        putter
	prefix        string
	publicBaseURL string
}

var _ backend.ObjectStorage = (*Store)(nil)

func New(ctx context.Context, cfg Config) (*Store, error) {
	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newStore(client, cfg), nil
}

func newStore(client putter, cfg Config) *Store {
	return &Store{
		client:        client,
		prefix:        cfg.BucketPrefix,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (s *Store) bucket(name string) string {
	return s.prefix + name
}

func (s *Store) Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket(bucket)),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket(bucket), path, err)
	}
	return nil
}

// PublicURL assumes the buckets are served path-style under the base URL.
func (s *Store) PublicURL(bucket, path string) string {
	return s.publicBaseURL + "/" + s.bucket(bucket) + "/" + escapePath(path)
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
