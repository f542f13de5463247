// Package objectstore хранит медицинские справки в S3-совместимом бакете.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/slwc/membership/internal/config"
	"github.com/slwc/membership/internal/models"
)

// Store клиент бакета справок.
type Store struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	uploadTTL time.Duration
}

// New создаёт клиент S3. Статические ключи используются, если заданы,
// иначе цепочка учётных данных AWS по умолчанию.
func New(ctx context.Context, cfg config.S3) (*Store, error) {
	const op = "objectstore.New"
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("%s: bucket is not set", op)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	ttl := cfg.S3UploadURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Store{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.S3Bucket,
		uploadTTL: ttl,
	}, nil
}

// Bucket возвращает имя бакета.
func (s *Store) Bucket() string {
	return s.bucket
}

// PresignUpload выдаёт подписанную ссылку PUT на ключ key.
func (s *Store) PresignUpload(ctx context.Context, key, contentType string, metadata map[string]string) (string, error) {
	const op = "objectstore.PresignUpload"
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return req.URL, nil
}

// Get открывает объект на чтение. Вызывающий закрывает Body.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	const op = "objectstore.Get"
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out.Body, nil
}
