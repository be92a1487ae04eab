// Package miniostore is a blob.Store backed by an S3 compatible object store.
package miniostore

import (
	"bytes"
	"context"
	"detector/pkg/blob"
	"detector/pkg/serrors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Prefix is prepended to every object key.
	Prefix string
}

type Store struct {
	client *minio.Client
	opts   Options
}

var _ blob.Store = (*Store)(nil)

func New(opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, serrors.With(serrors.ErrConfiguration, "blob bucket is not configured")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create minio client: %w", err)
	}

	return &Store{client: client, opts: opts}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return fmt.Errorf("could not check bucket: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("could not create bucket: %w", err)
		}
	}

	return nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.opts.Bucket, s.objectName(key), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("could not upload blob: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.opts.Bucket, s.objectName(key), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(err, key)
	}
	defer func() {
		_ = obj.Close()
	}()

	// GetObject is lazy; a missing key surfaces on the first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(err, key)
	}

	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.opts.Bucket, s.objectName(key), minio.RemoveObjectOptions{}); err != nil {
		return s.mapError(err, key)
	}

	return nil
}

func (s *Store) objectName(key string) string {
	return s.opts.Prefix + key
}

func (s *Store) mapError(err error, key string) error {
	if IsNotFound(err) {
		return serrors.Wrap(serrors.ErrNotFound, err, "blob %s not found", key)
	}

	return fmt.Errorf("could not access blob %s: %w", key, err)
}

// IsNotFound reports whether err is an S3 missing key or bucket response.
func IsNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NoSuchObject":
		return true
	default:
		return false
	}
}
