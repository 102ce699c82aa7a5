// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package objstore stages files in a GCS bucket through its S3 compatible API.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/monitoring"
	"github.com/canonical/utill/internal/tracing"
)

const scheme = "gs://"

var ErrInvalidURI = errors.New("invalid object uri")

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Insecure  bool
}

type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type Store struct {
	client *minio.Client
	bucket string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Store) Bucket() string {
	return s.bucket
}

// URI returns the gs:// address of key in the configured bucket.
func (s *Store) URI(key string) string {
	return scheme + s.bucket + "/" + strings.TrimPrefix(key, "/")
}

// TmpPrefix returns a unique prefix under prefix for one staging operation.
func (s *Store) TmpPrefix(prefix string) string {
	stamp := time.Now().UTC().Format("20060102150405")
	return path.Join(prefix, stamp+"-"+uuid.NewString()[:8])
}

// Upload copies a local file to key and returns its URI. With move set the
// local file is removed once the upload succeeded.
func (s *Store) Upload(ctx context.Context, local, key string, move bool) (string, error) {
	ctx, span := s.tracer.Start(ctx, "objstore.Store.Upload")
	defer span.End()

	info, err := s.client.FPutObject(ctx, s.bucket, key, local, minio.PutObjectOptions{
		ContentType: contentType(local),
	})
	if err != nil {
		s.unavailable(err)
		return "", fmt.Errorf("failed to upload %s to %s: %w", local, s.URI(key), err)
	}
	s.logger.Debugf("Uploaded %s to %s (%d bytes)", local, s.URI(key), info.Size)

	if move {
		if err := os.Remove(local); err != nil {
			return "", err
		}
	}
	return s.URI(key), nil
}

// Download copies key to a local file. With move set the object is deleted afterwards.
func (s *Store) Download(ctx context.Context, key, local string, move bool) error {
	ctx, span := s.tracer.Start(ctx, "objstore.Store.Download")
	defer span.End()

	if err := s.client.FGetObject(ctx, s.bucket, key, local, minio.GetObjectOptions{}); err != nil {
		s.unavailable(err)
		return fmt.Errorf("failed to download %s to %s: %w", s.URI(key), local, err)
	}
	s.logger.Debugf("Downloaded %s to %s", s.URI(key), local)

	if move {
		return s.Delete(ctx, key)
	}
	return nil
}

// List returns every object under prefix, sorted by key.
func (s *Store) List(ctx context.Context, prefix string) ([]Object, error) {
	ctx, span := s.tracer.Start(ctx, "objstore.Store.List")
	defer span.End()

	objects := make([]Object, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			s.unavailable(obj.Err)
			return nil, fmt.Errorf("failed to list %s: %w", s.URI(prefix), obj.Err)
		}
		objects = append(objects, Object{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return objects, nil
}

// Copy duplicates src to dst, in dstBucket or the configured bucket when empty.
// With move set the source is deleted afterwards.
func (s *Store) Copy(ctx context.Context, src, dst, dstBucket string, move bool) error {
	ctx, span := s.tracer.Start(ctx, "objstore.Store.Copy")
	defer span.End()

	if dstBucket == "" {
		dstBucket = s.bucket
	}

	_, err := s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dstBucket, Object: dst},
		minio.CopySrcOptions{Bucket: s.bucket, Object: src},
	)
	if err != nil {
		s.unavailable(err)
		return fmt.Errorf("failed to copy %s to %s%s/%s: %w", s.URI(src), scheme, dstBucket, dst, err)
	}
	s.logger.Infof("Copied %s to %s%s/%s", s.URI(src), scheme, dstBucket, dst)

	if move {
		return s.Delete(ctx, src)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		s.unavailable(err)
		return fmt.Errorf("failed to delete %s: %w", s.URI(key), err)
	}
	s.logger.Debugf("Deleted %s", s.URI(key))
	return nil
}

// DeletePrefix removes every object under prefix. It keeps going past
// individual failures and returns them together.
func (s *Store) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "objstore.Store.DeletePrefix")
	defer span.End()

	if strings.Trim(prefix, "/") == "" {
		return 0, fmt.Errorf("refusing to delete the whole bucket %s", s.bucket)
	}

	objects, err := s.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	var result *multierror.Error
	deleted := 0
	for _, obj := range objects {
		if err := s.Delete(ctx, obj.Key); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		deleted++
	}
	s.logger.Infof("Deleted %d objects under %s", deleted, s.URI(prefix))
	return deleted, result.ErrorOrNil()
}

func (s *Store) unavailable(err error) {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.StatusCode > 0 && resp.StatusCode < 500 {
		return
	}
	_ = s.monitor.SetDependencyAvailability(map[string]string{"component": "gcs"}, 0)
}

func contentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return "application/gzip"
	case strings.HasSuffix(name, ".csv"):
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

// ParseURI splits gs://bucket/key into its bucket and key.
func ParseURI(uri string) (string, string, error) {
	rest, ok := strings.CutPrefix(uri, scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURI, uri)
	}
	return bucket, key, nil
}

func NewStore(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("hmac access key and secret are required")
	}

	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: !cfg.Insecure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	s := new(Store)
	s.client = client
	s.bucket = cfg.Bucket

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s, nil
}
