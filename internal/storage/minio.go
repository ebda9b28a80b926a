package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ultraview/enhancer/internal/log"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) bucket.
// Keys map one-to-one to object names at the bucket root.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists, and
// returns a ready-to-use MinioStorage.
func NewMinioStorage(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		log.Infof("storage: created bucket %q", bucket)
	}

	return &MinioStorage{client: client, bucket: bucket}, nil
}

// Create streams reader to a new object. A HEAD request rejects taken keys
// before any byte is read; the conditional PUT rejects a writer that lost a
// race on the same key.
func (s *MinioStorage) Create(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	if _, err := s.Stat(ctx, key); err == nil {
		return 0, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, reader, size, createOptions(contentType))
	if err != nil {
		return 0, mapPutError(key, err)
	}
	return info.Size, nil
}

// createOptions makes the PUT conditional on the key not existing yet.
func createOptions(contentType string) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{ContentType: contentType}
	opts.SetMatchETagExcept("*")
	return opts
}

func mapPutError(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "PreconditionFailed" || resp.StatusCode == http.StatusPreconditionFailed {
		return ErrExists
	}
	return fmt.Errorf("put object %q: %w", key, err)
}

// Open returns a streaming reader for the object under key.
func (s *MinioStorage) Open(ctx context.Context, key string) (io.ReadCloser, *Object, error) {
	obj, err := s.Stat(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, mapMinioError(key, err)
	}
	return rc, obj, nil
}

// Stat issues a HEAD request for the object under key.
func (s *MinioStorage) Stat(ctx context.Context, key string) (*Object, error) {
	if err := ValidateKey(key); err != nil {
		return nil, ErrNotFound
	}
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapMinioError(key, err)
	}
	return &Object{Key: key, Size: info.Size, ModTime: info.LastModified}, nil
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// List returns the objects at the bucket root, sorted by key.
func (s *MinioStorage) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list bucket %q: %w", s.bucket, info.Err)
		}
		if ValidateKey(info.Key) != nil {
			continue
		}
		objects = append(objects, Object{Key: info.Key, Size: info.Size, ModTime: info.LastModified})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// mapMinioError converts S3 "no such key" responses into ErrNotFound.
func mapMinioError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return ErrNotFound
	}
	return fmt.Errorf("object %q: %w", key, err)
}
