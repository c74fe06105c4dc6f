package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures the S3-compatible backend.
type S3Options struct {
	// Endpoint is the service host without scheme, e.g. "digitaloceanspaces.com".
	Endpoint  string
	Region    string
	Bucket    string
	KeyID     string
	KeySecret string
	// Insecure disables TLS (local MinIO).
	Insecure bool
}

// S3 implements Gateway and ConditionalPutter on top of minio-go.
type S3 struct {
	client *minio.Client
	bucket string
}

var (
	_ Gateway           = (*S3)(nil)
	_ ConditionalPutter = (*S3)(nil)
)

// NewS3 creates an S3-backed Gateway. Regional services such as DigitalOcean
// Spaces are addressed as "<region>.<endpoint>".
func NewS3(opts S3Options) (*S3, error) {
	host := opts.Endpoint
	if opts.Region != "" {
		host = opts.Region + "." + opts.Endpoint
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.KeyID, opts.KeySecret, ""),
		Secure: !opts.Insecure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &S3{client: client, bucket: opts.Bucket}, nil
}

func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.translate("get", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.translate("get", key, err)
	}
	return data, nil
}

func (s *S3) Put(ctx context.Context, key string, data []byte, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), putObjectOptions(opts))
	if err != nil {
		return s.translate("put", key, err)
	}
	return nil
}

// PutIfAbsent sends If-None-Match: * so the store rejects the write when the
// key already exists.
func (s *S3) PutIfAbsent(ctx context.Context, key string, data []byte, opts PutOptions) error {
	putOpts := putObjectOptions(opts)
	putOpts.SetMatchETagExcept("*")
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), putOpts)
	if err != nil {
		return s.translate("put", key, err)
	}
	return nil
}

func (s *S3) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objectsCh <- minio.ObjectInfo{Key: key}
	}
	close(objectsCh)

	for rmErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil {
			return s.translate("delete", rmErr.ObjectName, rmErr.Err)
		}
	}
	return nil
}

func (s *S3) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, s.translate("list", prefix, object.Err)
		}
		keys = append(keys, object.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *S3) translate(operation, key string, err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket"):
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	case resp.Code == "PreconditionFailed" || resp.StatusCode == http.StatusPreconditionFailed:
		return fmt.Errorf("%w: %s", ErrPrecondition, key)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return wrapRemote(operation, key, err)
	}
}

func putObjectOptions(opts PutOptions) minio.PutObjectOptions {
	putOpts := minio.PutObjectOptions{ContentType: opts.ContentType}
	if putOpts.ContentType == "" {
		putOpts.ContentType = "application/octet-stream"
	}
	acl := opts.ACL
	if acl == "" {
		acl = ACLPrivate
	}
	putOpts.UserMetadata = map[string]string{"x-amz-acl": string(acl)}
	return putOpts
}
