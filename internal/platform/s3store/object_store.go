// Package s3store implements the attachment object store over an S3
// bucket. Attachment bytes are stored under the file's original name;
// the owning tarea ID, original name, and an advisory download counter
// live in object user metadata.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/phrazzld/tarea-api/internal/store"
)

// api is the subset of the S3 client the store uses.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
}

// presignAPI issues presigned GET URLs.
type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ObjectStore implements store.ObjectStore against one S3 bucket.
type ObjectStore struct {
	client  api
	presign presignAPI
	bucket  string
}

// NewObjectStore creates an ObjectStore for the given bucket.
func NewObjectStore(client api, presign presignAPI, bucket string) *ObjectStore {
	return &ObjectStore{client: client, presign: presign, bucket: bucket}
}

// Put uploads an object with its side metadata, overwriting any
// existing object under the same key.
func (s *ObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    meta,
	})
	if err != nil {
		return store.NewStoreError("object", "put", "failed to upload object", err)
	}

	return nil
}

// Delete removes the object. S3 does not distinguish deleting an absent
// key from success, so the operation is idempotent.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return store.NewStoreError("object", "delete", "failed to delete object", err)
	}

	return nil
}

// PresignGet issues a time-limited access URL for the object. Any
// presign failure surfaces as ErrFileNotFound: the caller cannot hand
// out a working URL either way.
func (s *ObjectStore) PresignGet(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("%w: presign get %q: %v", store.ErrFileNotFound, key, err)
	}

	return req.URL, nil
}

// Metadata returns the object's user metadata.
func (s *ObjectStore) Metadata(ctx context.Context, key string) (map[string]string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrFileNotFound
		}
		return nil, store.NewStoreError("object", "head", "failed to read metadata", err)
	}

	return out.Metadata, nil
}

// IncrementDownloadCount bumps the advisory download counter by one via
// head-then-copy with full metadata replacement. The two steps are not
// atomic: concurrent increments on the same key may lose updates, which
// is acceptable for advisory telemetry.
func (s *ObjectStore) IncrementDownloadCount(ctx context.Context, key string) (int, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, store.ErrFileNotFound
		}
		return 0, store.NewStoreError("object", "head", "failed to read download count", err)
	}

	count := ParseDownloadCount(head.Metadata)
	count++

	meta := make(map[string]string, len(head.Metadata)+1)
	for k, v := range head.Metadata {
		meta[k] = v
	}
	meta[store.MetaDownloadCount] = strconv.Itoa(count)

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:            aws.String(s.bucket),
		CopySource:        aws.String(s.bucket + "/" + url.PathEscape(key)),
		Key:               aws.String(key),
		MetadataDirective: types.MetadataDirectiveReplace,
		Metadata:          meta,
	})
	if err != nil {
		// The object vanished between the head and the copy.
		if isNotFound(err) {
			return 0, store.ErrFileNotFound
		}
		return 0, store.NewStoreError("object", "copy", "failed to write download count", err)
	}

	return count, nil
}

// ParseDownloadCount reads the download counter out of object metadata.
// Missing or unparseable values read as zero.
func ParseDownloadCount(meta map[string]string) int {
	raw, ok := meta[store.MetaDownloadCount]
	if !ok {
		return 0
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return 0
	}
	return count
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &noSuchKey)
}
