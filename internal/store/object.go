package store

import (
	"context"
	"io"
	"time"
)

// Object metadata keys, wire-compatible with the deployed bucket.
// S3 lower-cases user metadata keys, so these are already lower case.
const (
	// MetaTareaID is the ID of the owning tarea.
	MetaTareaID = "tarea"

	// MetaDownloadCount is the advisory download counter, stored as a
	// decimal string. Missing or unparseable values read as zero.
	MetaDownloadCount = "cantidaddescargas"

	// MetaOriginalName is the file's original upload name.
	MetaOriginalName = "originalname"
)

// PresignTTL is how long an issued access URL stays valid.
const PresignTTL = time.Hour

// ObjectStore defines the interface for attachment byte storage.
type ObjectStore interface {
	// Put uploads an object under the given key with the given side
	// metadata, overwriting any existing object.
	Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) error

	// Delete removes the object. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// PresignGet issues a time-limited access URL for the object.
	// Failure to presign surfaces as ErrFileNotFound.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)

	// Metadata returns the object's side metadata.
	// Returns ErrFileNotFound if the object does not exist.
	Metadata(ctx context.Context, key string) (map[string]string, error)

	// IncrementDownloadCount bumps the advisory download counter by one
	// and returns the new value. This is a read-modify-write against a
	// store with no atomic increment: concurrent calls on the same key
	// may lose updates, which is acceptable for advisory telemetry.
	// Returns ErrFileNotFound if the object vanished.
	IncrementDownloadCount(ctx context.Context, key string) (int, error)
}
