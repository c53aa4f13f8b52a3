// internal/store/store.go
// Package store provides access to the object store holding videos,
// their sibling thumbnails/previews and the metadata document.
// It offers an S3-compatible implementation and an in-memory one for
// development and tests.
package store

import (
	"context"
	"errors"
	"time"
)

// Standard errors returned by the store layer
var (
	ErrNotFound = errors.New("object not found") // Returned when an object does not exist
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore defines the object-store operations required by the gallery.
// Listing is fully paginated by the implementation; callers see one slice.
type ObjectStore interface {
	// List returns all objects under the given key prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// Get retrieves the full body of one object. Returns ErrNotFound for
	// missing keys.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes the full body of one object.
	Put(ctx context.Context, key string, body []byte, contentType string) error
	// Exists reports whether an object with exactly this key prefix exists,
	// using a result-count cap of one.
	Exists(ctx context.Context, key string) (bool, error)
	// PresignGet produces a time-limited authorized retrieval URL for one object.
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}
