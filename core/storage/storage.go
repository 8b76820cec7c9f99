package storage

import (
	"context"
	"errors"
	"time"
)

// ErrBlobNotFound is returned by Get when no object exists under the key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore stores and retrieves byte payloads by deterministic key.
// Certificate templates and generated certificates both live behind it.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}
