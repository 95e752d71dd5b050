package blob

import (
	"context"
	"errors"
)

var (
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// Backend is the remote bucket. Put must never overwrite an existing key.
type Backend interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes keys in bulk. Missing keys are not an error.
	Delete(ctx context.Context, keys []string) error
	// BaseURL is the public URL objects are served under, without trailing slash.
	BaseURL() string
}
