package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the blob storage surface used for videos and team photos.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, lifetime time.Duration) (string, error)
	PublicURL(key string) string
}
