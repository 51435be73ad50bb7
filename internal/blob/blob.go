package blob

import (
	"context"
	"io"
)

// Store is the object-storage contract the attachment service depends on.
// Objects are addressed by opaque keys; the store never inspects content.
type Store interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
