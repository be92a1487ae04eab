// Package blob defines storage for uploaded file contents while they wait to
// be analyzed.
package blob

import "context"

// Store keeps raw upload bytes keyed by an opaque key. Get and Delete report
// serrors.ErrNotFound for unknown keys.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
