// Package planstore persists serialized document plans behind a small
// key-value interface with interchangeable backends.
package planstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no plan exists under the given ID.
var ErrNotFound = errors.New("planstore: plan not found")

// Store is the persistence contract for plan documents. Values are opaque
// JSON blobs; the caller owns the schema.
type Store interface {
	// Put writes or replaces the plan under planID.
	Put(ctx context.Context, planID string, data []byte) error
	// Get returns the stored blob or ErrNotFound.
	Get(ctx context.Context, planID string) ([]byte, error)
	// List returns all stored plan blobs in unspecified order.
	List(ctx context.Context) ([][]byte, error)
}
