package iorderstore

import (
	"context"
	"errors"

	"github.com/shoplabs/shopcore/internal/service/models/order"
)

// ErrVersionConflict is returned by Save when the stored version moved since
// the corresponding Load. Callers re-read and retry.
var ErrVersionConflict = errors.New("order store: version conflict")

// Store keeps each user's order list (newest first) as one versioned record.
// The whole list is read, mutated and written back under an optimistic
// version check, so concurrent writers for one user cannot overwrite each
// other and writers for different users never contend.
type Store interface {
	// Load returns a snapshot of the user's order list and its version.
	// A user with no orders yet yields an empty list with version 0.
	Load(ctx context.Context, userID string) (orders []order.Order, version uint64, err error)

	// Save writes the list if the current version equals version, returning
	// ErrVersionConflict otherwise.
	Save(ctx context.Context, userID string, orders []order.Order, version uint64) error

	// PendingCompensation returns up to limit orders whose cart clearance is
	// still pending and due for another attempt, oldest first.
	PendingCompensation(ctx context.Context, limit int) ([]order.Order, error)
}
