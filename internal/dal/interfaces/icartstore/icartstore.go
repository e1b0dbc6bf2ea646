package icartstore

import (
	"errors"

	"github.com/shoplabs/shopcore/internal/service/models/cart"
)

// ErrVersionConflict is returned by Put when the stored version moved since
// the corresponding Get. Callers re-read and retry.
var ErrVersionConflict = errors.New("cart store: version conflict")

// Store keeps per-user cart state behind an optimistic-concurrency contract.
// Get returns a snapshot plus its version; Put writes only if the version is
// unchanged, so two concurrent read-modify-write cycles against the same user
// serialize instead of losing an update.
type Store interface {
	// Get returns a snapshot of the user's cart and its version.
	// ok is false when the user has no cart yet; version 0 is then the
	// expected version for the first Put.
	Get(userID string) (c *cart.Cart, version uint64, ok bool)

	// Put stores the cart if the current version equals version, returning
	// ErrVersionConflict otherwise.
	Put(userID string, c *cart.Cart, version uint64) error

	// Count returns the number of carts currently held, for the capacity
	// readiness probe.
	Count() int
}
