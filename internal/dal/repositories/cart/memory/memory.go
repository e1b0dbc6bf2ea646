package memory

import (
	"sync"

	"github.com/shoplabs/shopcore/internal/dal/interfaces/icartstore"
	"github.com/shoplabs/shopcore/internal/service/models/cart"
)

type entry struct {
	cart    *cart.Cart
	version uint64
}

// Store is the in-memory cart store. Versions increase monotonically per user
// so compare-and-swap writers detect interleaved updates.
type Store struct {
	mu    sync.RWMutex
	carts map[string]entry
}

func NewStore() *Store {
	return &Store{carts: make(map[string]entry)}
}

func (s *Store) Get(userID string) (*cart.Cart, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.carts[userID]
	if !ok {
		return nil, 0, false
	}
	return e.cart.Clone(), e.version, true
}

func (s *Store) Put(userID string, c *cart.Cart, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := uint64(0)
	if e, ok := s.carts[userID]; ok {
		current = e.version
	}
	if current != version {
		return icartstore.ErrVersionConflict
	}

	s.carts[userID] = entry{cart: c.Clone(), version: version + 1}

	return nil
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.carts)
}
