package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shoplabs/shopcore/internal/dal/interfaces/iorderstore"
	"github.com/shoplabs/shopcore/internal/service/models/order"
)

type entry struct {
	orders  []order.Order
	version uint64
}

// Store is the in-memory order store: one versioned order list per user,
// newest first.
type Store struct {
	mu    sync.RWMutex
	users map[string]entry
}

func NewStore() *Store {
	return &Store{users: make(map[string]entry)}
}

func (s *Store) Load(_ context.Context, userID string) ([]order.Order, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.users[userID]
	if !ok {
		return []order.Order{}, 0, nil
	}
	return cloneOrders(e.orders), e.version, nil
}

func (s *Store) Save(_ context.Context, userID string, orders []order.Order, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := uint64(0)
	if e, ok := s.users[userID]; ok {
		current = e.version
	}
	if current != version {
		return iorderstore.ErrVersionConflict
	}

	s.users[userID] = entry{orders: cloneOrders(orders), version: version + 1}

	return nil
}

func (s *Store) PendingCompensation(_ context.Context, limit int) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	due := make([]order.Order, 0)
	for _, e := range s.users {
		for _, o := range e.orders {
			if o.CartClearance.Status == order.ClearancePending && !o.CartClearance.NextAttemptAt.After(now) {
				due = append(due, *cloneOrder(&o))
			}
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].CartClearance.NextAttemptAt.Before(due[j].CartClearance.NextAttemptAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	return due, nil
}

func cloneOrders(orders []order.Order) []order.Order {
	out := make([]order.Order, len(orders))
	for i := range orders {
		out[i] = *cloneOrder(&orders[i])
	}
	return out
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = make([]order.LineItem, len(o.Items))
	copy(cp.Items, o.Items)
	if o.ActualDelivery != nil {
		t := *o.ActualDelivery
		cp.ActualDelivery = &t
	}
	return &cp
}
