package cartsvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/dal/interfaces/icartstore"
	"github.com/shoplabs/shopcore/internal/service/models/cart"
	"github.com/shoplabs/shopcore/internal/service/models/product"
)

// casRetries bounds the compare-and-swap loop. Conflicts only happen under
// concurrent writes to the same user's cart, so a handful of retries is
// plenty before treating the contention as a fault.
const casRetries = 8

type catalogClient interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

// CartService is the cart aggregate engine: per-user cart state, derived
// totals, and item validation against the product catalog.
type CartService struct {
	store   icartstore.Store
	catalog catalogClient
}

// option is a function that configures the CartService.
type option func(*CartService)

// MustNewCartService creates a new CartService.
func MustNewCartService(opts ...option) *CartService {
	s := &CartService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil || s.catalog == nil {
		panic("cartsvc: store and catalog client are required")
	}

	return s
}

// WithStore sets the cart store for the CartService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStore(store icartstore.Store) option {
	return func(s *CartService) {
		s.store = store
	}
}

// WithCatalogClient sets the catalog client for the CartService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogClient(catalog catalogClient) option {
	return func(s *CartService) {
		s.catalog = catalog
	}
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
func (s *CartService) GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error) {
	for range casRetries {
		if c, _, ok := s.store.Get(userID); ok {
			return c, nil
		}

		c := newCart(userID)
		err := s.store.Put(userID, c, 0)
		if err == nil {
			return c, nil
		}
		if err != icartstore.ErrVersionConflict {
			return nil, apperrors.Wrap(apperrors.KindInternal, "create cart", err)
		}
		// Lost the creation race; the next Get sees the winner's cart.
	}

	return nil, apperrors.New(apperrors.KindInternal, "cart store contention on create")
}

// AddItem validates productID against the catalog and adds quantity of it to
// the user's cart, merging into an existing line when present.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.Newf(apperrors.KindValidation, "quantity must be positive, got %d", quantity)
	}

	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.Newf(apperrors.KindNotFound, "product %s not found", productID)
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if i := c.ItemIndex(productID); i >= 0 {
			c.Items[i].Quantity += quantity
		} else {
			c.Items = append(c.Items, cart.Item{
				Product:  *p,
				Quantity: quantity,
				AddedAt:  time.Now(),
			})
		}
		return nil
	})
}

// UpdateItem overwrites the quantity of an existing line. A non-positive
// quantity means removal, not an error.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		i := c.ItemIndex(productID)
		if i < 0 {
			return apperrors.Newf(apperrors.KindNotFound, "item %s not found in cart", productID)
		}
		c.Items[i].Quantity = quantity
		return nil
	})
}

// RemoveItem filters the line out. Removing an absent product id is a
// successful no-op.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c.ItemIndex(productID) < 0 {
		return c, nil
	}

	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		if i := c.ItemIndex(productID); i >= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		}
		return nil
	})
}

// Clear empties the cart and zeroes both totals.
func (s *CartService) Clear(ctx context.Context, userID string) (*cart.Cart, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error {
		c.Items = []cart.Item{}
		return nil
	})
}

// Summary returns the condensed totals view.
func (s *CartService) Summary(ctx context.Context, userID string) (cart.Summary, error) {
	c, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return cart.Summary{}, err
	}

	return c.Summary(), nil
}

// Size returns the number of live carts, feeding the capacity health probe.
func (s *CartService) Size() int {
	return s.store.Count()
}

// mutate runs fn against a snapshot of the user's cart and writes the result
// back under a version check, re-reading and retrying when a concurrent
// writer got there first. This is what turns two interleaved AddItem calls
// into one insert followed by one increment instead of a lost update.
func (s *CartService) mutate(ctx context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	for range casRetries {
		c, version, ok := s.store.Get(userID)
		if !ok {
			c = newCart(userID)
			version = 0
		}

		if err := fn(c); err != nil {
			return nil, err
		}
		c.Recalculate()
		c.UpdatedAt = time.Now()

		err := s.store.Put(userID, c, version)
		if err == nil {
			return c, nil
		}
		if err != icartstore.ErrVersionConflict {
			return nil, apperrors.Wrap(apperrors.KindInternal, "store cart", err)
		}
	}

	return nil, apperrors.New(apperrors.KindInternal, "cart store contention")
}

func newCart(userID string) *cart.Cart {
	now := time.Now()
	c := &cart.Cart{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     []cart.Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.Recalculate()

	return c
}
