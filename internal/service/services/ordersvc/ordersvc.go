package ordersvc

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/dal/interfaces/iorderstore"
	"github.com/shoplabs/shopcore/internal/service/models/order"
)

// deliverySLA is the fixed promise made at creation time, not configurable.
const deliverySLA = 5 * 24 * time.Hour

const casRetries = 8

type cartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type eventPublisher interface {
	PublishOrderCreated(o *order.Order) error
	PublishOrderStatusChanged(o *order.Order, from order.Status) error
}

// OrderService owns the order lifecycle: creation, the status state machine,
// and the best-effort cart-clearance compensation that follows creation.
//
// CreateOrder trusts the caller-supplied item snapshot and computes the total
// from it without re-checking live catalog prices. Whether that price lock is
// intended policy or an oversight is an open product question; the behavior
// is preserved as-is pending clarification.
type OrderService struct {
	store     iorderstore.Store
	clearer   cartClearer
	publisher eventPublisher
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil || s.clearer == nil {
		panic("ordersvc: order store and cart clearer are required")
	}

	return s
}

// WithStore sets the order store for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStore(store iorderstore.Store) option {
	return func(s *OrderService) {
		s.store = store
	}
}

// WithCartClearer sets the cart clearance client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartClearer(clearer cartClearer) option {
	return func(s *OrderService) {
		s.clearer = clearer
	}
}

// WithEventPublisher sets an optional order event publisher.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithEventPublisher(publisher eventPublisher) option {
	return func(s *OrderService) {
		s.publisher = publisher
	}
}

// CreateOrderInput is the caller-submitted order snapshot.
type CreateOrderInput struct {
	Items           []order.LineItem
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
}

// CreateOrder persists a new PENDING order and then attempts, best effort, to
// clear the originating cart. Clearance failure leaves the order untouched
// with a pending compensation marker for the retry worker; creation is never
// rolled back.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, input CreateOrderInput) (*order.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.New(apperrors.KindBusinessRule, "order must contain at least one item")
	}

	now := time.Now()
	total := decimal.Zero
	items := make([]order.LineItem, len(input.Items))
	for i, item := range input.Items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		item.Subtotal = item.Price.Mul(qty)
		items[i] = item
		total = total.Add(item.Subtotal)
	}

	o := order.Order{
		ID:                uuid.NewString(),
		UserID:            userID,
		Items:             items,
		TotalAmount:       total.Round(2),
		Status:            order.StatusPending,
		ShippingAddress:   input.ShippingAddress,
		BillingAddress:    input.BillingAddress,
		PaymentMethod:     input.PaymentMethod,
		OrderDate:         now,
		EstimatedDelivery: now.Add(deliverySLA),
		CartClearance: order.CartClearance{
			Status:        order.ClearancePending,
			NextAttemptAt: now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.prepend(ctx, userID, o); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(&o); err != nil {
			slog.Warn("Failed to publish order created event", "order_id", o.ID, "error", err)
		}
	}

	// Inline compensation attempt. The order is already committed, so any
	// failure here only adjusts the clearance marker.
	clearance := order.CartClearance{Status: order.ClearanceDone, Attempts: 1}
	if err := s.clearer.Clear(ctx, userID); err != nil {
		slog.Warn("Failed to clear cart after order creation, scheduling retry",
			"order_id", o.ID,
			"user_id", userID,
			"error", err,
		)
		clearance = order.CartClearance{
			Status:        order.ClearancePending,
			Attempts:      1,
			NextAttemptAt: NextBackoff(1),
			LastError:     err.Error(),
		}
	}
	if err := s.UpdateClearance(ctx, userID, o.ID, clearance); err != nil {
		slog.Error("Failed to record cart clearance state", "order_id", o.ID, "error", err)
	} else {
		o.CartClearance = clearance
	}

	return &o, nil
}

// GetOrderByID scans the user's order list. Returns (nil, nil) when absent.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, orderID string) (*order.Order, error) {
	orders, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "load orders", err)
	}

	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}

	return nil, nil
}

// GetUserOrders applies the status filter, then the date range, then offset
// pagination over the filtered list.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, q order.Query) (order.Page, error) {
	orders, _, err := s.store.Load(ctx, userID)
	if err != nil {
		return order.Page{}, apperrors.Wrap(apperrors.KindInternal, "load orders", err)
	}

	filtered := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if !q.DateFrom.IsZero() && o.OrderDate.Before(q.DateFrom) {
			continue
		}
		if !q.DateTo.IsZero() && o.OrderDate.After(q.DateTo) {
			continue
		}
		filtered = append(filtered, o)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	total := len(filtered)
	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return order.Page{
		Orders:     filtered[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateOrderStatus moves an order along the transition table and applies any
// provided optional fields. Returns (nil, nil) when the order is absent.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, userID, orderID string, upd order.StatusUpdate) (*order.Order, error) {
	var from order.Status
	o, err := s.modify(ctx, userID, orderID, func(o *order.Order) error {
		if !o.Status.CanTransitionTo(upd.Status) {
			return apperrors.Newf(apperrors.KindBusinessRule,
				"invalid status transition from %s to %s", o.Status, upd.Status)
		}

		from = o.Status
		o.Status = upd.Status
		if upd.TrackingNumber != "" {
			o.TrackingNumber = upd.TrackingNumber
		}
		if upd.EstimatedDelivery != nil {
			o.EstimatedDelivery = *upd.EstimatedDelivery
		}
		if upd.ActualDelivery != nil {
			o.ActualDelivery = upd.ActualDelivery
		}

		return nil
	})
	if err != nil || o == nil {
		return o, err
	}

	s.publishStatusChanged(o, from)

	return o, nil
}

// CancelOrder sets CANCELLED unless the order already reached a state that
// forbids it. Returns (nil, nil) when the order is absent.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*order.Order, error) {
	var from order.Status
	o, err := s.modify(ctx, userID, orderID, func(o *order.Order) error {
		switch o.Status {
		case order.StatusCancelled:
			return apperrors.New(apperrors.KindBusinessRule, "order is already cancelled")
		case order.StatusShipped, order.StatusDelivered:
			return apperrors.New(apperrors.KindBusinessRule,
				"cannot cancel order that has already been shipped or delivered")
		}

		from = o.Status
		o.Status = order.StatusCancelled

		return nil
	})
	if err != nil || o == nil {
		return o, err
	}

	s.publishStatusChanged(o, from)

	return o, nil
}

func (s *OrderService) publishStatusChanged(o *order.Order, from order.Status) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderStatusChanged(o, from); err != nil {
		slog.Warn("Failed to publish status changed event", "order_id", o.ID, "error", err)
	}
}

// PendingCompensation lists orders due for a cart-clearance retry.
func (s *OrderService) PendingCompensation(ctx context.Context, limit int) ([]order.Order, error) {
	return s.store.PendingCompensation(ctx, limit)
}

// UpdateClearance overwrites the clearance marker of one order.
func (s *OrderService) UpdateClearance(ctx context.Context, userID, orderID string, cc order.CartClearance) error {
	_, err := s.modify(ctx, userID, orderID, func(o *order.Order) error {
		o.CartClearance = cc
		return nil
	})

	return err
}

// ClearCart delegates to the clearance client, for the retry worker.
func (s *OrderService) ClearCart(ctx context.Context, userID string) error {
	return s.clearer.Clear(ctx, userID)
}

// NextBackoff schedules attempt n+1 after 2^n * 30s, matching the outbox
// retry curve (60s, 120s, 240s, ...).
func NextBackoff(attempts int) time.Time {
	backoff := time.Duration(math.Pow(2, float64(attempts))) * 30 * time.Second
	return time.Now().Add(backoff)
}

// prepend inserts o at the head of the user's list under a version check so
// order lists stay newest first even under concurrent creations.
func (s *OrderService) prepend(ctx context.Context, userID string, o order.Order) error {
	for range casRetries {
		orders, version, err := s.store.Load(ctx, userID)
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "load orders", err)
		}

		orders = append([]order.Order{o}, orders...)

		err = s.store.Save(ctx, userID, orders, version)
		if err == nil {
			return nil
		}
		if err != iorderstore.ErrVersionConflict {
			return apperrors.Wrap(apperrors.KindInternal, "persist order", err)
		}
	}

	return apperrors.New(apperrors.KindInternal, "order store contention")
}

// modify applies fn to one order in the user's list and writes the list back,
// retrying on version conflicts. Returns (nil, nil) when the order is absent.
func (s *OrderService) modify(ctx context.Context, userID, orderID string, fn func(*order.Order) error) (*order.Order, error) {
	for range casRetries {
		orders, version, err := s.store.Load(ctx, userID)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindInternal, "load orders", err)
		}

		idx := -1
		for i := range orders {
			if orders[i].ID == orderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil
		}

		if err := fn(&orders[idx]); err != nil {
			return nil, err
		}
		orders[idx].UpdatedAt = time.Now()

		err = s.store.Save(ctx, userID, orders, version)
		if err == nil {
			return &orders[idx], nil
		}
		if err != iorderstore.ErrVersionConflict {
			return nil, apperrors.Wrap(apperrors.KindInternal, "persist order", err)
		}
	}

	return nil, apperrors.New(apperrors.KindInternal, "order store contention")
}
