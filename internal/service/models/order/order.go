package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// transitions is the fixed set of legal (from, to) pairs. CANCELLED and
// REFUNDED are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether to is reachable from s.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ClearanceStatus tracks the best-effort cart-clearance compensation that
// follows order creation.
type ClearanceStatus string

const (
	ClearancePending ClearanceStatus = "pending"
	ClearanceDone    ClearanceStatus = "done"
	ClearanceFailed  ClearanceStatus = "failed"
)

// CartClearance is the saga-step metadata carried on an order. Compensation
// failure never unwinds the order; it only updates these fields.
type CartClearance struct {
	Status        ClearanceStatus `json:"status"`
	Attempts      int             `json:"attempts"`
	NextAttemptAt time.Time       `json:"nextAttemptAt,omitempty"`
	LastError     string          `json:"lastError,omitempty"`
}

// LineItem is an order line snapshot submitted by the caller at creation time.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Order is created once, mutated only through status updates or cancellation,
// and never deleted.
type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Items             []LineItem      `json:"items"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	Status            Status          `json:"status"`
	ShippingAddress   string          `json:"shippingAddress"`
	BillingAddress    string          `json:"billingAddress"`
	PaymentMethod     string          `json:"paymentMethod"`
	OrderDate         time.Time       `json:"orderDate"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	ActualDelivery    *time.Time      `json:"actualDelivery,omitempty"`
	CartClearance     CartClearance   `json:"cartClearance"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Query filters and paginates a user's order list. Filters apply in order:
// status equality, then date range; pagination slices the filtered list.
type Query struct {
	Status   Status
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	Limit    int
}

// Page is an offset-paginated slice of a user's orders.
type Page struct {
	Orders     []Order `json:"orders"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// StatusUpdate carries a status change plus the optional fields that may be
// set alongside it.
type StatusUpdate struct {
	Status            Status
	TrackingNumber    string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time
}
