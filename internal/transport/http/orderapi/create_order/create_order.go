package createorder

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/service/services/ordersvc"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, userID string, input ordersvc.CreateOrderInput) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"  validate:"gt=0"`
}

// toModel converts itemInCreateOrderRequest to order.LineItem.
func (r *itemInCreateOrderRequest) toModel() (*order.LineItem, error) {
	if !r.Price.IsPositive() {
		return nil, apperrors.Newf(apperrors.KindValidation, "item %s: price must be positive", r.ProductID)
	}

	return &order.LineItem{
		ProductID: r.ProductID,
		Name:      r.Name,
		Price:     r.Price,
		Quantity:  r.Quantity,
	}, nil
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	Items           []itemInCreateOrderRequest `json:"items"           validate:"required,min=1,dive"`
	ShippingAddress string                     `json:"shippingAddress" validate:"required"`
	BillingAddress  string                     `json:"billingAddress"  validate:"required"`
	PaymentMethod   string                     `json:"paymentMethod"   validate:"required"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts createOrderRequest to ordersvc.CreateOrderInput.
func (r *createOrderRequest) toModel() (*ordersvc.CreateOrderInput, error) {
	items := make([]order.LineItem, len(r.Items))
	for i := range r.Items {
		item, err := r.Items[i].toModel()
		if err != nil {
			return nil, err
		}
		items[i] = *item
	}

	return &ordersvc.CreateOrderInput{
		Items:           items,
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
		PaymentMethod:   r.PaymentMethod,
	}, nil
}

// CreateOrder handles the create order request.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service, userID string) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}

	input, err := req.toModel()
	if err != nil {
		respond.Error(w, err)

		return
	}

	created, err := service.CreateOrder(r.Context(), userID, *input)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusCreated, created)
}
