package updatestatus

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	UpdateOrderStatus(ctx context.Context, userID, orderID string, upd order.StatusUpdate) (*order.Order, error)
}

// updateStatusRequest represents an update status request.
type updateStatusRequest struct {
	Status            string     `json:"status" validate:"required"`
	TrackingNumber    string     `json:"trackingNumber,omitempty"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time `json:"actualDelivery,omitempty"`
}

// Validate validates the update status request.
func (r *updateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// toModel converts updateStatusRequest to order.StatusUpdate.
func (r *updateStatusRequest) toModel() (*order.StatusUpdate, error) {
	status := order.Status(r.Status)
	if !status.Valid() {
		return nil, apperrors.Newf(apperrors.KindValidation, "unknown status %q", r.Status)
	}

	return &order.StatusUpdate{
		Status:            status,
		TrackingNumber:    r.TrackingNumber,
		EstimatedDelivery: r.EstimatedDelivery,
		ActualDelivery:    r.ActualDelivery,
	}, nil
}

// UpdateStatus handles the update order status request.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service, userID, orderID string) {
	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}

	if err := req.Validate(); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}

	upd, err := req.toModel()
	if err != nil {
		respond.Error(w, err)

		return
	}

	o, err := service.UpdateOrderStatus(r.Context(), userID, orderID, *upd)
	if err != nil {
		respond.Error(w, err)

		return
	}
	if o == nil {
		respond.Error(w, apperrors.Newf(apperrors.KindNotFound, "order %s not found", orderID))

		return
	}

	respond.JSON(w, http.StatusOK, o)
}
