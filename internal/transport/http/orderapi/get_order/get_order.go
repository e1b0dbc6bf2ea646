package getorder

import (
	"context"
	"net/http"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	GetOrderByID(ctx context.Context, userID, orderID string) (*order.Order, error)
}

// GetOrder handles the get order request.
func GetOrder(w http.ResponseWriter, r *http.Request, service service, userID, orderID string) {
	o, err := service.GetOrderByID(r.Context(), userID, orderID)
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
