package cancelorder

import (
	"context"
	"net/http"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	CancelOrder(ctx context.Context, userID, orderID string) (*order.Order, error)
}

// CancelOrder handles the cancel order request.
func CancelOrder(w http.ResponseWriter, r *http.Request, service service, userID, orderID string) {
	o, err := service.CancelOrder(r.Context(), userID, orderID)
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
