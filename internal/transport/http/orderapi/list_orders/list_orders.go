package listorders

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// service is an interface for the service layer.
type service interface {
	GetUserOrders(ctx context.Context, userID string, q order.Query) (order.Page, error)
}

// listOrdersRequest represents the list orders query string.
type listOrdersRequest struct {
	Status string `schema:"status,omitempty"`
	From   string `schema:"from,omitempty"`
	To     string `schema:"to,omitempty"`
	Page   int    `schema:"page,omitempty"`
	Limit  int    `schema:"limit,omitempty"`
}

// toModel converts listOrdersRequest to order.Query.
func (q *listOrdersRequest) toModel() (*order.Query, error) {
	model := &order.Query{
		Page:  q.Page,
		Limit: q.Limit,
	}

	if q.Status != "" {
		status := order.Status(q.Status)
		if !status.Valid() {
			return nil, apperrors.Newf(apperrors.KindValidation, "unknown status %q", q.Status)
		}
		model.Status = status
	}
	if q.From != "" {
		from, err := time.Parse(time.RFC3339, q.From)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, "invalid from date", err)
		}
		model.DateFrom = from
	}
	if q.To != "" {
		to, err := time.Parse(time.RFC3339, q.To)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, "invalid to date", err)
		}
		model.DateTo = to
	}

	return model, nil
}

// ListOrders handles the list orders request.
func ListOrders(w http.ResponseWriter, r *http.Request, service service, userID string) {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	query := &listOrdersRequest{}
	if err := decoder.Decode(query, r.URL.Query()); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid query", err))

		return
	}

	model, err := query.toModel()
	if err != nil {
		respond.Error(w, err)

		return
	}

	page, err := service.GetUserOrders(r.Context(), userID, *model)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, page)
}
