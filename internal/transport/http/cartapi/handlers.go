package cartapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/transport/http/respond"
)

// addItemRequest is the POST /cart/{userId}/items body.
type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"omitempty,gt=0"`
}

// Validate validates the add item request.
func (r *addItemRequest) Validate() error {
	return validator.New().Struct(r)
}

// updateItemRequest is the PUT /cart/{userId}/items/{productId} body. The
// quantity may be non-positive: that means removal.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// Validate validates the update item request.
func (r *updateItemRequest) Validate() error {
	return validator.New().Struct(r)
}

func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	c, err := h.service.GetOrCreate(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *HTTPTransport) addItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	req := addItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	c, err := h.service.AddItem(r.Context(), userID, req.ProductID, quantity)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *HTTPTransport) updateItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID := chi.URLParam(r, "productId")

	req := updateItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, apperrors.Wrap(apperrors.KindValidation, "invalid request body", err))

		return
	}

	c, err := h.service.UpdateItem(r.Context(), userID, productID, *req.Quantity)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *HTTPTransport) removeItem(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	productID := chi.URLParam(r, "productId")

	c, err := h.service.RemoveItem(r.Context(), userID, productID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *HTTPTransport) clearCart(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	c, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, c)
}

func (h *HTTPTransport) getSummary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		respond.Error(w, err)

		return
	}

	respond.JSON(w, http.StatusOK, summary)
}
