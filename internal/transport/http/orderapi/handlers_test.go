package orderapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplabs/shopcore/internal/apperrors"
	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/service/services/ordersvc"
)

type mockService struct {
	order *order.Order
	page  order.Page
	err   error

	gotUserID  string
	gotOrderID string
	gotInput   ordersvc.CreateOrderInput
	gotQuery   order.Query
	gotUpdate  order.StatusUpdate
}

func (m *mockService) CreateOrder(_ context.Context, userID string, input ordersvc.CreateOrderInput) (*order.Order, error) {
	m.gotUserID, m.gotInput = userID, input
	return m.order, m.err
}

func (m *mockService) GetOrderByID(_ context.Context, userID, orderID string) (*order.Order, error) {
	m.gotUserID, m.gotOrderID = userID, orderID
	return m.order, m.err
}

func (m *mockService) GetUserOrders(_ context.Context, userID string, q order.Query) (order.Page, error) {
	m.gotUserID, m.gotQuery = userID, q
	return m.page, m.err
}

func (m *mockService) UpdateOrderStatus(_ context.Context, userID, orderID string, upd order.StatusUpdate) (*order.Order, error) {
	m.gotUserID, m.gotOrderID, m.gotUpdate = userID, orderID, upd
	return m.order, m.err
}

func (m *mockService) CancelOrder(_ context.Context, userID, orderID string) (*order.Order, error) {
	m.gotUserID, m.gotOrderID = userID, orderID
	return m.order, m.err
}

func newTransport(t *testing.T, service *mockService) *HTTPTransport {
	t.Helper()
	h := NewHTTPTransport(service)
	h.RegisterRoutes()
	return h
}

func do(h *HTTPTransport, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

const validCreateBody = `{
	"items": [{"productId": "p1", "name": "Widget", "price": "100.00", "quantity": 3}],
	"shippingAddress": "1 Main St",
	"billingAddress": "1 Main St",
	"paymentMethod": "card"
}`

func TestCreateOrder(t *testing.T) {
	service := &mockService{order: &order.Order{ID: "o1", Status: order.StatusPending}}
	h := newTransport(t, service)

	rec := do(h, http.MethodPost, "/orders/u1", validCreateBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", service.gotUserID)
	require.Len(t, service.gotInput.Items, 1)
	assert.Equal(t, "p1", service.gotInput.Items[0].ProductID)
	assert.Equal(t, 3, service.gotInput.Items[0].Quantity)
}

func TestCreateOrder_MissingItems(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodPost, "/orders/u1", `{
		"items": [],
		"shippingAddress": "1 Main St",
		"billingAddress": "1 Main St",
		"paymentMethod": "card"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_NonPositivePrice(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodPost, "/orders/u1", `{
		"items": [{"productId": "p1", "price": "0", "quantity": 1}],
		"shippingAddress": "1 Main St",
		"billingAddress": "1 Main St",
		"paymentMethod": "card"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "price must be positive")
}

func TestCreateOrder_BusinessRuleMapsTo400(t *testing.T) {
	service := &mockService{err: apperrors.New(apperrors.KindBusinessRule, "order must contain at least one item")}
	h := newTransport(t, service)

	rec := do(h, http.MethodPost, "/orders/u1", validCreateBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "order must contain at least one item")
}

func TestGetOrder(t *testing.T) {
	service := &mockService{order: &order.Order{ID: "o1"}}
	h := newTransport(t, service)

	rec := do(h, http.MethodGet, "/orders/u1/o1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", service.gotUserID)
	assert.Equal(t, "o1", service.gotOrderID)
}

func TestGetOrder_Absent(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodGet, "/orders/u1/ghost", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "order ghost not found")
}

func TestListOrders_QueryDecoding(t *testing.T) {
	service := &mockService{page: order.Page{Orders: []order.Order{}, Page: 2, Limit: 5}}
	h := newTransport(t, service)

	rec := do(h, http.MethodGet, "/orders/u1?status=PENDING&page=2&limit=5", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusPending, service.gotQuery.Status)
	assert.Equal(t, 2, service.gotQuery.Page)
	assert.Equal(t, 5, service.gotQuery.Limit)
}

func TestListOrders_DateRange(t *testing.T) {
	service := &mockService{page: order.Page{Orders: []order.Order{}}}
	h := newTransport(t, service)

	rec := do(h, http.MethodGet, "/orders/u1?from=2026-01-01T00:00:00Z&to=2026-02-01T00:00:00Z", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2026, service.gotQuery.DateFrom.Year())
	assert.Equal(t, 2, int(service.gotQuery.DateTo.Month()))
}

func TestListOrders_UnknownStatus(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodGet, "/orders/u1?status=SHINY", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown status")
}

func TestListOrders_BadDate(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodGet, "/orders/u1?from=yesterday", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	service := &mockService{order: &order.Order{ID: "o1", Status: order.StatusConfirmed}}
	h := newTransport(t, service)

	rec := do(h, http.MethodPatch, "/orders/u1/o1/status", `{"status": "CONFIRMED", "trackingNumber": "TRACK-1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.StatusConfirmed, service.gotUpdate.Status)
	assert.Equal(t, "TRACK-1", service.gotUpdate.TrackingNumber)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodPatch, "/orders/u1/o1/status", `{"status": "TELEPORTED"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	service := &mockService{err: apperrors.New(apperrors.KindBusinessRule, "invalid status transition from PENDING to SHIPPED")}
	h := newTransport(t, service)

	rec := do(h, http.MethodPatch, "/orders/u1/o1/status", `{"status": "SHIPPED"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status transition")
}

func TestUpdateStatus_AbsentOrder(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodPatch, "/orders/u1/ghost/status", `{"status": "CONFIRMED"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder(t *testing.T) {
	service := &mockService{order: &order.Order{ID: "o1", Status: order.StatusCancelled}}
	h := newTransport(t, service)

	rec := do(h, http.MethodPost, "/orders/u1/o1/cancel", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var got order.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, order.StatusCancelled, got.Status)
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	service := &mockService{err: apperrors.New(apperrors.KindBusinessRule, "order is already cancelled")}
	h := newTransport(t, service)

	rec := do(h, http.MethodPost, "/orders/u1/o1/cancel", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "order is already cancelled")
}

func TestHealthz(t *testing.T) {
	h := newTransport(t, &mockService{})

	rec := do(h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}
