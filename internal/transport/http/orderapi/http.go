package orderapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/service/services/ordersvc"
	cancelorder "github.com/shoplabs/shopcore/internal/transport/http/orderapi/cancel_order"
	createorder "github.com/shoplabs/shopcore/internal/transport/http/orderapi/create_order"
	getorder "github.com/shoplabs/shopcore/internal/transport/http/orderapi/get_order"
	listorders "github.com/shoplabs/shopcore/internal/transport/http/orderapi/list_orders"
	updatestatus "github.com/shoplabs/shopcore/internal/transport/http/orderapi/update_status"
	metricsmw "github.com/shoplabs/shopcore/pkg/http/middleware/metrics"
	tracemw "github.com/shoplabs/shopcore/pkg/http/middleware/trace"
	"github.com/shoplabs/shopcore/pkg/logger"
)

type service interface {
	CreateOrder(ctx context.Context, userID string, input ordersvc.CreateOrderInput) (*order.Order, error)
	GetOrderByID(ctx context.Context, userID, orderID string) (*order.Order, error)
	GetUserOrders(ctx context.Context, userID string, q order.Query) (order.Page, error)
	UpdateOrderStatus(ctx context.Context, userID, orderID string, upd order.StatusUpdate) (*order.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*order.Order, error)
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service service
}

func NewHTTPTransport(service service) *HTTPTransport {
	router := newRouter("order-service")
	server := newServer(router, viper.GetString("server.order.port"))
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/orders/{userId}", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/", h.listOrders)
		r.Get("/{orderId}", h.getOrder)
		r.Patch("/{orderId}/status", h.updateStatus)
		r.Post("/{orderId}/cancel", h.cancelOrder)
	})

	h.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	h.router.Handle("/metrics", promhttp.Handler())
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.service, chi.URLParam(r, "userId"))
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.service, chi.URLParam(r, "userId"), chi.URLParam(r, "orderId"))
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.service, chi.URLParam(r, "userId"))
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.service, chi.URLParam(r, "userId"), chi.URLParam(r, "orderId"))
}

func (h *HTTPTransport) cancelOrder(w http.ResponseWriter, r *http.Request) {
	cancelorder.CancelOrder(w, r, h.service, chi.URLParam(r, "userId"), chi.URLParam(r, "orderId"))
}

func newRouter(serviceName string) *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(metricsmw.NewMetricsMiddleware())
	if viper.GetBool("tracing.enabled") {
		router.Use(tracemw.NewTraceMiddleware(serviceName))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   viper.GetStringSlice("server.http.cors.allowed_origins"),
		AllowedMethods:   viper.GetStringSlice("server.http.cors.allowed_methods"),
		AllowedHeaders:   viper.GetStringSlice("server.http.cors.allowed_headers"),
		ExposedHeaders:   viper.GetStringSlice("server.http.cors.exposed_headers"),
		AllowCredentials: viper.GetBool("server.http.cors.allow_credentials"),
		MaxAge:           viper.GetInt("server.http.cors.max_age"),
	})
	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler, port string) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}
}
