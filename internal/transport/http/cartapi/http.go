package cartapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/shoplabs/shopcore/internal/service/models/cart"
	"github.com/shoplabs/shopcore/internal/service/models/health"
	metricsmw "github.com/shoplabs/shopcore/pkg/http/middleware/metrics"
	tracemw "github.com/shoplabs/shopcore/pkg/http/middleware/trace"
	"github.com/shoplabs/shopcore/pkg/logger"
)

type cartService interface {
	GetOrCreate(ctx context.Context, userID string) (*cart.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error)
	UpdateItem(ctx context.Context, userID, productID string, quantity int) (*cart.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) (*cart.Cart, error)
	Summary(ctx context.Context, userID string) (cart.Summary, error)
}

type healthService interface {
	CheckLiveness(ctx context.Context) *health.Response
	CheckReadiness(ctx context.Context) *health.Response
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	service cartService
	health  healthService
}

func NewHTTPTransport(service cartService, health healthService) *HTTPTransport {
	router := newRouter("cart-service")
	server := newServer(router, viper.GetString("server.cart.port"))
	return &HTTPTransport{
		server:  server,
		router:  router,
		service: service,
		health:  health,
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
	h.router.Route("/cart/{userId}", func(r chi.Router) {
		r.Get("/", h.getCart)
		r.Delete("/", h.clearCart)
		r.Get("/summary", h.getSummary)
		r.Post("/items", h.addItem)
		r.Put("/items/{productId}", h.updateItem)
		r.Delete("/items/{productId}", h.removeItem)
	})

	h.router.Route("/health", func(r chi.Router) {
		r.Get("/", h.readiness)
		r.Get("/live", h.liveness)
		r.Get("/ready", h.readiness)
	})

	h.router.Handle("/metrics", promhttp.Handler())
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
