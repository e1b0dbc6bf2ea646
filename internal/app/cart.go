package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/shoplabs/shopcore/internal/clients/catalog"
	cartmemory "github.com/shoplabs/shopcore/internal/dal/repositories/cart/memory"
	"github.com/shoplabs/shopcore/internal/jaeger"
	"github.com/shoplabs/shopcore/internal/service/services/cartsvc"
	"github.com/shoplabs/shopcore/internal/service/services/healthsvc"
	"github.com/shoplabs/shopcore/internal/transport/http/cartapi"
)

// CartApp is the cart service application.
type CartApp struct {
	transport *cartapi.HTTPTransport
	shutdowns []shutdownFunc
}

type shutdownFunc func(ctx context.Context)

// MustNewCartApp wires the cart service.
func MustNewCartApp() *CartApp {
	app := &CartApp{}

	if viper.GetBool("tracing.enabled") {
		tp := jaeger.MustSetup("cart-service")
		app.shutdowns = append(app.shutdowns, func(ctx context.Context) {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("Tracer provider shutdown error", "error", err)
			}
		})
	}

	httpClient := &http.Client{Timeout: clientTimeout()}
	catalogClient := catalog.NewClient(viper.GetString("catalog.base_url"), httpClient)

	store := cartmemory.NewStore()

	cartService := cartsvc.MustNewCartService(
		cartsvc.WithStore(store),
		cartsvc.WithCatalogClient(catalogClient),
	)

	healthService := healthsvc.MustNewHealthService(
		healthsvc.WithService("cart-service", viper.GetString("service.version")),
		healthsvc.WithCatalogClient(catalogClient),
		healthsvc.WithCartCounter(cartService),
		healthsvc.WithCartCapacity(viper.GetInt("health.cart_capacity")),
	)

	transport := cartapi.NewHTTPTransport(cartService, healthService)
	transport.RegisterRoutes()
	app.transport = transport

	return app
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *CartApp) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Starting cart HTTP server")
		if err := a.transport.Run(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.transport.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped gracefully")
	}

	for _, shutdown := range a.shutdowns {
		shutdown(ctx)
	}

	slog.Info("Application shutdown complete")
}

func clientTimeout() time.Duration {
	seconds := viper.GetInt("clients.timeout_seconds")
	if seconds == 0 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}
