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

	"github.com/shoplabs/shopcore/internal/clients/cartclear"
	"github.com/shoplabs/shopcore/internal/dal/interfaces/iorderstore"
	"github.com/shoplabs/shopcore/internal/dal/postgres"
	"github.com/shoplabs/shopcore/internal/dal/rabbitmq"
	ordermemory "github.com/shoplabs/shopcore/internal/dal/repositories/order/memory"
	orderpg "github.com/shoplabs/shopcore/internal/dal/repositories/order/postgres"
	"github.com/shoplabs/shopcore/internal/jaeger"
	"github.com/shoplabs/shopcore/internal/service/services/ordersvc"
	"github.com/shoplabs/shopcore/internal/transport/http/orderapi"
	"github.com/shoplabs/shopcore/internal/worker/compensation"
)

// OrderApp is the order service application.
type OrderApp struct {
	transport *orderapi.HTTPTransport
	worker    *compensation.Worker
	shutdowns []shutdownFunc
}

// MustNewOrderApp wires the order service.
func MustNewOrderApp() *OrderApp {
	app := &OrderApp{}

	if viper.GetBool("tracing.enabled") {
		tp := jaeger.MustSetup("order-service")
		app.shutdowns = append(app.shutdowns, func(ctx context.Context) {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("Tracer provider shutdown error", "error", err)
			}
		})
	}

	store := app.newStore()

	httpClient := &http.Client{Timeout: clientTimeout()}
	clearer := cartclear.NewClient(viper.GetString("cart.base_url"), httpClient)

	var orderService *ordersvc.OrderService
	if viper.GetBool("rabbitmq.enabled") {
		client := rabbitmq.MustNewClient()
		app.shutdowns = append(app.shutdowns, func(ctx context.Context) {
			if err := client.Close(); err != nil {
				slog.Error("RabbitMQ close error", "error", err)
			}
		})

		publisher, err := rabbitmq.NewPublisher(client)
		if err != nil {
			panic("rabbitmq publisher: " + err.Error())
		}

		orderService = ordersvc.MustNewOrderService(
			ordersvc.WithStore(store),
			ordersvc.WithCartClearer(clearer),
			ordersvc.WithEventPublisher(publisher),
		)
	} else {
		orderService = ordersvc.MustNewOrderService(
			ordersvc.WithStore(store),
			ordersvc.WithCartClearer(clearer),
		)
	}

	app.worker = compensation.NewWorker(orderService)

	transport := orderapi.NewHTTPTransport(orderService)
	transport.RegisterRoutes()
	app.transport = transport

	return app
}

func (a *OrderApp) newStore() iorderstore.Store {
	switch driver := viper.GetString("storage.driver"); driver {
	case "postgres":
		client := postgres.MustNewClient()
		a.shutdowns = append(a.shutdowns, func(ctx context.Context) {
			client.Close()
		})
		return orderpg.NewStore(client.Pool())
	default:
		return ordermemory.NewStore()
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *OrderApp) Run() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go a.worker.Start(workerCtx)

	go func() {
		slog.Info("Starting order HTTP server")
		if err := a.transport.Run(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutdown signal received")

	cancelWorker()

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
