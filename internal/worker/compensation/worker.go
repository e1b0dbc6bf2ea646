package compensation

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/shoplabs/shopcore/internal/service/models/order"
	"github.com/shoplabs/shopcore/internal/service/services/ordersvc"
)

type orderService interface {
	PendingCompensation(ctx context.Context, limit int) ([]order.Order, error)
	ClearCart(ctx context.Context, userID string) error
	UpdateClearance(ctx context.Context, userID, orderID string, cc order.CartClearance) error
}

// Worker retries pending cart clearances left behind by order creation. A
// clearance that keeps failing is retried with exponential backoff and
// eventually marked failed; the order itself is never touched.
type Worker struct {
	orders       orderService
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	stopCh       chan struct{}
}

// NewWorker creates a new compensation worker.
func NewWorker(orders orderService) *Worker {
	pollIntervalSeconds := viper.GetInt("compensation.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("compensation.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	maxAttempts := viper.GetInt("compensation.max_attempts")
	if maxAttempts == 0 {
		maxAttempts = 8
	}

	return &Worker{
		orders:       orders,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		stopCh:       make(chan struct{}),
	}
}

// Start begins polling for due clearances.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Compensation worker started",
		"poll_interval", w.pollInterval,
		"batch_size", w.batchSize,
		"max_attempts", w.maxAttempts,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Compensation worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Compensation worker stopped")

			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// processPending attempts every due clearance once.
func (w *Worker) processPending(ctx context.Context) {
	pending, err := w.orders.PendingCompensation(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to list pending cart clearances", "error", err)

		return
	}

	if len(pending) == 0 {
		return
	}

	slog.Info("Processing pending cart clearances", "count", len(pending))

	for _, o := range pending {
		w.attempt(ctx, o)
	}
}

func (w *Worker) attempt(ctx context.Context, o order.Order) {
	err := w.orders.ClearCart(ctx, o.UserID)
	if err == nil {
		cc := order.CartClearance{
			Status:   order.ClearanceDone,
			Attempts: o.CartClearance.Attempts + 1,
		}
		if err := w.orders.UpdateClearance(ctx, o.UserID, o.ID, cc); err != nil {
			slog.Error("Failed to mark cart clearance done", "order_id", o.ID, "error", err)
		} else {
			slog.Info("Cart cleared after retry", "order_id", o.ID, "user_id", o.UserID, "attempts", cc.Attempts)
		}

		return
	}

	attempts := o.CartClearance.Attempts + 1
	cc := order.CartClearance{
		Status:        order.ClearancePending,
		Attempts:      attempts,
		NextAttemptAt: ordersvc.NextBackoff(attempts),
		LastError:     err.Error(),
	}
	if attempts >= w.maxAttempts {
		cc.Status = order.ClearanceFailed
		slog.Error("Giving up on cart clearance",
			"order_id", o.ID,
			"user_id", o.UserID,
			"attempts", attempts,
			"error", err,
		)
	} else {
		slog.Warn("Cart clearance failed, will retry",
			"order_id", o.ID,
			"user_id", o.UserID,
			"attempts", attempts,
			"next_attempt", cc.NextAttemptAt,
			"error", err,
		)
	}

	if err := w.orders.UpdateClearance(ctx, o.UserID, o.ID, cc); err != nil {
		slog.Error("Failed to update cart clearance state", "order_id", o.ID, "error", err)
	}
}
