package healthsvc

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplabs/shopcore/internal/service/models/health"
)

type mockPinger struct {
	mu    sync.Mutex
	err   error
	calls int32
}

func (m *mockPinger) Health(context.Context) error {
	atomic.AddInt32(&m.calls, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

type mockCounter struct {
	count int
}

func (m *mockCounter) Size() int { return m.count }

func newService(t *testing.T, pinger *mockPinger, counter *mockCounter) *HealthService {
	t.Helper()
	return MustNewHealthService(
		WithService("cart-service", "test"),
		WithCatalogClient(pinger),
		WithCartCounter(counter),
	)
}

func TestCheckLiveness_AlwaysHealthy(t *testing.T) {
	pinger := &mockPinger{err: fmt.Errorf("down")}
	sut := newService(t, pinger, &mockCounter{})

	resp := sut.CheckLiveness(context.Background())

	assert.Equal(t, health.StatusHealthy, resp.Status)
	assert.Equal(t, "cart-service", resp.Service)
	assert.Empty(t, resp.Checks.Dependencies)
	assert.Zero(t, atomic.LoadInt32(&pinger.calls), "liveness must not probe dependencies")
}

func TestCheckReadiness_AllHealthy(t *testing.T) {
	sut := newService(t, &mockPinger{}, &mockCounter{count: 10})

	resp := sut.CheckReadiness(context.Background())

	assert.Equal(t, health.StatusHealthy, resp.Status)
	require.Len(t, resp.Checks.Dependencies, 1)
	assert.Equal(t, "product-service", resp.Checks.Dependencies[0].Name)
	assert.Equal(t, health.StatusHealthy, resp.Checks.Dependencies[0].Status)
	require.Len(t, resp.Checks.Resources, 2)
}

func TestCheckReadiness_CatalogDownIsUnhealthy(t *testing.T) {
	sut := newService(t, &mockPinger{err: fmt.Errorf("connection refused")}, &mockCounter{})

	resp := sut.CheckReadiness(context.Background())

	assert.Equal(t, health.StatusUnhealthy, resp.Status)
	require.Len(t, resp.Checks.Dependencies, 1)
	assert.Equal(t, health.StatusUnhealthy, resp.Checks.Dependencies[0].Status)
	assert.Contains(t, resp.Checks.Dependencies[0].Error, "connection refused")
}

func TestCheckReadiness_CartCapacityDegrades(t *testing.T) {
	sut := MustNewHealthService(
		WithCatalogClient(&mockPinger{}),
		WithCartCounter(&mockCounter{count: 101}),
		WithCartCapacity(100),
	)

	resp := sut.CheckReadiness(context.Background())

	assert.Equal(t, health.StatusDegraded, resp.Status)
	var carts *health.Resource
	for i := range resp.Checks.Resources {
		if resp.Checks.Resources[i].Name == "carts" {
			carts = &resp.Checks.Resources[i]
		}
	}
	require.NotNil(t, carts)
	assert.Equal(t, health.StatusDegraded, carts.Status)
	assert.Equal(t, float64(101), carts.Value)
	assert.Equal(t, float64(100), carts.Limit)
}

func TestCheckReadiness_CachedWithinTTL(t *testing.T) {
	pinger := &mockPinger{}
	sut := newService(t, pinger, &mockCounter{})

	first := sut.CheckReadiness(context.Background())

	// Dependency failure after the first probe must not surface until the
	// cache entry expires.
	pinger.mu.Lock()
	pinger.err = fmt.Errorf("down")
	pinger.mu.Unlock()

	second := sut.CheckReadiness(context.Background())

	assert.Same(t, first, second)
	assert.Equal(t, health.StatusHealthy, second.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pinger.calls))
}

func TestCheckReadiness_ConcurrentColdCallsProbeOnce(t *testing.T) {
	pinger := &mockPinger{}
	sut := newService(t, pinger, &mockCounter{})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sut.CheckReadiness(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&pinger.calls))
}

type ctxAwarePinger struct {
	calls int32
}

func (m *ctxAwarePinger) Health(ctx context.Context) error {
	atomic.AddInt32(&m.calls, 1)
	return ctx.Err()
}

func TestCheckReadiness_CancelledCallerCannotPoisonCache(t *testing.T) {
	pinger := &ctxAwarePinger{}
	sut := MustNewHealthService(
		WithCatalogClient(pinger),
		WithCartCounter(&mockCounter{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := sut.CheckReadiness(ctx)
	assert.Equal(t, health.StatusHealthy, first.Status)

	second := sut.CheckReadiness(context.Background())
	assert.Equal(t, health.StatusHealthy, second.Status)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pinger.calls))
}

func TestWorst(t *testing.T) {
	assert.Equal(t, health.StatusHealthy, health.Worst(health.StatusHealthy, health.StatusHealthy))
	assert.Equal(t, health.StatusDegraded, health.Worst(health.StatusHealthy, health.StatusDegraded))
	assert.Equal(t, health.StatusUnhealthy, health.Worst(health.StatusDegraded, health.StatusUnhealthy))
}
