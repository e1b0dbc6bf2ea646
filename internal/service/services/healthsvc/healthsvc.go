package healthsvc

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shoplabs/shopcore/internal/service/models/health"
)

const (
	livenessTTL  = 60 * time.Second
	readinessTTL = 30 * time.Second

	// DefaultCartCapacity is the cart-count ceiling above which readiness
	// degrades.
	DefaultCartCapacity = 10_000

	memDegradedPct  = 80
	memUnhealthyPct = 90
)

type catalogPinger interface {
	Health(ctx context.Context) error
}

type cartCounter interface {
	Size() int
}

type cacheEntry struct {
	resp    *health.Response
	expires time.Time
}

// HealthService combines a dependency probe and resource probes into the
// liveness/readiness responses. Each check kind is memoized independently; a
// singleflight group guards cache misses so concurrent callers during a cold
// window trigger exactly one recomputation.
type HealthService struct {
	serviceName  string
	version      string
	catalog      catalogPinger
	carts        cartCounter
	cartCapacity int
	startedAt    time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// option is a function that configures the HealthService.
type option func(*HealthService)

// MustNewHealthService creates a new HealthService.
func MustNewHealthService(opts ...option) *HealthService {
	s := &HealthService{
		serviceName:  "cart-service",
		version:      "1.0.0",
		cartCapacity: DefaultCartCapacity,
		startedAt:    time.Now(),
		cache:        make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil || s.carts == nil {
		panic("healthsvc: catalog client and cart counter are required")
	}

	return s
}

// WithService sets the reported service name and version.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithService(name, version string) option {
	return func(s *HealthService) {
		s.serviceName = name
		s.version = version
	}
}

// WithCatalogClient sets the dependency probe target.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalogClient(catalog catalogPinger) option {
	return func(s *HealthService) {
		s.catalog = catalog
	}
}

// WithCartCounter sets the live cart-count source.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartCounter(carts cartCounter) option {
	return func(s *HealthService) {
		s.carts = carts
	}
}

// WithCartCapacity overrides the capacity ceiling for the cart-count probe.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCartCapacity(capacity int) option {
	return func(s *HealthService) {
		if capacity > 0 {
			s.cartCapacity = capacity
		}
	}
}

// CheckLiveness reports whether the process is running. Always healthy,
// cached for a minute.
func (s *HealthService) CheckLiveness(ctx context.Context) *health.Response {
	return s.memoized("liveness", livenessTTL, func() *health.Response {
		started := time.Now()
		return &health.Response{
			Status:       health.StatusHealthy,
			Service:      s.serviceName,
			Version:      s.version,
			Timestamp:    started,
			Uptime:       time.Since(s.startedAt).Seconds(),
			Checks:       health.Checks{Dependencies: []health.Dependency{}, Resources: []health.Resource{}},
			ResponseTime: time.Since(started).Milliseconds(),
		}
	})
}

// CheckReadiness combines the catalog dependency probe with the memory and
// cart-capacity resource probes, reduced to the worst status. Cached for 30
// seconds.
func (s *HealthService) CheckReadiness(ctx context.Context) *health.Response {
	// The probe result outlives this caller's request by up to the TTL, so
	// it must not inherit the caller's cancellation: a client disconnecting
	// mid-probe would otherwise cache a spurious failure for everyone.
	ctx = context.WithoutCancel(ctx)

	return s.memoized("readiness", readinessTTL, func() *health.Response {
		started := time.Now()

		dep := s.probeCatalog(ctx)
		mem := probeMemory()
		carts := s.probeCartCount()

		overall := health.Worst(dep.Status, health.Worst(mem.Status, carts.Status))

		return &health.Response{
			Status:    overall,
			Service:   s.serviceName,
			Version:   s.version,
			Timestamp: started,
			Uptime:    time.Since(s.startedAt).Seconds(),
			Checks: health.Checks{
				Dependencies: []health.Dependency{dep},
				Resources:    []health.Resource{mem, carts},
			},
			ResponseTime: time.Since(started).Milliseconds(),
		}
	})
}

// memoized returns the cached response for kind while it is fresh, otherwise
// recomputes it exactly once across concurrent callers.
func (s *HealthService) memoized(kind string, ttl time.Duration, compute func() *health.Response) *health.Response {
	s.mu.RLock()
	entry, ok := s.cache[kind]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.resp
	}

	v, _, _ := s.group.Do(kind, func() (interface{}, error) {
		// Another flight may have refreshed the entry while this caller
		// queued on the group.
		s.mu.RLock()
		entry, ok := s.cache[kind]
		s.mu.RUnlock()
		if ok && time.Now().Before(entry.expires) {
			return entry.resp, nil
		}

		resp := compute()

		s.mu.Lock()
		s.cache[kind] = cacheEntry{resp: resp, expires: time.Now().Add(ttl)}
		s.mu.Unlock()

		return resp, nil
	})

	return v.(*health.Response)
}

func (s *HealthService) probeCatalog(ctx context.Context) health.Dependency {
	started := time.Now()
	dep := health.Dependency{
		Name:   "product-service",
		Status: health.StatusHealthy,
	}

	if err := s.catalog.Health(ctx); err != nil {
		dep.Status = health.StatusUnhealthy
		dep.Error = err.Error()
	}
	dep.ResponseTime = time.Since(started).Milliseconds()

	return dep
}

func probeMemory() health.Resource {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	used := float64(m.HeapAlloc)
	total := float64(m.HeapSys)
	pct := 0.0
	if total > 0 {
		pct = used / total * 100
	}

	status := health.StatusHealthy
	switch {
	case pct > memUnhealthyPct:
		status = health.StatusUnhealthy
	case pct >= memDegradedPct:
		status = health.StatusDegraded
	}

	return health.Resource{
		Name:       "memory",
		Status:     status,
		Value:      used,
		Limit:      total,
		Percentage: pct,
		Unit:       "bytes",
	}
}

func (s *HealthService) probeCartCount() health.Resource {
	count := float64(s.carts.Size())
	limit := float64(s.cartCapacity)

	status := health.StatusHealthy
	if count > limit {
		status = health.StatusDegraded
	}

	return health.Resource{
		Name:       "carts",
		Status:     status,
		Value:      count,
		Limit:      limit,
		Percentage: count / limit * 100,
		Unit:       "items",
	}
}
