package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/zkmarket/broker/pkg/metrics"
	"github.com/zkmarket/broker/pkg/model"
)

// orderCache holds orders waiting for their target timestamp, keyed by order
// ID. Entries with an ExpireTimestamp are evicted once that time passes,
// either lazily on read or by the janitor.
type orderCache struct {
	name string
	now  func() uint64

	mu      sync.RWMutex
	entries map[string]*model.OrderRequest
}

func newOrderCache(name string, now func() uint64) *orderCache {
	return &orderCache{
		name:    name,
		now:     now,
		entries: make(map[string]*model.OrderRequest),
	}
}

func (c *orderCache) Insert(order *model.OrderRequest) {
	c.mu.Lock()
	c.entries[order.ID()] = order
	size := len(c.entries)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

func (c *orderCache) Get(id string) (*model.OrderRequest, bool) {
	c.mu.RLock()
	order, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && c.expired(order) {
		c.Invalidate(id)
		return nil, false
	}
	return order, ok
}

func (c *orderCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	size := len(c.entries)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
}

// Snapshot returns all live entries, evicting any that expired.
func (c *orderCache) Snapshot() []*model.OrderRequest {
	c.mu.Lock()
	orders := make([]*model.OrderRequest, 0, len(c.entries))
	for id, order := range c.entries {
		if c.expired(order) {
			delete(c.entries, id)
			continue
		}
		orders = append(orders, order)
	}
	size := len(c.entries)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(size))
	return orders
}

func (c *orderCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *orderCache) expired(order *model.OrderRequest) bool {
	return order.ExpireTimestamp != 0 && c.now() >= order.ExpireTimestamp
}

// RunJanitor evicts expired entries until ctx is cancelled.
func (c *orderCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Snapshot()
		case <-ctx.Done():
			return
		}
	}
}
