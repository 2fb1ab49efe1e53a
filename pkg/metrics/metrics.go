// Package metrics exposes the broker's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OrdersReceived counts priced orders handed to the monitor.
	OrdersReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broker_orders_received_total",
		Help: "Priced orders received by the order monitor.",
	})

	// OrdersLocked counts successfully locked requests.
	OrdersLocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "broker_orders_locked_total",
		Help: "Requests successfully locked on the market.",
	})

	// OrdersCommitted counts orders committed to proving, by fulfillment type.
	OrdersCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_orders_committed_total",
		Help: "Orders committed to proving.",
	}, []string{"fulfillment_type"})

	// OrdersSkipped counts orders dropped before commitment, by reason.
	OrdersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_orders_skipped_total",
		Help: "Orders skipped before commitment.",
	}, []string{"reason"})

	// LockFailures counts failed lock attempts, by error code.
	LockFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_lock_failures_total",
		Help: "Failed lock attempts.",
	}, []string{"code"})

	// CacheSize tracks the number of orders held in each monitor cache.
	CacheSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "broker_order_cache_size",
		Help: "Orders currently held in the monitor caches.",
	}, []string{"cache"})

	// ChainHeadBlock is the latest block number observed by the chain monitor.
	ChainHeadBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "broker_chain_head_block",
		Help: "Latest block number observed.",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
