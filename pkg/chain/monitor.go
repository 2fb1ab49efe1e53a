package chain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/zkmarket/broker/pkg/log"
	"github.com/zkmarket/broker/pkg/metrics"
)

// Monitor polls the chain head and gas price at roughly the block interval so
// the rest of the broker reads a consistent, cheap snapshot instead of
// hammering the RPC node.
type Monitor struct {
	provider Provider
	interval time.Duration

	mu        sync.RWMutex
	head      Head
	gasPrice  *big.Int
	updatedAt time.Time
}

// NewMonitor creates a chain monitor polling at the given block time.
func NewMonitor(provider Provider, blockTime time.Duration) *Monitor {
	if blockTime <= 0 {
		blockTime = 2 * time.Second
	}
	return &Monitor{provider: provider, interval: blockTime}
}

// Name implements task.RetryTask.
func (m *Monitor) Name() string { return "chain_monitor" }

// Run implements task.RetryTask.
func (m *Monitor) Run(ctx context.Context) error {
	logger := log.WithComponent("chain_monitor")

	if err := m.refresh(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.refresh(ctx); err != nil {
				logger.Warn().Err(err).Msg("chain refresh failed")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Monitor) refresh(ctx context.Context) error {
	head, err := m.provider.LatestHead(ctx)
	if err != nil {
		return err
	}
	gasPrice, err := m.provider.SuggestGasPrice(ctx)
	if err != nil {
		return err
	}

	metrics.ChainHeadBlock.Set(float64(head.Number))

	m.mu.Lock()
	m.head = head
	m.gasPrice = gasPrice
	m.updatedAt = time.Now()
	m.mu.Unlock()
	return nil
}

// CurrentHead returns the latest observed head, refreshing inline when the
// snapshot is stale (e.g. before Run has ticked).
func (m *Monitor) CurrentHead(ctx context.Context) (Head, error) {
	if m.stale() {
		if err := m.refresh(ctx); err != nil {
			return Head{}, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.head, nil
}

// CurrentGasPrice returns the latest observed gas price.
func (m *Monitor) CurrentGasPrice(ctx context.Context) (*big.Int, error) {
	if m.stale() {
		if err := m.refresh(ctx); err != nil {
			return nil, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.gasPrice), nil
}

func (m *Monitor) stale() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gasPrice == nil || time.Since(m.updatedAt) > 2*m.interval
}
