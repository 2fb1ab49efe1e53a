package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/zkmarket/broker/pkg/log"
	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store"
)

const defaultPrefetchInterval = 5 * time.Second

// Prefetcher stages the guest image and input of committed orders so the
// proving pipeline never waits on a download. Orders move from PendingProving
// to Proving once their inputs are fetched, or to Failed when the inputs can
// never be fetched.
type Prefetcher struct {
	store    store.OrdersStore
	fetcher  Fetcher
	interval time.Duration
	logger   zerolog.Logger
}

// NewPrefetcher creates a prefetcher polling at the given interval. A zero
// interval uses a 5s default.
func NewPrefetcher(ordersStore store.OrdersStore, fetcher Fetcher, interval time.Duration) *Prefetcher {
	if interval <= 0 {
		interval = defaultPrefetchInterval
	}
	return &Prefetcher{
		store:    ordersStore,
		fetcher:  fetcher,
		interval: interval,
		logger:   log.WithComponent("input_prefetcher"),
	}
}

// Name implements task.RetryTask.
func (p *Prefetcher) Name() string { return "input_prefetcher" }

// Run implements task.RetryTask: it polls for orders awaiting proving and
// fetches their inputs until ctx is cancelled.
func (p *Prefetcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (p *Prefetcher) tick(ctx context.Context) error {
	status := model.StatusPendingProving
	orders, err := p.store.ListOrders(ctx, &status)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if err := p.stage(ctx, order); err != nil {
			if errors.Is(err, ErrUnsupportedScheme) || errors.Is(err, ErrTooLarge) {
				p.logger.Error().Err(err).Str("order_id", order.ID).
					Msg("order inputs can never be fetched, failing order")
				if err := p.store.SetOrderStatus(ctx, order.ID, model.StatusFailed); err != nil {
					return err
				}
				continue
			}
			// Transient fetch failures leave the order pending for the
			// next tick.
			p.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to fetch order inputs")
			continue
		}

		if err := p.store.SetOrderStatus(ctx, order.ID, model.StatusProving); err != nil {
			return err
		}
		p.logger.Info().Str("order_id", order.ID).Msg("order inputs staged, proving started")
	}
	return nil
}

func (p *Prefetcher) stage(ctx context.Context, order *model.Order) error {
	if _, err := p.fetcher.Fetch(ctx, order.ImageURL); err != nil {
		return err
	}
	if order.InputURL != "" {
		if _, err := p.fetcher.Fetch(ctx, order.InputURL); err != nil {
			return err
		}
	}
	return nil
}
