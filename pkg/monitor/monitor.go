// Package monitor watches priced orders until their target timestamp, then
// locks and commits them to proving, subject to capacity, gas budget and
// schedule feasibility limits.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zkmarket/broker/pkg/chain"
	"github.com/zkmarket/broker/pkg/config"
	"github.com/zkmarket/broker/pkg/events"
	"github.com/zkmarket/broker/pkg/log"
	"github.com/zkmarket/broker/pkg/market"
	"github.com/zkmarket/broker/pkg/metrics"
	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store"
	"github.com/zkmarket/broker/pkg/task"
)

// stakeCheckEveryNBlocks paces the stake balance alert so it costs one RPC
// call per N blocks rather than per block.
const stakeCheckEveryNBlocks = 10

// ChainState is the monitor's view of the chain monitor.
type ChainState interface {
	CurrentHead(ctx context.Context) (chain.Head, error)
	CurrentGasPrice(ctx context.Context) (*big.Int, error)
}

// Params collects the monitor's dependencies.
type Params struct {
	Store    store.Store
	Market   market.Market
	Provider chain.Provider
	Chain    ChainState
	Config   *config.Handle
	// Incoming delivers priced orders from the pricing pipeline.
	Incoming <-chan *model.OrderRequest
	// Events, when non-nil, receives lifecycle events.
	Events events.Recorder
	// StakeTokenDecimals is used to parse the stake alert thresholds.
	StakeTokenDecimals uint8
	// BlockTime overrides the configured block time when non-zero.
	BlockTime time.Duration
}

// Monitor is the order monitor service.
type Monitor struct {
	store      store.Store
	market     market.Market
	provider   chain.Provider
	chainState ChainState
	cfg        *config.Handle
	incoming   <-chan *model.OrderRequest
	events     events.Recorder

	lockCache  *orderCache
	proveCache *orderCache

	blockTime     time.Duration
	rpcRetryCount uint64
	rpcRetrySleep time.Duration
	stakeDecimals uint8

	logger zerolog.Logger
	rng    *rand.Rand
	now    func() uint64

	lastBlock          uint64
	prevOrdersByStatus string
}

func nowTimestamp() uint64 { return uint64(time.Now().Unix()) }

// New creates an order monitor.
func New(p Params) *Monitor {
	cfg := p.Config.Snapshot()

	blockTime := p.BlockTime
	if blockTime <= 0 {
		blockTime = time.Duration(cfg.Chain.BlockTime) * time.Second
	}

	now := nowTimestamp
	return &Monitor{
		store:         p.Store,
		market:        p.Market,
		provider:      p.Provider,
		chainState:    p.Chain,
		cfg:           p.Config,
		incoming:      p.Incoming,
		events:        p.Events,
		lockCache:     newOrderCache("lock_and_prove", now),
		proveCache:    newOrderCache("prove", now),
		blockTime:     blockTime,
		rpcRetryCount: cfg.Chain.RPCRetryCount,
		rpcRetrySleep: time.Duration(cfg.Chain.RPCRetrySleepMS) * time.Millisecond,
		stakeDecimals: p.StakeTokenDecimals,
		logger:        log.WithComponent("order_monitor"),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           now,
	}
}

// Name implements task.RetryTask.
func (m *Monitor) Name() string { return "order_monitor" }

// Run implements task.RetryTask. It admits priced orders into the caches and
// processes a tick on every new block.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info().Msg("starting order monitor")

	ticker := time.NewTicker(m.blockTime)
	defer ticker.Stop()

	for {
		select {
		case order, ok := <-m.incoming:
			if !ok {
				return errors.New("priced order channel closed")
			}
			m.admitOrder(order)
		case <-ticker.C:
			if err := m.tick(ctx); err != nil {
				m.logger.Warn().Err(err).Msg("order monitor tick failed")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// admitOrder places a priced order into the cache matching its fulfillment
// type.
func (m *Monitor) admitOrder(order *model.OrderRequest) {
	metrics.OrdersReceived.Inc()

	cache := m.proveCache
	if order.FulfillmentType == model.LockAndFulfill {
		cache = m.lockCache
	}
	if _, exists := cache.Get(order.ID()); exists {
		m.logger.Warn().Str("order_id", order.ID()).
			Msg("duplicate order already being monitored, ignoring")
		return
	}

	m.logger.Debug().
		Str("order_id", order.ID()).
		Str("fulfillment_type", order.FulfillmentType.String()).
		Uint64("target_timestamp", order.TargetTimestamp).
		Msg("order admitted to monitor")
	cache.Insert(order)
}

func (m *Monitor) tick(ctx context.Context) error {
	head, err := m.chainState.CurrentHead(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain head: %w", err)
	}
	if head.Number <= m.lastBlock {
		return nil
	}
	m.lastBlock = head.Number

	m.drainIncoming()

	cfg := m.cfg.Snapshot().Market

	if head.Number%stakeCheckEveryNBlocks == 0 {
		m.checkStakeBalance(ctx, &cfg)
	}

	orders, err := m.validOrders(ctx, head.Timestamp, cfg.MinDeadline)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	final, err := m.applyCapacityLimits(ctx, orders, &cfg)
	if err != nil {
		return err
	}
	m.lockAndProveOrders(ctx, final)
	return nil
}

func (m *Monitor) drainIncoming() {
	for {
		select {
		case order, ok := <-m.incoming:
			if !ok {
				return
			}
			m.admitOrder(order)
		default:
			return
		}
	}
}

// validOrders scans both caches and returns the orders that are past their
// target timestamp and still worth committing to. Orders that can never be
// committed are skipped in the database and evicted.
func (m *Monitor) validOrders(ctx context.Context, blockTimestamp, minDeadline uint64) ([]*model.OrderRequest, error) {
	var candidates []*model.OrderRequest

	for _, order := range m.proveCache.Snapshot() {
		fulfilled, err := m.store.IsRequestFulfilled(ctx, order.Request.RequestID)
		if err != nil {
			return nil, fmt.Errorf("failed to check if request is fulfilled: %w", err)
		}
		switch {
		case fulfilled:
			m.logger.Debug().Str("order_id", order.ID()).
				Msg("request was locked by another prover and was fulfilled, skipping")
			m.skipOrder(ctx, order, "fulfilled by another prover")
		case !m.withinDeadline(order, blockTimestamp, minDeadline):
			m.skipOrder(ctx, order, "expired")
		case m.targetTimeReached(order, blockTimestamp):
			m.logger.Info().Str("order_id", order.ID()).
				Msg("request lock expired unfulfilled, ready for proving")
			candidates = append(candidates, order)
		}
	}

	for _, order := range m.lockCache.Snapshot() {
		if order.Request.LockExpiresAt() < blockTimestamp {
			m.logger.Debug().Str("order_id", order.ID()).
				Msg("lock expired before we locked, skipping")
			m.skipOrder(ctx, order, "lock expired before we locked")
			continue
		}

		locker, _, locked, err := m.store.GetRequestLocker(ctx, order.Request.RequestID)
		if err != nil {
			return nil, fmt.Errorf("failed to check request locker: %w", err)
		}
		if locked {
			if !sameAddress(locker, m.market.Caller().Hex()) {
				m.logger.Debug().Str("order_id", order.ID()).Str("locker", locker).
					Msg("request already locked by another prover, skipping")
				m.skipOrder(ctx, order, "locked by another prover")
			} else {
				// We hold the lock but the order never moved to proving.
				m.logger.Debug().Str("order_id", order.ID()).
					Msg("request already locked by us, proceeding to prove")
				candidates = append(candidates, order)
			}
			continue
		}

		if !m.withinDeadline(order, blockTimestamp, minDeadline) {
			m.skipOrder(ctx, order, "insufficient deadline")
		} else if m.targetTimeReached(order, blockTimestamp) {
			candidates = append(candidates, order)
		}
	}

	if len(candidates) == 0 {
		m.logger.Trace().Uint64("block_timestamp", blockTimestamp).Msg("no orders to lock or prove")
		return nil, nil
	}

	ids := make([]string, len(candidates))
	for i, order := range candidates {
		ids[i] = order.ID()
	}
	m.logger.Debug().Int("num", len(candidates)).Strs("ids", ids).
		Msg("valid orders ready for locking and proving")
	return candidates, nil
}

func (m *Monitor) withinDeadline(order *model.OrderRequest, blockTimestamp, minDeadline uint64) bool {
	expiration := order.Expiry()
	if expiration < blockTimestamp {
		m.logger.Debug().Str("order_id", order.ID()).Msg("request has expired, skipping")
		return false
	}
	now := m.now()
	if expiration < now || expiration-now < minDeadline {
		m.logger.Debug().Str("order_id", order.ID()).
			Uint64("expiration", expiration).Uint64("min_deadline", minDeadline).
			Msg("request deadline is below the minimum required to prove, skipping")
		return false
	}
	return true
}

// targetTimeReached compares against the block timestamp rather than the wall
// clock to avoid clock drift.
func (m *Monitor) targetTimeReached(order *model.OrderRequest, blockTimestamp uint64) bool {
	if blockTimestamp < order.TargetTimestamp {
		m.logger.Trace().Str("order_id", order.ID()).
			Uint64("target_timestamp", order.TargetTimestamp).
			Uint64("current", blockTimestamp).
			Msg("target timestamp not yet reached, waiting")
		return false
	}
	return true
}

// skipOrder marks the order skipped in the database and evicts it from its
// cache.
func (m *Monitor) skipOrder(ctx context.Context, order *model.OrderRequest, reason string) {
	if err := m.store.InsertSkippedOrder(ctx, order); err != nil {
		m.logger.Error().Err(err).Str("order_id", order.ID()).Str("reason", reason).
			Msg("failed to record skipped order")
	}
	metrics.OrdersSkipped.WithLabelValues(reason).Inc()
	if m.events != nil {
		m.events.Record(events.OrderSkippedEvent{ID: order.ID(), Reason: reason})
	}

	if order.FulfillmentType == model.LockAndFulfill {
		m.lockCache.Invalidate(order.ID())
	} else {
		m.proveCache.Invalidate(order.ID())
	}
}

// applyCapacityLimits narrows the candidate set to what the broker can
// actually take on this tick: commitment priority ordering, the concurrent
// proof limit, proving schedule feasibility and the gas budget.
func (m *Monitor) applyCapacityLimits(ctx context.Context, orders []*model.OrderRequest, cfg *config.MarketConfig) ([]*model.OrderRequest, error) {
	numOrders := len(orders)
	m.sortByCommitmentPriority(orders, cfg)

	committed, err := m.store.GetCommittedOrders(ctx)
	if err != nil {
		return nil, codedErrf(codeUnexpected, "failed to get committed orders: %w", err)
	}

	slots := m.provingCapacity(committed, cfg.MaxConcurrentProofs)
	granted := slots.Grant(uint32(numOrders))

	m.logger.Info().Int("num_orders", numOrders).
		Str("capacity", slots.String()).Uint32("capacity_granted", granted).
		Msg("orders ready for locking and/or proving")

	if cfg.PeakProveKhz > 0 {
		orders = m.filterByProvingSchedule(ctx, orders, committed, cfg)
	}

	gasPrice, err := m.chainState.CurrentGasPrice(ctx)
	if err != nil {
		return nil, codedErrf(codeRPC, "failed to get gas price: %w", err)
	}
	balance, err := m.provider.BalanceAt(ctx, m.market.Caller())
	if err != nil {
		return nil, codedErrf(codeRPC, "failed to get prover balance: %w", err)
	}

	// Gas already promised to committed orders comes off the budget first.
	committedGas := uint64(len(committed)) * cfg.FulfillGasEstimate
	runningCost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(committedGas))

	final := make([]*model.OrderRequest, 0, granted)
	for _, order := range orders {
		if uint32(len(final)) >= granted {
			break
		}

		gasUnits := cfg.FulfillGasEstimate
		if order.FulfillmentType == model.LockAndFulfill {
			gasUnits += cfg.LockinGasEstimate
		}
		cost := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasUnits))

		if new(big.Int).Add(runningCost, cost).Cmp(balance) > 0 {
			m.logger.Debug().Str("order_id", order.ID()).
				Str("cost_wei", cost.String()).Str("balance_wei", balance.String()).
				Msg("insufficient gas balance for order, deferring")
			continue
		}
		runningCost.Add(runningCost, cost)
		final = append(final, order)
	}
	return final, nil
}

// sortByCommitmentPriority orders candidates: priority-address orders first,
// then by the configured mode.
func (m *Monitor) sortByCommitmentPriority(orders []*model.OrderRequest, cfg *config.MarketConfig) {
	if cfg.OrderCommitmentPriority == config.PriorityRandom {
		m.rng.Shuffle(len(orders), func(i, j int) {
			orders[i], orders[j] = orders[j], orders[i]
		})
		sort.SliceStable(orders, func(i, j int) bool {
			return orders[i].IsPrimary() && !orders[j].IsPrimary()
		})
		return
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].IsPrimary() != orders[j].IsPrimary() {
			return orders[i].IsPrimary()
		}
		return orders[i].Expiry() < orders[j].Expiry()
	})
}

func (m *Monitor) provingCapacity(committed []*model.Order, maxConcurrent uint32) capacity {
	if maxConcurrent == 0 {
		return unlimitedCapacity()
	}
	m.logCapacity(committed, maxConcurrent)

	count := uint32(len(committed))
	if count >= maxConcurrent {
		return availableCapacity(0)
	}
	return availableCapacity(maxConcurrent - count)
}

// logCapacity logs the committed set, but only when its membership or
// statuses change.
func (m *Monitor) logCapacity(committed []*model.Order, maxConcurrent uint32) {
	parts := make([]string, len(committed))
	descs := make([]string, len(committed))
	for i, order := range committed {
		parts[i] = fmt.Sprintf("%s-%s", order.Status, order.ID)
		descs[i] = order.String()
	}
	cur := strings.Join(parts, ",")
	if cur == m.prevOrdersByStatus {
		return
	}
	m.prevOrdersByStatus = cur

	m.logger.Info().Int("num_committed", len(committed)).
		Uint32("max_commitment", maxConcurrent).
		Strs("committed_orders", descs).
		Msg("committed order capacity")
}

// filterByProvingSchedule drops orders that cannot finish proving before
// their expiration at the configured peak throughput, accounting for work
// already committed.
func (m *Monitor) filterByProvingSchedule(ctx context.Context, orders []*model.OrderRequest, committed []*model.Order, cfg *config.MarketConfig) []*model.OrderRequest {
	cyclesPerSec := cfg.PeakProveKhz * 1_000
	now := m.now()

	var committedSecs uint64
	for _, order := range committed {
		secs := proofSeconds(order.TotalCycles+cfg.AdditionalProofCycles, cyclesPerSec)
		if order.ProvingStartedAt != nil {
			elapsed := now - min(uint64(order.ProvingStartedAt.Unix()), now)
			if elapsed >= secs {
				secs = 0
			} else {
				secs -= elapsed
			}
		}
		committedSecs += secs
	}

	completionAt := now + cfg.BatchBufferTimeSecs + committedSecs

	kept := make([]*model.OrderRequest, 0, len(orders))
	for _, order := range orders {
		secs := proofSeconds(order.TotalCycles+cfg.AdditionalProofCycles, cyclesPerSec)
		estimatedDone := completionAt + secs
		if estimatedDone > order.Expiry() {
			m.logger.Warn().Str("order_id", order.ID()).
				Uint64("estimated_completion", estimatedDone).
				Uint64("expiration", order.Expiry()).
				Msg("order removed: proof cannot be completed before its expiration")
			m.skipOrder(ctx, order, "cannot be completed before expiration")
			continue
		}
		completionAt = estimatedDone
		kept = append(kept, order)
	}

	ids := make([]string, len(kept))
	for i, order := range kept {
		ids[i] = order.ID()
	}
	m.logger.Info().Msgf("Started with %d orders to prove, filtered to %d orders: [%s]",
		len(orders), len(kept), strings.Join(ids, ", "))
	return kept
}

func proofSeconds(cycles, cyclesPerSec uint64) uint64 {
	if cyclesPerSec == 0 {
		return 0
	}
	return (cycles + cyclesPerSec - 1) / cyclesPerSec
}

// lockAndProveOrders commits the final order set: lock-and-fulfill orders are
// locked on the market concurrently, the rest go straight to pending proving.
func (m *Monitor) lockAndProveOrders(ctx context.Context, orders []*model.OrderRequest) {
	var wg sync.WaitGroup
	for _, order := range orders {
		wg.Add(1)
		go func(order *model.OrderRequest) {
			defer wg.Done()
			m.commitOrder(ctx, order)
		}(order)
	}
	wg.Wait()
}

func (m *Monitor) commitOrder(ctx context.Context, order *model.OrderRequest) {
	orderID := order.ID()

	if order.FulfillmentType != model.LockAndFulfill {
		if err := m.store.InsertAcceptedOrder(ctx, order, new(big.Int)); err != nil {
			m.logger.Error().Err(err).Str("order_id", orderID).
				Msg("failed to set order status to pending proving")
		} else {
			metrics.OrdersCommitted.WithLabelValues(order.FulfillmentType.String()).Inc()
		}
		m.proveCache.Invalidate(orderID)
		return
	}

	lockPrice, err := m.lockOrder(ctx, order)
	if err == nil {
		m.logger.Info().Str("order_id", orderID).Msg("locked request")
		metrics.OrdersLocked.Inc()
		metrics.OrdersCommitted.WithLabelValues(order.FulfillmentType.String()).Inc()
		if m.events != nil {
			m.events.Record(events.OrderLockedEvent{
				ID:        orderID,
				RequestID: fmt.Sprintf("0x%x", order.Request.RequestID),
				LockPrice: lockPrice.String(),
				Stake:     order.Request.Offer.LockStake.String(),
			})
		}
		if dbErr := m.store.InsertAcceptedOrder(ctx, order, lockPrice); dbErr != nil {
			// The stake is committed on chain but the order is not tracked
			// for proving.
			m.logger.Error().Err(dbErr).Str("order_id", orderID).
				Msgf("FATAL STAKE AT RISK: %s failed to move from locking -> proving status", orderID)
		}
		m.lockCache.Invalidate(orderID)
		return
	}

	code := errorCode(err)
	metrics.LockFailures.WithLabelValues(code).Inc()
	if m.events != nil {
		m.events.Record(events.LockFailedEvent{ID: orderID, Code: code, Cause: err.Error()})
	}
	switch code {
	case codeUnexpected:
		m.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to lock order")
	case codeAlreadyLocked:
		m.logger.Warn().Str("order_id", orderID).Str("code", code).
			Msg("soft failed to lock request")
	default:
		m.logger.Warn().Err(err).Str("order_id", orderID).Msg("soft failed to lock request")
	}
	if dbErr := m.store.InsertSkippedOrder(ctx, order); dbErr != nil {
		m.logger.Error().Err(dbErr).Str("order_id", orderID).
			Msg("failed to set failure state for order")
	}
	m.lockCache.Invalidate(orderID)
}

// lockOrder locks the request on the market and returns the price it locked
// at. Errors carry a stable code.
func (m *Monitor) lockOrder(ctx context.Context, order *model.OrderRequest) (*big.Int, error) {
	requestID := order.Request.RequestID

	status, err := m.market.GetRequestStatus(ctx, requestID, order.Request.ExpiresAt())
	if err != nil {
		return nil, codedErrf(codeRPC, "failed to get request status: %w", err)
	}
	if status != market.StatusUnknown {
		m.logger.Info().Str("request_id", fmt.Sprintf("0x%x", requestID)).
			Str("status", status.String()).Msg("request not open, skipping")
		return nil, errAlreadyLocked()
	}

	locked, err := m.store.IsRequestLocked(ctx, requestID)
	if err != nil {
		return nil, codedErrf(codeUnexpected, "failed to check if request is locked: %w", err)
	}
	if locked {
		m.logger.Warn().Str("request_id", fmt.Sprintf("0x%x", requestID)).
			Msg("request already locked, skipping")
		return nil, errAlreadyLocked()
	}

	m.logger.Info().Str("request_id", fmt.Sprintf("0x%x", requestID)).
		Str("stake", order.Request.Offer.LockStake.String()).
		Msg("locking request")

	lockBlock, err := m.market.LockRequest(ctx, &order.Request, order.ClientSig,
		m.cfg.Snapshot().Market.LockinPriorityGas)
	if err != nil {
		return nil, m.classifyLockError(err)
	}

	// The receipt can be visible before its block; retry the timestamp fetch.
	lockTimestamp, err := task.Retry(ctx, m.rpcRetryCount, m.rpcRetrySleep, "get_block_by_number",
		func() (uint64, error) {
			return m.provider.BlockTimestamp(ctx, lockBlock)
		})
	if err != nil {
		return nil, codedErr(codeUnexpected, err)
	}

	lockPrice, err := order.Request.Offer.PriceAt(lockTimestamp)
	if err != nil {
		return nil, codedErrf(codeUnexpected, "failed to calculate lock price: %w", err)
	}
	return lockPrice, nil
}

func (m *Monitor) classifyLockError(err error) error {
	switch {
	case errors.Is(err, market.ErrAlreadyLocked), errors.Is(err, market.ErrRequestFulfilled):
		return errAlreadyLocked()
	case errors.Is(err, market.ErrTxNotConfirmed):
		return codedErr(codeLockTxNotConfirmed, err)
	case errors.Is(err, market.ErrLockReverted):
		// The revert cause is not recoverable from the receipt: another
		// prover may have locked first, the lock may have expired, or the
		// requestor may have withdrawn funds.
		return codedErr(codeLockTxFailed, err)
	case errors.Is(err, market.ErrInsufficientBalance):
		// The requestor running out of balance is out of our control; the
		// prover running out is not, we checked the budget before committing.
		if strings.Contains(strings.ToLower(err.Error()), normalizeAddress(m.market.Caller().Hex())) {
			return codedErr(codeInsufficientBalance, err)
		}
		return codedErrf(codeLockTxFailed, "requestor has insufficient balance at lock time: %w", err)
	default:
		return codedErr(codeUnexpected, err)
	}
}

// checkStakeBalance logs when the prover's deposited stake drops below the
// configured thresholds.
func (m *Monitor) checkStakeBalance(ctx context.Context, cfg *config.MarketConfig) {
	if cfg.StakeBalanceWarnThreshold == "" && cfg.StakeBalanceErrorThreshold == "" {
		return
	}

	balance, err := m.market.StakeBalanceOf(ctx, m.market.Caller())
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to fetch stake balance")
		return
	}

	if threshold := m.parseThreshold(cfg.StakeBalanceErrorThreshold); threshold != nil && balance.Cmp(threshold) < 0 {
		m.logger.Error().
			Str("balance", market.FormatUnits(balance, m.stakeDecimals)).
			Str("threshold", cfg.StakeBalanceErrorThreshold).
			Msg("stake balance below error threshold")
		m.recordStakeAlert(balance, cfg.StakeBalanceErrorThreshold, events.SeverityError)
		return
	}
	if threshold := m.parseThreshold(cfg.StakeBalanceWarnThreshold); threshold != nil && balance.Cmp(threshold) < 0 {
		m.logger.Warn().
			Str("balance", market.FormatUnits(balance, m.stakeDecimals)).
			Str("threshold", cfg.StakeBalanceWarnThreshold).
			Msg("stake balance below warning threshold")
		m.recordStakeAlert(balance, cfg.StakeBalanceWarnThreshold, events.SeverityWarning)
	}
}

func (m *Monitor) recordStakeAlert(balance *big.Int, threshold string, level events.Severity) {
	if m.events == nil {
		return
	}
	m.events.Record(events.StakeAlertEvent{
		Balance:   market.FormatUnits(balance, m.stakeDecimals),
		Threshold: threshold,
		Level:     level,
	})
}

func (m *Monitor) parseThreshold(s string) *big.Int {
	if s == "" {
		return nil
	}
	v, err := market.ParseUnits(s, m.stakeDecimals)
	if err != nil {
		m.logger.Warn().Err(err).Str("threshold", s).Msg("invalid stake threshold")
		return nil
	}
	return v
}

func sameAddress(a, b string) bool {
	return normalizeAddress(a) == normalizeAddress(b)
}

func normalizeAddress(addr string) string {
	return strings.TrimPrefix(strings.ToLower(addr), "0x")
}
