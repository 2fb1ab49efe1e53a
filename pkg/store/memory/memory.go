// Package memory implements the broker store interfaces in memory. It backs
// tests and the local development mode; production deployments use the gorm
// store.
package memory

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store"
)

var _ store.Store = (*Store)(nil)

// Store is a mutex-guarded in-memory store.
type Store struct {
	mu           sync.RWMutex
	orders       map[string]*model.Order
	locks        map[string]*model.RequestLock
	fulfillments map[string]*model.RequestFulfillment
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		orders:       make(map[string]*model.Order),
		locks:        make(map[string]*model.RequestLock),
		fulfillments: make(map[string]*model.RequestFulfillment),
	}
}

func (s *Store) AddOrder(_ context.Context, order *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; ok {
		return store.ErrOrderExists
	}
	cp := *order
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.orders[order.ID] = &cp
	return nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *Store) ListOrders(_ context.Context, status *model.OrderStatus) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Order
	for _, order := range s.orders {
		if status != nil && order.Status != *status {
			continue
		}
		cp := *order
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetCommittedOrders(_ context.Context) ([]*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Order
	for _, order := range s.orders {
		switch order.Status {
		case model.StatusWaitingToLock, model.StatusPendingProving, model.StatusProving, model.StatusPendingSubmission:
			cp := *order
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) InsertAcceptedOrder(_ context.Context, order *model.OrderRequest, lockPrice *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := rowFromRequest(order)
	row.Status = model.StatusPendingProving
	if lockPrice != nil {
		row.LockPrice = lockPrice.String()
	}
	s.orders[row.ID] = row
	return nil
}

func (s *Store) InsertSkippedOrder(_ context.Context, order *model.OrderRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID()]; ok {
		return nil
	}
	row := rowFromRequest(order)
	row.Status = model.StatusSkipped
	s.orders[row.ID] = row
	return nil
}

func (s *Store) SetOrderStatus(_ context.Context, id string, status model.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return store.ErrOrderNotFound
	}
	order.Status = status
	if status == model.StatusProving && order.ProvingStartedAt == nil {
		now := time.Now()
		order.ProvingStartedAt = &now
	}
	order.UpdatedAt = time.Now()
	return nil
}

func (s *Store) SetRequestLocked(_ context.Context, requestID *big.Int, locker string, lockedAt uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := requestKey(requestID)
	s.locks[key] = &model.RequestLock{RequestID: key, Locker: locker, LockedAt: lockedAt}
	return nil
}

func (s *Store) SetRequestFulfilled(_ context.Context, requestID *big.Int, fulfilledAt uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := requestKey(requestID)
	if _, ok := s.fulfillments[key]; !ok {
		s.fulfillments[key] = &model.RequestFulfillment{RequestID: key, FulfilledAt: fulfilledAt}
	}
	return nil
}

func (s *Store) IsRequestLocked(_ context.Context, requestID *big.Int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.locks[requestKey(requestID)]
	return ok, nil
}

func (s *Store) IsRequestFulfilled(_ context.Context, requestID *big.Int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fulfillments[requestKey(requestID)]
	return ok, nil
}

func (s *Store) GetRequestLocker(_ context.Context, requestID *big.Int) (string, uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lock, ok := s.locks[requestKey(requestID)]
	if !ok {
		return "", 0, false, nil
	}
	return lock.Locker, lock.LockedAt, true, nil
}

func rowFromRequest(order *model.OrderRequest) *model.Order {
	return &model.Order{
		ID:              order.ID(),
		RequestID:       requestKey(order.Request.RequestID),
		Client:          order.Request.Client.Hex(),
		FulfillmentType: order.FulfillmentType.String(),
		ImageURL:        order.Request.ImageURL,
		InputURL:        order.Request.InputURL,
		ClientSig:       order.ClientSig,
		BiddingStart:    order.Request.Offer.BiddingStart,
		LockTimeout:     order.Request.Offer.LockTimeout,
		Timeout:         order.Request.Offer.Timeout,
		TotalCycles:     order.TotalCycles,
		CreatedAt:       time.Now(),
	}
}

func requestKey(requestID *big.Int) string {
	return fmt.Sprintf("0x%x", requestID)
}
