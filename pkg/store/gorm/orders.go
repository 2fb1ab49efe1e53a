// Package gorm implements the broker store interfaces using GORM.
package gorm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zkmarket/broker/pkg/model"
	"github.com/zkmarket/broker/pkg/store"
)

// Ensure Store implements the store interfaces
var _ store.Store = (*Store)(nil)

// committedStatuses are the statuses that count against proving capacity.
var committedStatuses = []model.OrderStatus{
	model.StatusWaitingToLock,
	model.StatusPendingProving,
	model.StatusProving,
	model.StatusPendingSubmission,
}

// Store implements store.Store using GORM.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AddOrder inserts a committed order.
func (s *Store) AddOrder(ctx context.Context, order *model.Order) error {
	tx := s.db.WithContext(ctx).Create(order)
	if tx.Error != nil {
		return fmt.Errorf("failed to add order %s: %w", order.ID, tx.Error)
	}
	return nil
}

// GetOrder retrieves an order by its ID.
func (s *Store) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	tx := s.db.WithContext(ctx).Where("id = ?", id).First(&order)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return nil, store.ErrOrderNotFound
		}
		return nil, tx.Error
	}
	return &order, nil
}

// ListOrders returns orders filtered by status; all orders when status is nil.
func (s *Store) ListOrders(ctx context.Context, status *model.OrderStatus) ([]*model.Order, error) {
	var orders []*model.Order
	tx := s.db.WithContext(ctx).Order("created_at desc")
	if status != nil {
		tx = tx.Where("status = ?", status.String())
	}
	if err := tx.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetCommittedOrders returns the orders the broker is currently committed to.
func (s *Store) GetCommittedOrders(ctx context.Context) ([]*model.Order, error) {
	statuses := make([]string, len(committedStatuses))
	for i, st := range committedStatuses {
		statuses[i] = st.String()
	}

	var orders []*model.Order
	tx := s.db.WithContext(ctx).Where("status IN ?", statuses).Find(&orders)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return orders, nil
}

// InsertAcceptedOrder records that the broker committed to an order.
func (s *Store) InsertAcceptedOrder(ctx context.Context, order *model.OrderRequest, lockPrice *big.Int) error {
	row := rowFromRequest(order)
	row.Status = model.StatusPendingProving
	if lockPrice != nil {
		row.LockPrice = lockPrice.String()
	}

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "lock_price", "updated_at"}),
	}).Create(row)
	if tx.Error != nil {
		return fmt.Errorf("failed to insert accepted order %s: %w", row.ID, tx.Error)
	}
	return nil
}

// InsertSkippedOrder records that the broker declined an order.
func (s *Store) InsertSkippedOrder(ctx context.Context, order *model.OrderRequest) error {
	row := rowFromRequest(order)
	row.Status = model.StatusSkipped

	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(row)
	if tx.Error != nil {
		return fmt.Errorf("failed to insert skipped order %s: %w", row.ID, tx.Error)
	}
	return nil
}

// SetOrderStatus transitions an order's status.
func (s *Store) SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	updates := map[string]interface{}{"status": status.String()}
	if status == model.StatusProving {
		updates["proving_started_at"] = time.Now()
	}
	tx := s.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return store.ErrOrderNotFound
	}
	return nil
}

// SetRequestLocked records a market lock event for a request.
func (s *Store) SetRequestLocked(ctx context.Context, requestID *big.Int, locker string, lockedAt uint64) error {
	lock := &model.RequestLock{
		RequestID: requestKey(requestID),
		Locker:    locker,
		LockedAt:  lockedAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"locker", "locked_at"}),
	}).Create(lock).Error
}

// SetRequestFulfilled records a market fulfillment event for a request.
func (s *Store) SetRequestFulfilled(ctx context.Context, requestID *big.Int, fulfilledAt uint64) error {
	fulfillment := &model.RequestFulfillment{
		RequestID:   requestKey(requestID),
		FulfilledAt: fulfilledAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		DoNothing: true,
	}).Create(fulfillment).Error
}

// IsRequestLocked reports whether the request has ever been locked.
func (s *Store) IsRequestLocked(ctx context.Context, requestID *big.Int) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.RequestLock{}).
		Where("request_id = ?", requestKey(requestID)).Count(&count)
	return count > 0, tx.Error
}

// IsRequestFulfilled reports whether the request has been fulfilled.
func (s *Store) IsRequestFulfilled(ctx context.Context, requestID *big.Int) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).Model(&model.RequestFulfillment{}).
		Where("request_id = ?", requestKey(requestID)).Count(&count)
	return count > 0, tx.Error
}

// GetRequestLocker returns the locker address and lock timestamp.
func (s *Store) GetRequestLocker(ctx context.Context, requestID *big.Int) (string, uint64, bool, error) {
	var lock model.RequestLock
	tx := s.db.WithContext(ctx).Where("request_id = ?", requestKey(requestID)).First(&lock)
	if tx.Error != nil {
		if tx.Error == gorm.ErrRecordNotFound {
			return "", 0, false, nil
		}
		return "", 0, false, tx.Error
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
	}
}

func requestKey(requestID *big.Int) string {
	return fmt.Sprintf("0x%x", requestID)
}
