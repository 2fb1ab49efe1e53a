package store

import (
	"context"
	"errors"
	"math/big"

	"github.com/zkmarket/broker/pkg/model"
)

// ErrOrderNotFound is returned when an order doesn't exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrOrderExists is returned when inserting an order whose ID is already
// present.
var ErrOrderExists = errors.New("order already exists")

// OrdersStore abstracts order persistence.
type OrdersStore interface {
	// AddOrder inserts a committed order.
	AddOrder(ctx context.Context, order *model.Order) error

	// GetOrder retrieves an order by its ID.
	// Returns ErrOrderNotFound if the order doesn't exist.
	GetOrder(ctx context.Context, id string) (*model.Order, error)

	// ListOrders returns orders filtered by status; all orders when status
	// is nil.
	ListOrders(ctx context.Context, status *model.OrderStatus) ([]*model.Order, error)

	// GetCommittedOrders returns the orders the broker is currently
	// committed to proving (waiting to lock, pending proving, proving, or
	// pending submission).
	GetCommittedOrders(ctx context.Context) ([]*model.Order, error)

	// InsertAcceptedOrder records that the broker committed to an order,
	// with the price it locked at (zero for orders never locked by us).
	InsertAcceptedOrder(ctx context.Context, order *model.OrderRequest, lockPrice *big.Int) error

	// InsertSkippedOrder records that the broker declined an order.
	InsertSkippedOrder(ctx context.Context, order *model.OrderRequest) error

	// SetOrderStatus transitions an order's status.
	SetOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
}

// RequestIndex tracks the market-wide lock and fulfillment state of requests,
// maintained from market events independently of the broker's own orders.
type RequestIndex interface {
	SetRequestLocked(ctx context.Context, requestID *big.Int, locker string, lockedAt uint64) error
	SetRequestFulfilled(ctx context.Context, requestID *big.Int, fulfilledAt uint64) error

	IsRequestLocked(ctx context.Context, requestID *big.Int) (bool, error)
	IsRequestFulfilled(ctx context.Context, requestID *big.Int) (bool, error)

	// GetRequestLocker returns the locker address and lock timestamp, or
	// ok=false when the request was never locked.
	GetRequestLocker(ctx context.Context, requestID *big.Int) (locker string, lockedAt uint64, ok bool, err error)
}

// Store is the full broker storage surface.
type Store interface {
	OrdersStore
	RequestIndex
}
