package model

import (
	"fmt"
	"math/big"
	"time"
)

//go:generate go run github.com/dmarkham/enumer -type OrderStatus -transform snake -json -sql -output order_status.gen.go

// OrderStatus tracks a committed order through the broker pipeline.
type OrderStatus int

const (
	StatusNew OrderStatus = iota
	StatusPricing
	StatusWaitingToLock
	StatusPendingProving
	StatusProving
	StatusPendingSubmission
	StatusDone
	StatusFailed
	StatusSkipped
)

// Order is a request the broker has committed to (or skipped), persisted in
// the orders table. Monetary values are stored as decimal strings since
// Postgres has no native uint256.
type Order struct {
	ID              string      `gorm:"primaryKey"`
	RequestID       string      `gorm:"column:request_id;index"`
	Client          string      `gorm:"column:client"`
	FulfillmentType string      `gorm:"column:fulfillment_type"`
	Status          OrderStatus `gorm:"column:status;index"`
	ImageURL        string      `gorm:"column:image_url"`
	InputURL        string      `gorm:"column:input_url"`
	ClientSig       []byte      `gorm:"column:client_sig;type:bytea"`
	LockPrice       string      `gorm:"column:lock_price"`
	BiddingStart    uint64      `gorm:"column:bidding_start"`
	LockTimeout     uint32      `gorm:"column:lock_timeout"`
	Timeout         uint32      `gorm:"column:timeout"`
	TotalCycles     uint64      `gorm:"column:total_cycles"`
	ProvingStartedAt *time.Time `gorm:"column:proving_started_at"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Order) TableName() string { return "orders" }

// ExpiresAt returns the request's final expiration timestamp.
func (o *Order) ExpiresAt() uint64 { return o.BiddingStart + uint64(o.Timeout) }

// LockExpiresAt returns the request's lock expiration timestamp.
func (o *Order) LockExpiresAt() uint64 { return o.BiddingStart + uint64(o.LockTimeout) }

// LockPriceWei parses the stored lock price. Returns zero when unset.
func (o *Order) LockPriceWei() *big.Int {
	if o.LockPrice == "" {
		return new(big.Int)
	}
	v, ok := new(big.Int).SetString(o.LockPrice, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

func (o *Order) String() string {
	return fmt.Sprintf("%s (%s)", o.ID, o.Status)
}

// RequestLock records that a request was locked on the market, by us or by
// another prover. Maintained from market events.
type RequestLock struct {
	RequestID string `gorm:"primaryKey;column:request_id"`
	Locker    string `gorm:"column:locker"`
	LockedAt  uint64 `gorm:"column:locked_at"`
}

func (RequestLock) TableName() string { return "request_locks" }

// RequestFulfillment records that a request was fulfilled on the market.
type RequestFulfillment struct {
	RequestID   string `gorm:"primaryKey;column:request_id"`
	FulfilledAt uint64 `gorm:"column:fulfilled_at"`
}

func (RequestFulfillment) TableName() string { return "request_fulfillments" }
