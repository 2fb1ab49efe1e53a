package model

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

//go:generate go run github.com/dmarkham/enumer -type FulfillmentType -transform snake -output fulfillment_type.gen.go

// FulfillmentType describes how the broker intends to fulfill an order.
type FulfillmentType int

const (
	// LockAndFulfill locks the request for exclusive fulfillment, putting
	// stake at risk, before proving.
	LockAndFulfill FulfillmentType = iota
	// FulfillAfterLockExpire proves a request another prover locked but
	// failed to fulfill before the lock lapsed.
	FulfillAfterLockExpire
	// FulfillWithoutLocking proves an open request without ever locking it.
	FulfillWithoutLocking
)

// ProofRequest is a request as submitted to the market by a client.
type ProofRequest struct {
	// RequestID is the market-wide request identifier (uint256).
	RequestID *big.Int `json:"id"`
	// Client is the address that submitted and signed the request.
	Client common.Address `json:"client"`
	// ImageURL locates the guest image to execute.
	ImageURL string `json:"imageUrl"`
	// InputURL locates the guest input; empty when the input is inline.
	InputURL string `json:"inputUrl,omitempty"`
	// InlineInput carries the input bytes when small enough to inline.
	InlineInput []byte `json:"inlineInput,omitempty"`
	Offer       Offer  `json:"offer"`
}

// ExpiresAt returns the request's final expiration timestamp.
func (r *ProofRequest) ExpiresAt() uint64 { return r.Offer.ExpiresAt() }

// LockExpiresAt returns the request's lock expiration timestamp.
func (r *ProofRequest) LockExpiresAt() uint64 { return r.Offer.LockExpiresAt() }

// OrderRequest is an order the broker has priced and committed to watch, but
// has not yet locked or started proving. It lives in the monitor's in-memory
// caches until it is committed to the database or skipped.
type OrderRequest struct {
	Request         ProofRequest
	ClientSig       []byte
	FulfillmentType FulfillmentType
	// TargetTimestamp is the block timestamp at which the order should be
	// acted on (locked, or proved for expired-lock orders). Zero means
	// immediately.
	TargetTimestamp uint64
	// ExpireTimestamp, when non-zero, evicts the order from the monitor
	// cache at that time.
	ExpireTimestamp uint64
	// TotalCycles is the estimated execution cost from the pricing preflight.
	// Zero when unknown.
	TotalCycles uint64
	// Primary marks orders from priority addresses; they are committed ahead
	// of everything else.
	Primary bool
}

// ID identifies an order uniquely: the same request can be watched under
// different fulfillment types.
func (o *OrderRequest) ID() string {
	return fmt.Sprintf("0x%x-%s", o.Request.RequestID, o.FulfillmentType)
}

// Expiry returns the timestamp past which this order is worthless to the
// broker: the lock expiry for orders we intend to lock, the request expiry
// otherwise.
func (o *OrderRequest) Expiry() uint64 {
	if o.FulfillmentType == LockAndFulfill {
		return o.Request.LockExpiresAt()
	}
	return o.Request.ExpiresAt()
}

// IsPrimary reports whether the order should be committed ahead of
// non-priority orders.
func (o *OrderRequest) IsPrimary() bool { return o.Primary }
