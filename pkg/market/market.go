// Package market talks to the on-chain proof market: request status reads,
// lock transactions and balance queries.
package market

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zkmarket/broker/pkg/model"
)

// RequestStatus is the on-chain state of a proof request.
type RequestStatus int

const (
	// StatusUnknown means the request is open: not locked, not fulfilled and
	// not expired.
	StatusUnknown RequestStatus = iota
	// StatusLocked means another prover (or we) hold an active lock.
	StatusLocked
	// StatusFulfilled means a proof has been delivered for the request.
	StatusFulfilled
	// StatusExpired means the request can no longer be fulfilled.
	StatusExpired
)

func (s RequestStatus) String() string {
	switch s {
	case StatusLocked:
		return "locked"
	case StatusFulfilled:
		return "fulfilled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

var (
	// ErrAlreadyLocked is returned when a lock attempt loses the race to
	// another prover.
	ErrAlreadyLocked = errors.New("request is already locked")
	// ErrRequestFulfilled is returned when the request was fulfilled before we
	// could lock it.
	ErrRequestFulfilled = errors.New("request is already fulfilled")
	// ErrLockReverted is returned when the lock transaction was mined but
	// reverted.
	ErrLockReverted = errors.New("lock transaction reverted")
	// ErrTxNotConfirmed is returned when a transaction was sent but no receipt
	// arrived within the confirmation timeout.
	ErrTxNotConfirmed = errors.New("transaction not confirmed")
	// ErrInsufficientBalance is returned when the market rejects the lock
	// because the client cannot cover the price or we cannot cover the stake.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Market is the broker's view of the proof market contract.
type Market interface {
	// Caller returns the address the broker transacts as.
	Caller() common.Address

	// GetRequestStatus resolves the current status of a request. expiresAt is
	// the request's own expiration, used to distinguish open from expired.
	GetRequestStatus(ctx context.Context, requestID *big.Int, expiresAt uint64) (RequestStatus, error)

	// GetRequestLocker returns the address holding the lock on a request, if
	// any.
	GetRequestLocker(ctx context.Context, requestID *big.Int) (common.Address, bool, error)

	// LockRequest submits a lock transaction for the request and waits for it
	// to be mined. priorityGas, when non-zero, is the priority fee (wei) to
	// attach to the transaction. It returns the block number the lock landed
	// in.
	LockRequest(ctx context.Context, req *model.ProofRequest, clientSig []byte, priorityGas uint64) (uint64, error)

	// BalanceOf returns the market deposit balance of an address, in wei.
	BalanceOf(ctx context.Context, account common.Address) (*big.Int, error)

	// StakeBalanceOf returns the stake token balance an address has deposited
	// with the market.
	StakeBalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
}
