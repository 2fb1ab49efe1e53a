package model

import (
	"fmt"
	"math/big"
)

// Offer is the pricing schedule attached to a proof request. Prices are in
// wei. The price ramps linearly from MinPrice to MaxPrice over RampUpPeriod
// seconds starting at BiddingStart.
type Offer struct {
	MinPrice     *big.Int `json:"minPrice"`
	MaxPrice     *big.Int `json:"maxPrice"`
	BiddingStart uint64   `json:"biddingStart"`
	RampUpPeriod uint32   `json:"rampUpPeriod"`
	LockTimeout  uint32   `json:"lockTimeout"`
	Timeout      uint32   `json:"timeout"`
	LockStake    *big.Int `json:"lockStake"`
}

// ExpiresAt returns the unix timestamp after which the request can no longer
// be fulfilled.
func (o *Offer) ExpiresAt() uint64 {
	return o.BiddingStart + uint64(o.Timeout)
}

// LockExpiresAt returns the unix timestamp after which a lock held on the
// request lapses and the request becomes fulfillable by anyone.
func (o *Offer) LockExpiresAt() uint64 {
	return o.BiddingStart + uint64(o.LockTimeout)
}

// PriceAt returns the offer price at the given unix timestamp.
func (o *Offer) PriceAt(timestamp uint64) (*big.Int, error) {
	if timestamp > o.ExpiresAt() {
		return nil, fmt.Errorf("request expired at %d, cannot price at %d", o.ExpiresAt(), timestamp)
	}
	if timestamp <= o.BiddingStart {
		return new(big.Int).Set(o.MinPrice), nil
	}
	rampEnd := o.BiddingStart + uint64(o.RampUpPeriod)
	if timestamp >= rampEnd {
		return new(big.Int).Set(o.MaxPrice), nil
	}

	// Linear interpolation between min and max over the ramp-up period.
	elapsed := new(big.Int).SetUint64(timestamp - o.BiddingStart)
	span := new(big.Int).Sub(o.MaxPrice, o.MinPrice)
	delta := new(big.Int).Mul(span, elapsed)
	delta.Div(delta, new(big.Int).SetUint64(uint64(o.RampUpPeriod)))
	return delta.Add(delta, o.MinPrice), nil
}
