package model

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOffer() *Offer {
	return &Offer{
		MinPrice:     big.NewInt(100),
		MaxPrice:     big.NewInt(200),
		BiddingStart: 1000,
		RampUpPeriod: 10,
		LockTimeout:  50,
		Timeout:      100,
		LockStake:    big.NewInt(5),
	}
}

func TestOfferExpiry(t *testing.T) {
	o := testOffer()
	assert.Equal(t, uint64(1100), o.ExpiresAt())
	assert.Equal(t, uint64(1050), o.LockExpiresAt())
}

func TestPriceAtBeforeBiddingStart(t *testing.T) {
	o := testOffer()
	price, err := o.PriceAt(999)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), price)
}

func TestPriceAtRampsLinearly(t *testing.T) {
	o := testOffer()

	price, err := o.PriceAt(1005)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), price)

	price, err = o.PriceAt(1001)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(110), price)
}

func TestPriceAtAfterRampUp(t *testing.T) {
	o := testOffer()
	price, err := o.PriceAt(1050)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(200), price)
}

func TestPriceAtAfterExpiry(t *testing.T) {
	o := testOffer()
	_, err := o.PriceAt(1101)
	assert.Error(t, err)
}

func TestPriceAtDoesNotMutateOffer(t *testing.T) {
	o := testOffer()
	_, err := o.PriceAt(1005)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), o.MinPrice)
	assert.Equal(t, big.NewInt(200), o.MaxPrice)
}
