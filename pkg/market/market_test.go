package market

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestStatusString(t *testing.T) {
	assert.Equal(t, "unknown", StatusUnknown.String())
	assert.Equal(t, "locked", StatusLocked.String())
	assert.Equal(t, "fulfilled", StatusFulfilled.String())
	assert.Equal(t, "expired", StatusExpired.String())
}

func TestClassifyLockError(t *testing.T) {
	err := classifyLockError(errors.New("execution reverted: RequestIsLocked(0x2a)"))
	assert.ErrorIs(t, err, ErrAlreadyLocked)

	err = classifyLockError(errors.New("execution reverted: RequestIsFulfilled(0x2a)"))
	assert.ErrorIs(t, err, ErrRequestFulfilled)

	err = classifyLockError(errors.New("execution reverted: InsufficientBalance(0xabc)"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	err = classifyLockError(errors.New("nonce too low"))
	assert.NotErrorIs(t, err, ErrAlreadyLocked)
	assert.Contains(t, err.Error(), "nonce too low")
}
