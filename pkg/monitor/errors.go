package monitor

import (
	"errors"
	"fmt"
)

// Stable error codes for lock failures, used in logs and alerting.
const (
	codeLockTxNotConfirmed  = "[B-OM-006]"
	codeLockTxFailed        = "[B-OM-007]"
	codeAlreadyLocked       = "[B-OM-009]"
	codeInsufficientBalance = "[B-OM-010]"
	codeRPC                 = "[B-OM-011]"
	codeUnexpected          = "[B-OM-500]"
)

// monitorError attaches a stable code to a lock failure.
type monitorError struct {
	code string
	err  error
}

func (e *monitorError) Error() string { return fmt.Sprintf("%s %s", e.code, e.err) }
func (e *monitorError) Code() string  { return e.code }
func (e *monitorError) Unwrap() error { return e.err }

func codedErr(code string, err error) *monitorError {
	return &monitorError{code: code, err: err}
}

func codedErrf(code string, format string, args ...interface{}) *monitorError {
	return &monitorError{code: code, err: fmt.Errorf(format, args...)}
}

func errAlreadyLocked() *monitorError {
	return codedErr(codeAlreadyLocked, errors.New("order already locked"))
}

// errorCode extracts the stable code from err, defaulting to the unexpected
// code.
func errorCode(err error) string {
	var coded *monitorError
	if errors.As(err, &coded) {
		return coded.code
	}
	return codeUnexpected
}
