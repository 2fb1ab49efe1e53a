package events

import "fmt"

// OrderLockedEvent records a successful request lock.
type OrderLockedEvent struct {
	ID        string
	RequestID string
	LockPrice string
	Stake     string
}

func (e OrderLockedEvent) Type() string       { return "order_locked" }
func (e OrderLockedEvent) Severity() Severity { return SeverityInfo }
func (e OrderLockedEvent) OrderID() string    { return e.ID }

func (e OrderLockedEvent) Message() string {
	return fmt.Sprintf("locked request %s at price %s", e.RequestID, e.LockPrice)
}

func (e OrderLockedEvent) Attributes() map[string]any {
	return map[string]any{
		"request_id": e.RequestID,
		"lock_price": e.LockPrice,
		"stake":      e.Stake,
	}
}

// OrderSkippedEvent records an order dropped before commitment.
type OrderSkippedEvent struct {
	ID     string
	Reason string
}

func (e OrderSkippedEvent) Type() string       { return "order_skipped" }
func (e OrderSkippedEvent) Severity() Severity { return SeverityInfo }
func (e OrderSkippedEvent) OrderID() string    { return e.ID }

func (e OrderSkippedEvent) Message() string {
	return fmt.Sprintf("skipped order %s: %s", e.ID, e.Reason)
}

func (e OrderSkippedEvent) Attributes() map[string]any {
	return map[string]any{"reason": e.Reason}
}

// LockFailedEvent records a failed lock attempt.
type LockFailedEvent struct {
	ID    string
	Code  string
	Cause string
}

func (e LockFailedEvent) Type() string    { return "lock_failed" }
func (e LockFailedEvent) OrderID() string { return e.ID }

func (e LockFailedEvent) Severity() Severity {
	// Unexpected failures are errors; market races are routine.
	if e.Code == "[B-OM-500]" || e.Code == "[B-OM-010]" {
		return SeverityError
	}
	return SeverityWarning
}

func (e LockFailedEvent) Message() string {
	return fmt.Sprintf("failed to lock order %s: %s", e.ID, e.Code)
}

func (e LockFailedEvent) Attributes() map[string]any {
	return map[string]any{"code": e.Code, "cause": e.Cause}
}

// StakeAlertEvent records the prover's stake balance crossing a threshold.
type StakeAlertEvent struct {
	Balance   string
	Threshold string
	Level     Severity
}

func (e StakeAlertEvent) Type() string       { return "stake_alert" }
func (e StakeAlertEvent) Severity() Severity { return e.Level }
func (e StakeAlertEvent) OrderID() string    { return "" }

func (e StakeAlertEvent) Message() string {
	return fmt.Sprintf("stake balance %s below threshold %s", e.Balance, e.Threshold)
}

func (e StakeAlertEvent) Attributes() map[string]any {
	return map[string]any{"balance": e.Balance, "threshold": e.Threshold}
}
