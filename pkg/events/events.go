// Package events records broker lifecycle events (locks, skips, failures) for
// offline analysis, independently of the structured log stream.
package events

// Severity levels for recorded events.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Event is a broker lifecycle event.
type Event interface {
	// Type is a stable event type identifier.
	Type() string
	Message() string
	Severity() Severity
	// OrderID identifies the order the event concerns; empty for events not
	// tied to an order.
	OrderID() string
	// Attributes carries event-specific details, serialized as JSON.
	Attributes() map[string]any
}

// Recorder persists events. A nil *Store is a valid no-op Recorder.
type Recorder interface {
	Record(event Event)
}
