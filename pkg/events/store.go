package events

import (
	"database/sql"
	"encoding/json"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/zkmarket/broker/pkg/log"
)

// Store persists events to the broker_events table.
//
// A nil *Store is a valid Recorder that drops every event, so callers never
// need to branch on whether event persistence is configured.
type Store struct {
	db *sql.DB
}

var _ Recorder = (*Store)(nil)

// NewStore creates a store from EVENTS_DATABASE_URL, falling back to
// DATABASE_URL. Returns nil when neither is set (event persistence disabled).
func NewStore() (*Store, error) {
	dbURL := os.Getenv("EVENTS_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewStoreWithDB creates a store with an existing connection. Useful for
// testing with sqlmock.
func NewStoreWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record persists the event. Failures are logged, not returned: event
// persistence never blocks order processing.
func (s *Store) Record(event Event) {
	if err := s.Save(event); err != nil {
		logger := log.WithComponent("events")
		logger.Error().Err(err).
			Str("event_type", event.Type()).Msg("failed to persist event")
	}
}

// Save persists the event, returning any error.
func (s *Store) Save(event Event) error {
	if s == nil || s.db == nil {
		return nil
	}

	attrs, err := json.Marshal(event.Attributes())
	if err != nil {
		return err
	}

	hostname, _ := os.Hostname()

	_, err = s.db.Exec(`
		INSERT INTO broker_events (event_type, severity, timestamp, hostname, order_id, attributes, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		event.Type(),
		event.Severity().String(),
		time.Now().UTC(),
		hostname,
		event.OrderID(),
		attrs,
		event.Message(),
	)
	return err
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}
