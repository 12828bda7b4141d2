package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
)

// EventStore persists audit events. Implementations must tolerate
// replays of the same sequence number, since the recorder may resave
// events after a restart.
type EventStore interface {
	SaveEvent(e protocol.Event) error
	LoadEvents() ([]protocol.Event, error)
	Close() error
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnectionString returns the PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslMode)
}

// PostgresEventStore implements EventStore with PostgreSQL persistence.
type PostgresEventStore struct {
	db *sql.DB
}

// NewPostgresEventStore opens the database, verifies connectivity, and
// runs migrations.
func NewPostgresEventStore(config *PostgresConfig) (*PostgresEventStore, error) {
	db, err := sql.Open("postgres", config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresEventStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresEventStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_events (
		seq BIGINT PRIMARY KEY,
		occurred_at TIMESTAMP WITH TIME ZONE NOT NULL,
		kind VARCHAR(64) NOT NULL,
		actor VARCHAR(64),
		address VARCHAR(64),
		batch_id BIGINT,
		handle VARCHAR(128),
		request_id VARCHAR(64),
		fingerprint VARCHAR(128),
		cooldown_seconds BIGINT,
		solvent BOOLEAN
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_kind ON audit_events(kind);
	CREATE INDEX IF NOT EXISTS idx_audit_events_batch ON audit_events(batch_id);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveEvent persists one audit event. Saving the same sequence number
// twice is a no-op.
func (s *PostgresEventStore) SaveEvent(e protocol.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
	INSERT INTO audit_events
		(seq, occurred_at, kind, actor, address, batch_id, handle, request_id, fingerprint, cooldown_seconds, solvent)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (seq) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		int64(e.Seq),
		e.Time,
		string(e.Kind),
		e.Actor,
		e.Address,
		int64(e.BatchID),
		e.Handle,
		e.RequestID,
		e.Fingerprint,
		e.CooldownSeconds,
		e.Solvent,
	)
	return err
}

// LoadEvents retrieves all persisted events in sequence order.
func (s *PostgresEventStore) LoadEvents() ([]protocol.Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, occurred_at, kind, actor, address, batch_id, handle, request_id, fingerprint, cooldown_seconds, solvent
		FROM audit_events
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []protocol.Event
	for rows.Next() {
		var (
			e       protocol.Event
			seq     int64
			batchID int64
			kind    string
			solvent sql.NullBool
		)
		if err := rows.Scan(&seq, &e.Time, &kind, &e.Actor, &e.Address,
			&batchID, &e.Handle, &e.RequestID, &e.Fingerprint,
			&e.CooldownSeconds, &solvent); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Seq = uint64(seq)
		e.BatchID = uint64(batchID)
		e.Kind = protocol.EventKind(kind)
		if solvent.Valid {
			v := solvent.Bool
			e.Solvent = &v
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// Close closes the database connection.
func (s *PostgresEventStore) Close() error {
	return s.db.Close()
}

// InMemoryEventStore implements EventStore for testing without a
// database.
type InMemoryEventStore struct {
	mu     sync.Mutex
	events map[uint64]protocol.Event
}

// NewInMemoryEventStore creates an in-memory store.
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{events: make(map[uint64]protocol.Event)}
}

// SaveEvent stores an event in memory, first write wins per sequence.
func (s *InMemoryEventStore) SaveEvent(e protocol.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.Seq]; !ok {
		s.events[e.Seq] = e
	}
	return nil
}

// LoadEvents returns all stored events in sequence order.
func (s *InMemoryEventStore) LoadEvents() ([]protocol.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxSeq uint64
	for seq := range s.events {
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	events := make([]protocol.Event, 0, len(s.events))
	for seq := uint64(1); seq <= maxSeq; seq++ {
		if e, ok := s.events[seq]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

// Close is a no-op.
func (s *InMemoryEventStore) Close() error {
	return nil
}
