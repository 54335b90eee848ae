// Package transcript archives completed exchanges to SQLite.
// The archive is write-mostly: conversation histories are never rebuilt from it.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ahmad123576/History-Chatbot/internal/conversation"
)

// Entry is one archived exchange.
type Entry struct {
	ExchangeID  string
	SessionID   string
	Question    string
	Reply       string
	Model       string
	Temperature float64
	LatencyMs   int64
	CreatedAt   time.Time
}

// SQLiteStore archives exchanges in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the archive at dsn.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			exchange_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL,
			reply TEXT NOT NULL,
			model TEXT NOT NULL,
			temperature REAL NOT NULL,
			latency_ms INTEGER NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record stores one exchange. A missing ExchangeID or CreatedAt is filled in.
func (s *SQLiteStore) Record(ctx context.Context, e *Entry) error {
	if e.ExchangeID == "" {
		e.ExchangeID = "ex_" + uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exchanges (exchange_id, session_id, question, reply, model, temperature, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ExchangeID, e.SessionID, e.Question, e.Reply, e.Model, e.Temperature, e.LatencyMs, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record exchange: %w", err)
	}
	return nil
}

// List returns archived exchanges for a session, oldest first. limit <= 0 means no limit.
func (s *SQLiteStore) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	query := `SELECT exchange_id, session_id, question, reply, model, temperature, latency_ms, created_at
		FROM exchanges WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ExchangeID, &e.SessionID, &e.Question, &e.Reply, &e.Model,
			&e.Temperature, &e.LatencyMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ExchangeCompleted implements conversation.Observer. The exchange has already been
// answered, so a write failure is only logged.
func (s *SQLiteStore) ExchangeCompleted(ctx context.Context, ex conversation.Exchange) {
	err := s.Record(context.WithoutCancel(ctx), &Entry{
		SessionID:   ex.SessionID,
		Question:    ex.Question,
		Reply:       ex.Reply,
		Model:       ex.Model,
		Temperature: ex.Temperature,
		LatencyMs:   ex.Latency.Milliseconds(),
		CreatedAt:   ex.CompletedAt,
	})
	if err != nil {
		log.Printf("WARN: failed to archive exchange for session %s: %v", ex.SessionID, err)
	}
}

var _ conversation.Observer = (*SQLiteStore)(nil)
