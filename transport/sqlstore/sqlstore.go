// Package sqlstore is the record store shared by the sqlite and postgres
// transports. Every published message becomes one row of generated_records.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/fakeflow/internal/runtime/jsoncodec"
)

// TableName is the unqualified name of the record table.
const TableName = "generated_records"

// ErrClosed is returned when publishing to a closed store.
var ErrClosed = errors.New("sqlstore: store closed")

// Dialect captures what differs between SQL engines.
type Dialect struct {
	// Name is used in error messages.
	Name string
	// Table is the (possibly schema-qualified, quoted) table reference.
	Table string
	// Schema holds the statements creating Table and its indexes.
	Schema []string
	// Placeholder returns the bind placeholder for the n-th (1-based) argument.
	Placeholder func(n int) string
}

// QuestionPlaceholder is the "?" style used by SQLite and MySQL.
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder is the "$n" style used by PostgreSQL.
func DollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

// Record is one stored row.
type Record struct {
	ID        int64
	UUID      string
	Topic     string
	Payload   []byte
	Metadata  map[string]string
	CreatedAt time.Time
}

// Store publishes messages into a SQL table. It implements message.Publisher
// and transport.RecordCounter.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  watermill.LoggerAdapter
	now     func() time.Time

	insert string

	mu     sync.RWMutex
	closed bool
}

// New creates the schema and returns a store owning db.
func New(ctx context.Context, db *sql.DB, dialect Dialect, logger watermill.LoggerAdapter) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: database is required")
	}
	if dialect.Placeholder == nil {
		dialect.Placeholder = QuestionPlaceholder
	}
	if dialect.Table == "" {
		dialect.Table = TableName
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	for _, stmt := range dialect.Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("%s: initialize schema: %w", dialect.Name, err)
		}
	}

	placeholders := make([]string, 5)
	for i := range placeholders {
		placeholders[i] = dialect.Placeholder(i + 1)
	}
	// #nosec G201 - the table reference comes from the dialect, never from input
	insert := fmt.Sprintf(
		"INSERT INTO %s (uuid, topic, payload, metadata, created_at) VALUES (%s)",
		dialect.Table, strings.Join(placeholders, ", "),
	)

	return &Store{
		db:      db,
		dialect: dialect,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		insert:  insert,
	}, nil
}

// Publish inserts all messages in a single transaction.
func (s *Store) Publish(topic string, messages ...*message.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if len(messages) == 0 {
		return nil
	}

	ctx := context.Background()
	if ctxMsg := messages[0].Context(); ctxMsg != nil {
		ctx = ctxMsg
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin transaction: %w", s.dialect.Name, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			s.logger.Error("Failed to roll back record insert", err, nil)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.insert)
	if err != nil {
		return fmt.Errorf("%s: prepare insert: %w", s.dialect.Name, err)
	}
	defer stmt.Close()

	for _, msg := range messages {
		md, err := jsoncodec.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("%s: marshal metadata of %s: %w", s.dialect.Name, msg.UUID, err)
		}
		if _, err := stmt.ExecContext(ctx, msg.UUID, topic, msg.Payload, string(md), s.now()); err != nil {
			return fmt.Errorf("%s: insert record %s: %w", s.dialect.Name, msg.UUID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", s.dialect.Name, err)
	}
	s.logger.Trace("Records stored", watermill.LogFields{"topic": topic, "count": len(messages)})
	return nil
}

// CountRecords returns how many records topic holds.
func (s *Store) CountRecords(ctx context.Context, topic string) (int64, error) {
	// #nosec G201 - the table reference comes from the dialect, never from input
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE topic = %s", s.dialect.Table, s.dialect.Placeholder(1))
	var n int64
	if err := s.db.QueryRowContext(ctx, query, topic).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: count records: %w", s.dialect.Name, err)
	}
	return n, nil
}

// Records returns up to limit records of topic in insertion order. A limit
// below 1 returns all of them.
func (s *Store) Records(ctx context.Context, topic string, limit int) ([]Record, error) {
	// #nosec G201 - the table reference comes from the dialect, never from input
	query := fmt.Sprintf(
		"SELECT id, uuid, topic, payload, metadata, created_at FROM %s WHERE topic = %s ORDER BY id",
		s.dialect.Table, s.dialect.Placeholder(1),
	)
	args := []any{topic}
	if limit > 0 {
		query += " LIMIT " + s.dialect.Placeholder(2)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query records: %w", s.dialect.Name, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			md  string
		)
		if err := rows.Scan(&rec.ID, &rec.UUID, &rec.Topic, &rec.Payload, &md, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan record: %w", s.dialect.Name, err)
		}
		if md != "" {
			if err := jsoncodec.Unmarshal([]byte(md), &rec.Metadata); err != nil {
				return nil, fmt.Errorf("%s: decode metadata of %s: %w", s.dialect.Name, rec.UUID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
