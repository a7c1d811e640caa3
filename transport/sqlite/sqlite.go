// Package sqlite provides the SQLite sink transport. Records are stored in a
// generated_records table so a run can be inspected with any SQLite client.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/drblury/fakeflow/transport"
	"github.com/drblury/fakeflow/transport/sqlstore"
)

// TransportName is the name used to register this transport.
const TransportName = "sqlite"

// DefaultFilePath is used when no file is configured.
const DefaultFilePath = "fakeflow.db"

// OpenDB allows overriding how the database is opened for testing.
var OpenDB = func(path string) (*sql.DB, error) {
	return sql.Open("sqlite3", path)
}

// Dialect is the SQLite flavour of the record store.
var Dialect = sqlstore.Dialect{
	Name:  TransportName,
	Table: sqlstore.TableName,
	Schema: []string{
		`CREATE TABLE IF NOT EXISTS generated_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			topic TEXT NOT NULL,
			payload BLOB NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generated_records_topic ON generated_records(topic)`,
	},
	Placeholder: sqlstore.QuestionPlaceholder,
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.SQLiteCapabilities)
}

// Build creates a new SQLite transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	store, err := New(ctx, cfg.GetSQLiteFile(), logger)
	if err != nil {
		return transport.Transport{}, err
	}
	return transport.Transport{Publisher: store}, nil
}

// New opens the database at path (":memory:" works) and prepares the schema.
func New(ctx context.Context, path string, logger watermill.LoggerAdapter) (*sqlstore.Store, error) {
	if path == "" {
		path = DefaultFilePath
	}
	db, err := OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases from splitting per connection.
	db.SetMaxOpenConns(1)

	store, err := sqlstore.New(ctx, db, Dialect, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.SQLiteCapabilities
}
