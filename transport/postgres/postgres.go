// Package postgres provides the PostgreSQL sink transport. Records land in
// fakeflow.generated_records.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/lib/pq"

	"github.com/drblury/fakeflow/transport"
	"github.com/drblury/fakeflow/transport/sqlstore"
)

// TransportName is the name used to register this transport.
const TransportName = "postgres"

// DefaultSchema is the schema holding the record table.
const DefaultSchema = "fakeflow"

// OpenDB allows overriding how the database is opened for testing.
var OpenDB = func(dsn string) (*sql.DB, error) {
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.PostgresCapabilities)
	transport.Alias("postgresql", TransportName)
}

// NewDialect returns the PostgreSQL flavour of the record store for schema.
func NewDialect(schema string) sqlstore.Dialect {
	if schema == "" {
		schema = DefaultSchema
	}
	quotedSchema := pq.QuoteIdentifier(schema)
	table := quotedSchema + "." + pq.QuoteIdentifier(sqlstore.TableName)

	return sqlstore.Dialect{
		Name:  TransportName,
		Table: table,
		Schema: []string{
			"CREATE SCHEMA IF NOT EXISTS " + quotedSchema,
			`CREATE TABLE IF NOT EXISTS ` + table + ` (
				id BIGSERIAL PRIMARY KEY,
				uuid TEXT NOT NULL UNIQUE,
				topic TEXT NOT NULL,
				payload BYTEA NOT NULL,
				metadata JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_generated_records_topic ON ` + table + `(topic)`,
		},
		Placeholder: sqlstore.DollarPlaceholder,
	}
}

// Build creates a new PostgreSQL transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	store, err := New(ctx, cfg.GetPostgresURL(), DefaultSchema, logger)
	if err != nil {
		return transport.Transport{}, err
	}
	return transport.Transport{Publisher: store}, nil
}

// New connects to dsn and prepares the schema.
func New(ctx context.Context, dsn, schema string, logger watermill.LoggerAdapter) (*sqlstore.Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}

	db, err := OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	store, err := sqlstore.New(ctx, db, NewDialect(schema), logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.PostgresCapabilities
}
