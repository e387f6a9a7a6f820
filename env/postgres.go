package env

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresConfig contains PostgreSQL connection settings for the audit sink.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
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

// PostgresSink appends audit records to a PostgreSQL table, one row per
// record. The sink only ever inserts; the table is as append-only as the
// database permissions make it.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink connects to the database and creates the audit table if it
// does not exist yet.
func NewPostgresSink(config *PostgresConfig) (*PostgresSink, error) {
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
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	sink := &PostgresSink{db: db}
	if err := sink.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return sink, nil
}

func (s *PostgresSink) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		ts TIMESTAMP WITH TIME ZONE NOT NULL,
		sender VARCHAR(128) NOT NULL,
		receiver VARCHAR(128) NOT NULL,
		payload_kind VARCHAR(16) NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_log_ts ON audit_log(ts);
	CREATE INDEX IF NOT EXISTS idx_audit_log_sender ON audit_log(sender);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append implements AuditSink.
func (s *PostgresSink) Append(rec Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (ts, sender, receiver, payload_kind, payload) VALUES ($1, $2, $3, $4, $5)`,
		rec.Timestamp, rec.Sender, rec.Receiver, string(rec.Kind), rec.Payload,
	)
	return err
}

// Close closes the database connection.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
