// Package database provides a sink that records rendered reports as rows in
// a SQL database via database/sql. The caller supplies the open connection;
// driver registration stays outside this package.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// DefaultTable is the table reports are inserted into.
const DefaultTable = "error_log"

// createTableTemplate is the portable shape the sink expects.
const createTableTemplate = `CREATE TABLE IF NOT EXISTS %s (
	report_id      TEXT PRIMARY KEY,
	created_at     TIMESTAMP NOT NULL,
	exception_type TEXT NOT NULL,
	message        TEXT NOT NULL,
	fingerprint    TEXT NOT NULL,
	system_id      INTEGER NOT NULL DEFAULT 0,
	location_id    INTEGER NOT NULL DEFAULT 0,
	application_id INTEGER NOT NULL DEFAULT 0,
	reported_by    TEXT NOT NULL DEFAULT '',
	report         TEXT NOT NULL
)`

// DatabaseSinkOption configures the database sink.
type DatabaseSinkOption func(*databaseSinkConfig)

type databaseSinkConfig struct {
	table         string
	systemID      int
	locationID    int
	applicationID int
	reportedBy    string
}

// WithTable sets the destination table (default: error_log).
func WithTable(table string) DatabaseSinkOption {
	return func(c *databaseSinkConfig) {
		if table != "" {
			c.table = table
		}
	}
}

// WithIdentity stamps every inserted row with the configured system,
// location, and application identifiers.
func WithIdentity(systemID, locationID, applicationID int, reportedBy string) DatabaseSinkOption {
	return func(c *databaseSinkConfig) {
		c.systemID = systemID
		c.locationID = locationID
		c.applicationID = applicationID
		c.reportedBy = reportedBy
	}
}

// databaseSink inserts one row per report.
type databaseSink struct {
	db  *sql.DB
	cfg databaseSinkConfig
}

// NewDatabaseSink creates a sink over an open connection.
func NewDatabaseSink(db *sql.DB, opts ...DatabaseSinkOption) webfault.Sink {
	cfg := databaseSinkConfig{table: DefaultTable}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &databaseSink{db: db, cfg: cfg}
}

// EnsureSchema creates the report table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if table == "" {
		table = DefaultTable
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf(createTableTemplate, table))
	return err
}

// Name identifies the sink.
func (s *databaseSink) Name() string {
	return webfault.ChannelDatabase
}

// Send inserts the report row.
func (s *databaseSink) Send(ctx context.Context, report *webfault.Report) error {
	if s.db == nil {
		return errors.New("no database connection configured")
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(report_id, created_at, exception_type, message, fingerprint,
		 system_id, location_id, application_id, reported_by, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.cfg.table)

	_, err := s.db.ExecContext(ctx, query,
		report.ReportID,
		report.Timestamp,
		report.TypeName,
		report.Message,
		report.Fingerprint,
		s.cfg.systemID,
		s.cfg.locationID,
		s.cfg.applicationID,
		s.cfg.reportedBy,
		report.Text,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *databaseSink) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
