// Package sinkset assembles the delivery sinks a settings object enables.
// It is the one place that knows how every sink is constructed from
// configuration, so embedders only wire what they override.
package sinkset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/oversite/web-fault-observe/pkg/webfault"
	"github.com/oversite/web-fault-observe/pkg/webfault/sinks/database"
	"github.com/oversite/web-fault-observe/pkg/webfault/sinks/email"
	"github.com/oversite/web-fault-observe/pkg/webfault/sinks/eventlog"
	"github.com/oversite/web-fault-observe/pkg/webfault/sinks/file"
)

// Option configures sink assembly.
type Option func(*config)

type config struct {
	db          *sql.DB
	driver      string
	eventLogTag string
}

// WithDB supplies an already-open database connection for the database
// sink, instead of opening one from the connection string.
func WithDB(db *sql.DB) Option {
	return func(c *config) {
		c.db = db
	}
}

// WithDriver sets the database/sql driver name used when opening from the
// connection string (default: sqlite). The driver must be registered by
// the embedding application.
func WithDriver(name string) Option {
	return func(c *config) {
		if name != "" {
			c.driver = name
		}
	}
}

// WithEventLogTag sets the event source tag (default: the AppName setting,
// or "webfault").
func WithEventLogTag(tag string) Option {
	return func(c *config) {
		c.eventLogTag = tag
	}
}

// FromSettings builds one sink per enabled channel. Channels that fail to
// construct are skipped and their errors aggregated; the sinks that did
// construct are still returned so delivery degrades instead of vanishing.
func FromSettings(settings *webfault.Settings, opts ...Option) ([]webfault.Sink, error) {
	cfg := &config{driver: "sqlite"}
	for _, opt := range opts {
		opt(cfg)
	}

	var sinks []webfault.Sink
	var errs []error

	if settings.LogToEventLog {
		tag := cfg.eventLogTag
		if tag == "" {
			tag = settings.AppName
		}
		if tag == "" {
			tag = "webfault"
		}
		sink, err := eventlog.NewEventLogSink(tag)
		if err != nil {
			errs = append(errs, fmt.Errorf("event log sink: %w", err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	if settings.LogToFile {
		if settings.LogFileName == "" {
			errs = append(errs, errors.New("file sink: LogFileName is not set"))
		} else {
			sinks = append(sinks, file.NewFileSink(settings.LogFileName))
		}
	}

	if settings.LogToEmail {
		sink := email.NewEmailSink(
			settings.EmailServer,
			settings.EmailFromAddress,
			settings.EmailAddressFromName,
			settings.Recipients(),
			email.WithSubjectPrefix(settings.AppName),
		)
		sinks = append(sinks, sink)
	}

	if settings.LogToSQL {
		db := cfg.db
		if db == nil {
			if settings.ConnectionString == "" {
				errs = append(errs, errors.New("database sink: ConnectionString is not set"))
			} else {
				opened, err := sql.Open(cfg.driver, settings.ConnectionString)
				if err != nil {
					errs = append(errs, fmt.Errorf("database sink: %w", err))
				} else {
					db = opened
				}
			}
		}
		if db != nil {
			if err := database.EnsureSchema(context.Background(), db, database.DefaultTable); err != nil {
				errs = append(errs, fmt.Errorf("database sink schema: %w", err))
			} else {
				sinks = append(sinks, database.NewDatabaseSink(db,
					database.WithIdentity(settings.SystemID, settings.LocationID, settings.ApplicationID, settings.ReportedBy),
				))
			}
		}
	}

	return sinks, errors.Join(errs...)
}
