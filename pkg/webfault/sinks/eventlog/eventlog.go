// Package eventlog provides a sink that records rendered reports in the
// operating system's event log (syslog on Unix), via logrus.
package eventlog

import (
	"context"
	"errors"
	"io"
	"log/syslog"
	"sync"

	"github.com/sirupsen/logrus"
	logrussyslog "github.com/sirupsen/logrus/hooks/syslog"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// EventLogSinkOption configures the event log sink.
type EventLogSinkOption func(*eventLogSinkConfig)

type eventLogSinkConfig struct {
	logger *logrus.Logger
}

// WithLogger replaces the syslog-backed logger, used in tests.
func WithLogger(logger *logrus.Logger) EventLogSinkOption {
	return func(c *eventLogSinkConfig) {
		c.logger = logger
	}
}

// eventLogSink records reports through a logrus logger whose hook writes to
// the OS event log.
type eventLogSink struct {
	log    *logrus.Logger
	mu     sync.Mutex
	closed bool
}

// NewEventLogSink creates the sink. The tag names the event source. Fails
// when the local syslog daemon cannot be reached, unless a logger was
// injected.
func NewEventLogSink(tag string, opts ...EventLogSinkOption) (webfault.Sink, error) {
	cfg := &eventLogSinkConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	if log == nil {
		hook, err := logrussyslog.NewSyslogHook("", "", syslog.LOG_ERR, tag)
		if err != nil {
			return nil, err
		}
		log = logrus.New()
		// All output flows through the hook; the logger itself stays quiet.
		log.SetOutput(io.Discard)
		log.AddHook(hook)
	}
	return &eventLogSink{log: log}, nil
}

// Name identifies the sink.
func (s *eventLogSink) Name() string {
	return webfault.ChannelEventLog
}

// Send records the full report as one event log entry.
func (s *eventLogSink) Send(ctx context.Context, report *webfault.Report) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.New("event log sink is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"report_id":      report.ReportID,
		"fingerprint":    report.Fingerprint,
		"exception_type": report.TypeName,
	}).Error(report.Text)
	return nil
}

// Close marks the sink closed.
func (s *eventLogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
