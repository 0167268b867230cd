// Package noop provides a sink that discards all reports.
// Useful for tests and for disabling delivery without rewiring the handler.
package noop

import (
	"context"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// noopSink discards all reports.
type noopSink struct{}

// NewNoopSink creates a sink that does nothing.
func NewNoopSink() webfault.Sink {
	return &noopSink{}
}

// Name identifies the sink.
func (s *noopSink) Name() string {
	return "noop"
}

// Send discards the report.
func (s *noopSink) Send(ctx context.Context, report *webfault.Report) error {
	return nil
}

// Close is a no-op.
func (s *noopSink) Close() error {
	return nil
}
