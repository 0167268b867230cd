// sink.go defines the Sink interface for report delivery channels.

package webfault

import "context"

// Sink is one delivery channel for rendered reports.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Name identifies the sink in delivery outcomes and summaries.
	Name() string

	// Send delivers a rendered report. Called once per handled error.
	// The context carries the dispatcher's per-sink deadline.
	Send(ctx context.Context, report *Report) error

	// Close releases resources held by the sink.
	// After Close is called, Send should return errors.
	Close() error
}
