// dispatch.go fans a rendered report out to the configured sinks with
// per-sink failure isolation and a bounded per-sink timeout.

package webfault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultDispatchTimeout bounds each sink invocation so one slow sink cannot
// block delivery to the others indefinitely.
const DefaultDispatchTimeout = 10 * time.Second

// DispatcherConfig controls delivery.
type DispatcherConfig struct {
	// Timeout is the per-sink delivery deadline (default: 10s).
	Timeout time.Duration

	// Logger receives internal diagnostics. Nil means discard: the
	// pipeline's own chatter must never surface through the application.
	Logger *logrus.Logger
}

// Dispatcher delivers reports to sinks.
type Dispatcher struct {
	timeout time.Duration
	log     *logrus.Logger
}

// NewDispatcher creates a dispatcher with the given configuration.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultDispatchTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Dispatcher{timeout: cfg.Timeout, log: log}
}

// Deliver invokes each sink independently and returns the per-sink outcome
// map. A sink's error, panic, or timeout is recorded under its name and does
// not prevent the remaining sinks from being attempted. Deliver itself never
// panics and never returns until every sink was tried or timed out.
func (d *Dispatcher) Deliver(ctx context.Context, report *Report, sinks []Sink) (outcome DeliveryOutcome) {
	outcome = make(DeliveryOutcome, len(sinks))
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("panic", r).Error("dispatch failed")
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		err := d.deliverOne(ctx, sink, report)
		outcome[sink.Name()] = err
		if err != nil {
			d.log.WithField("sink", sink.Name()).WithError(err).Warn("sink delivery failed")
		}
	}
	return outcome
}

// deliverOne runs a single sink under the per-sink deadline, converting a
// panic into that sink's error. The sink goroutine is abandoned on timeout;
// sinks are expected to honor the context, and one that does not leaks its
// goroutine rather than stalling the pipeline.
func (d *Dispatcher) deliverOne(ctx context.Context, sink Sink, report *Report) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sink panicked: %v", r)
			}
		}()
		done <- sink.Send(ctx, report)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("delivery timed out after %s", d.timeout)
	}
}

// CloseSinks closes every sink, aggregating errors.
func CloseSinks(sinks []Sink) error {
	var errs []error
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// discardLogger returns a logger whose output is dropped.
func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
