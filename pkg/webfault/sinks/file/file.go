// Package file provides a sink that appends rendered reports to a log file.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// reportSeparator divides consecutive reports in the log file.
const reportSeparator = "\n------------------------------------------------------------\n\n"

// FileSinkOption configures the file sink.
type FileSinkOption func(*fileSinkConfig)

type fileSinkConfig struct {
	perm os.FileMode
}

// WithFileMode sets the mode used when the log file is created
// (default: 0644).
func WithFileMode(perm os.FileMode) FileSinkOption {
	return func(c *fileSinkConfig) {
		if perm != 0 {
			c.perm = perm
		}
	}
}

// fileSink appends reports to a file, creating it and its directory on
// first write.
type fileSink struct {
	path   string
	perm   os.FileMode
	mu     sync.Mutex
	closed bool
}

// NewFileSink creates a sink that appends to the given path.
func NewFileSink(path string, opts ...FileSinkOption) webfault.Sink {
	cfg := &fileSinkConfig{perm: 0o644}
	for _, opt := range opts {
		opt(cfg)
	}
	return &fileSink{path: path, perm: cfg.perm}
}

// Name identifies the sink.
func (s *fileSink) Name() string {
	return webfault.ChannelFile
}

// Send appends the rendered report. Each write opens, appends, and closes
// the file so a crash between reports never holds the handle.
func (s *fileSink) Send(ctx context.Context, report *webfault.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("file sink is closed")
	}
	if s.path == "" {
		return errors.New("no log file configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.perm)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(report.Text + reportSeparator); err != nil {
		return fmt.Errorf("append report: %w", err)
	}
	return nil
}

// Close marks the sink closed.
func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
