package noop

import (
	"context"
	"testing"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

func TestNoopSink(t *testing.T) {
	sink := NewNoopSink()

	if sink.Name() != "noop" {
		t.Errorf("Name = %q", sink.Name())
	}
	if err := sink.Send(context.Background(), &webfault.Report{}); err != nil {
		t.Errorf("Send: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
