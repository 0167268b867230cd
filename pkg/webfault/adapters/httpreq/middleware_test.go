package httpreq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// captureSink records delivered reports for assertions.
type captureSink struct {
	mu      sync.Mutex
	reports []*webfault.Report
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Send(ctx context.Context, report *webfault.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *captureSink) Close() error { return nil }

func (s *captureSink) delivered() []*webfault.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*webfault.Report(nil), s.reports...)
}

func newTestHandler(sink webfault.Sink) *webfault.Handler {
	settings := webfault.DefaultSettings()
	settings.IgnoreDebugErrors = false
	return webfault.NewHandler(
		webfault.WithSettings(settings),
		webfault.WithSink(sink),
	)
}

func TestMiddleware_CapturesPanic(t *testing.T) {
	sink := &captureSink{}
	h := newTestHandler(sink)
	wrapped := Middleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("checkout exploded")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "http://shop.example.com/checkout?step=2", nil)
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	reports := sink.delivered()
	if len(reports) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(reports))
	}
	if !strings.Contains(reports[0].Message, "checkout exploded") {
		t.Errorf("Message = %q", reports[0].Message)
	}
	if !strings.Contains(reports[0].Text, "http://shop.example.com/checkout?step=2") {
		t.Error("report must carry the request URL")
	}
}

func TestMiddleware_SummaryInResponseBody(t *testing.T) {
	sink := &captureSink{}
	h := newTestHandler(sink) // LogToUI defaults on
	wrapped := Middleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("visible failure")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "http://shop.example.com/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "visible failure") {
		t.Errorf("summary body must name the error:\n%s", body)
	}
	if !strings.Contains(body, "--- Exception Information ---") {
		t.Error("summary body must include the detailed report")
	}
}

func TestMiddleware_GenericBodyWhenUIDisabled(t *testing.T) {
	sink := &captureSink{}
	settings := webfault.DefaultSettings()
	settings.IgnoreDebugErrors = false
	settings.LogToUI = false
	h := webfault.NewHandler(webfault.WithSettings(settings), webfault.WithSink(sink))
	wrapped := Middleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("hidden failure")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "http://shop.example.com/", nil))

	if strings.Contains(rec.Body.String(), "hidden failure") {
		t.Error("error details must not reach the client with LogToUI off")
	}
	if rec.Body.String() != "An internal error occurred.\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if len(sink.delivered()) != 1 {
		t.Error("the report must still be delivered")
	}
}

func TestMiddleware_PassesThroughWithoutPanic(t *testing.T) {
	sink := &captureSink{}
	h := newTestHandler(sink)
	wrapped := Middleware(h)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if provider, ok := webfault.RequestContextFromContext(r.Context()); !ok || provider == nil {
			t.Error("downstream handlers must see the request context provider")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "http://shop.example.com/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want passthrough", rec.Code)
	}
	if len(sink.delivered()) != 0 {
		t.Error("no panic means no report")
	}
}

func TestMiddleware_SessionStoreReachesReport(t *testing.T) {
	sink := &captureSink{}
	h := newTestHandler(sink)
	wrapped := Middleware(h, WithProviderOptions(
		WithSession(MapStore{"user_id": 42}),
	))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("GET", "http://shop.example.com/", nil))

	reports := sink.delivered()
	if len(reports) != 1 {
		t.Fatal("expected one delivery")
	}
	if !strings.Contains(reports[0].Text, "user_id") {
		t.Error("session state must reach the report")
	}
}

func TestReportError(t *testing.T) {
	sink := &captureSink{}
	h := newTestHandler(sink)
	req := httptest.NewRequest("GET", "http://shop.example.com/orders/17", nil)

	ReportError(h, req, errors.New("order lookup failed"))

	reports := sink.delivered()
	if len(reports) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(reports))
	}
	if reports[0].Message != "order lookup failed" {
		t.Errorf("Message = %q", reports[0].Message)
	}
	if !strings.Contains(reports[0].Text, "http://shop.example.com/orders/17") {
		t.Error("report must carry the request URL")
	}
}

func TestReportError_NilError(t *testing.T) {
	sink := &captureSink{}
	h := newTestHandler(sink)

	ReportError(h, httptest.NewRequest("GET", "http://shop.example.com/", nil), nil)

	if len(sink.delivered()) != 0 {
		t.Error("nil error must be a no-op")
	}
}
