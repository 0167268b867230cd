// middleware.go captures panics from downstream http.Handlers and routes
// them through the webfault pipeline.

package httpreq

import (
	"net/http"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	providerOpts []ProviderOption
}

// WithProviderOptions passes options through to the per-request provider,
// typically to wire session or cache stores.
func WithProviderOptions(opts ...ProviderOption) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.providerOpts = append(c.providerOpts, opts...)
	}
}

// Middleware wraps an http.Handler: every request gets a request context
// provider attached to its context, and a panic from the wrapped handler is
// captured, reported, and answered with a 500. When LogToUI is enabled the
// 500 body is the delivery summary; otherwise a terse generic line.
//
// The middleware never re-panics and never lets a reporting failure reach
// the client.
func Middleware(handler *webfault.Handler, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provider := NewProvider(r, cfg.providerOpts...)
			ctx := webfault.WithRequestContext(r.Context(), provider)
			r = r.WithContext(ctx)

			defer func() {
				p := recover()
				if p == nil {
					return
				}
				err := &webfault.PanicError{
					Value:  p,
					Frames: webfault.CaptureFrames(3),
				}
				summary := handler.HandleWithSummary(ctx, err)

				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				if summary != "" {
					_, _ = w.Write([]byte(summary))
				} else {
					_, _ = w.Write([]byte("An internal error occurred.\n"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// ReportError reports a non-panic error that surfaced while serving r. The
// request's context provider is attached so the report carries the request
// state. Fire-and-forget, like Handle.
func ReportError(handler *webfault.Handler, r *http.Request, err error) {
	if err == nil {
		return
	}
	wrapped := &webfault.RequestError{
		Err:    err,
		Frames: webfault.CaptureFrames(1),
	}
	ctx := webfault.WithRequestContext(r.Context(), NewProvider(r))
	handler.Handle(ctx, wrapped)
}
