// handler.go provides the public entry point for the pipeline. Handle is
// fire-and-forget: it returns nothing and never panics, because it runs
// inside the application's own error handling where a second failure would
// be fatal.

package webfault

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Channel names used to match registered sinks against settings flags.
const (
	ChannelEventLog = "eventlog"
	ChannelFile     = "file"
	ChannelEmail    = "email"
	ChannelDatabase = "database"
)

// HandlerOption configures a Handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	source           ConfigurationSource
	settings         *Settings
	sinks            []Sink
	composer         *Composer
	policy           *Policy
	logger           *logrus.Logger
	timeout          time.Duration
	debuggerAttached bool
	provider         RequestContextProvider
}

// WithConfigurationSource sets the source settings are lazily loaded from.
func WithConfigurationSource(src ConfigurationSource) HandlerOption {
	return func(c *handlerConfig) {
		c.source = src
	}
}

// WithSettings sets pre-loaded settings, bypassing the lazy load.
func WithSettings(s *Settings) HandlerOption {
	return func(c *handlerConfig) {
		c.settings = s
	}
}

// WithSink registers a sink. May be given multiple times.
func WithSink(sink Sink) HandlerOption {
	return func(c *handlerConfig) {
		if sink != nil {
			c.sinks = append(c.sinks, sink)
		}
	}
}

// WithComposer replaces the default composer.
func WithComposer(composer *Composer) HandlerOption {
	return func(c *handlerConfig) {
		c.composer = composer
	}
}

// WithPolicy replaces the settings-derived suppression policy.
func WithPolicy(policy *Policy) HandlerOption {
	return func(c *handlerConfig) {
		c.policy = policy
	}
}

// WithLogger sets the internal diagnostics logger. The default discards.
func WithLogger(log *logrus.Logger) HandlerOption {
	return func(c *handlerConfig) {
		c.logger = log
	}
}

// WithDispatchTimeout sets the per-sink delivery deadline.
func WithDispatchTimeout(d time.Duration) HandlerOption {
	return func(c *handlerConfig) {
		c.timeout = d
	}
}

// WithDebuggerAttached marks the process as running under a debugger for
// the IgnoreDebugErrors check.
func WithDebuggerAttached(attached bool) HandlerOption {
	return func(c *handlerConfig) {
		c.debuggerAttached = attached
	}
}

// WithRequestContextProvider fixes the request context provider instead of
// reading it from the incoming context.
func WithRequestContextProvider(p RequestContextProvider) HandlerOption {
	return func(c *handlerConfig) {
		c.provider = p
	}
}

// Handler is the pipeline entry point. Safe for concurrent use; settings
// load at most once.
type Handler struct {
	lazy             lazySettings
	eager            *Settings
	sinks            []Sink
	composer         *Composer
	policyOverride   *Policy
	dispatcher       *Dispatcher
	log              *logrus.Logger
	debuggerAttached bool
	provider         RequestContextProvider
}

// NewHandler creates a handler with the given options.
func NewHandler(opts ...HandlerOption) *Handler {
	cfg := &handlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger()
	}
	composer := cfg.composer
	if composer == nil {
		composer = NewComposer(ComposerConfig{
			SuppressFramePattern: "web-fault-observe/pkg/webfault",
		})
	}

	return &Handler{
		lazy:             lazySettings{src: cfg.source},
		eager:            cfg.settings,
		sinks:            cfg.sinks,
		composer:         composer,
		policyOverride:   cfg.policy,
		dispatcher:       NewDispatcher(DispatcherConfig{Timeout: cfg.timeout, Logger: log}),
		log:              log,
		debuggerAttached: cfg.debuggerAttached,
		provider:         cfg.provider,
	}
}

// Settings returns the handler's settings, loading them on first use.
func (h *Handler) Settings() *Settings {
	if h.eager != nil {
		return h.eager
	}
	return h.lazy.get()
}

// Handle runs the full pipeline for an error: suppression checks, report
// composition, the rendered-text check, then delivery. It returns nothing
// and nothing raised inside it can escape; the absolute last resort is to
// swallow silently.
func (h *Handler) Handle(ctx context.Context, err error) {
	defer func() {
		recover() // nothing may escape
	}()
	h.handle(ctx, err)
}

// HandleWithSummary runs the pipeline and returns the user-facing summary
// text when LogToUI is enabled, empty otherwise. Like Handle, it never
// panics.
func (h *Handler) HandleWithSummary(ctx context.Context, err error) (summary string) {
	defer func() {
		recover()
	}()
	settings, report, outcome := h.handle(ctx, err)
	if report == nil || settings == nil || !settings.LogToUI {
		return ""
	}
	return RenderSummary(report, outcome, settings)
}

// handle is the shared pipeline body. A nil report in the return values
// means the error was suppressed or absent.
func (h *Handler) handle(ctx context.Context, err error) (settings *Settings, report *Report, outcome DeliveryOutcome) {
	if err == nil {
		return nil, nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	settings = h.Settings()
	policy := h.policy(settings)

	provider := h.provider
	if provider == nil {
		provider, _ = RequestContextFromContext(ctx)
	}

	if policy.ShouldIgnore(err, requestIsLocal(provider), h.debuggerAttached) {
		h.log.WithError(err).Debug("suppressed before rendering")
		return settings, nil, nil
	}

	report = h.composer.Compose(err, provider, settings)

	if policy.ShouldIgnoreRendered(report.Text) {
		h.log.WithField("report_id", report.ReportID).Debug("suppressed by pattern")
		return settings, nil, nil
	}

	outcome = h.dispatcher.Deliver(ctx, report, h.enabledSinks(settings))
	return settings, report, outcome
}

// policy returns the override policy or one derived from settings.
func (h *Handler) policy(settings *Settings) *Policy {
	if h.policyOverride != nil {
		return h.policyOverride
	}
	return NewPolicy(PolicyFromSettings(settings))
}

// enabledSinks filters registered sinks against the settings flags. Sinks
// with names outside the known channels are always delivered to.
func (h *Handler) enabledSinks(settings *Settings) []Sink {
	var out []Sink
	for _, sink := range h.sinks {
		switch sink.Name() {
		case ChannelEventLog:
			if !settings.LogToEventLog {
				continue
			}
		case ChannelFile:
			if !settings.LogToFile {
				continue
			}
		case ChannelEmail:
			if !settings.LogToEmail {
				continue
			}
		case ChannelDatabase:
			if !settings.LogToSQL {
				continue
			}
		}
		out = append(out, sink)
	}
	return out
}

// Close closes every registered sink.
func (h *Handler) Close() error {
	return CloseSinks(h.sinks)
}

// requestIsLocal reports whether the current request, if any, originates
// from the local host. Absorbs provider failures: an unknown origin is
// treated as remote so real errors are not dropped.
func requestIsLocal(provider RequestContextProvider) (local bool) {
	defer func() {
		if recover() != nil {
			local = false
		}
	}()
	if provider == nil || !provider.Available() {
		return false
	}
	if addr, ok := provider.ServerVariable("REMOTE_ADDR"); ok && IsLocalHostAddr(addr) {
		return true
	}
	if host, ok := provider.ServerVariable("REMOTE_HOST"); ok && IsLocalHostAddr(host) {
		return true
	}
	return false
}
