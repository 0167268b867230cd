// Package webfault captures unhandled errors in web applications, enriches
// them with diagnostic context, and delivers the rendered report to
// configurable sinks.
//
// The pipeline turns a raw error plus ambient request and process state into
// a single human-readable diagnostic report, then fans it out to each enabled
// sink with per-sink failure isolation. A failure while reporting an error
// must never itself become an error the application sees.
//
// # Core Components
//
// The library is organized around these concepts:
//
//   - Report: the rendered diagnostic text plus the identity fields sinks need
//   - Handler: the public entry point; Handle never panics and returns nothing
//   - Composer: unwraps nested errors and renders the chain innermost-first
//   - Snapshotter: captures machine, identity, and request-scoped state
//   - Policy: decides whether an error should be suppressed before or after rendering
//   - Dispatcher: invokes each sink independently and records per-sink outcomes
//   - Sink: a delivery channel (event log, file, email, database)
//
// # Quick Start
//
// For a web application:
//
//	handler := webfault.NewHandler(
//	    webfault.WithConfigurationSource(src),
//	    webfault.WithSink(file.NewFileSink("/var/log/app.err")),
//	)
//	mux := httpreq.Middleware(handler)(appMux)
//
// For standalone usage:
//
//	handler := webfault.NewHandler(webfault.WithSettings(settings))
//	defer webfault.Recover(ctx, handler)
//
// # Design Principles
//
//   - Nothing raised while handling an error may escape Handle; the last resort is to swallow silently
//   - Composition failures degrade to placeholder text, never abort the report
//   - Suppression policy fails open: a policy evaluation error means "report it"
//   - External dependencies only in sink, adapter, and config packages
package webfault
