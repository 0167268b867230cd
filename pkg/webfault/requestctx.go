// requestctx.go defines the capability through which the pipeline observes
// request-scoped state without depending on any particular web framework.

package webfault

// RequestContextProvider supplies key-value snapshots of ambient request
// state. A non-web embedding reports Available() == false and the
// snapshotter falls back to process-level facts.
//
// Each collection method returns its entries in a stable order and false
// when the collection does not exist in this embedding.
type RequestContextProvider interface {
	// Available reports whether a request is in flight.
	Available() bool

	// CurrentURL returns the full URL of the request being served.
	CurrentURL() string

	// ServerVariable returns a single named server variable, such as
	// REMOTE_ADDR or LOGON_USER.
	ServerVariable(name string) (string, bool)

	// QueryString returns the parsed query string parameters.
	QueryString() ([]SnapshotEntry, bool)

	// Form returns the posted form fields.
	Form() ([]SnapshotEntry, bool)

	// Cookies returns the request cookies.
	Cookies() ([]SnapshotEntry, bool)

	// Session returns the caller's session state.
	Session() ([]SnapshotEntry, bool)

	// ApplicationState returns application-wide shared state.
	ApplicationState() ([]SnapshotEntry, bool)

	// Cache returns the application cache contents.
	Cache() ([]SnapshotEntry, bool)

	// ServerVariables returns all server variables.
	ServerVariables() ([]SnapshotEntry, bool)
}
