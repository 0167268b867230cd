// provider.go adapts *http.Request to the RequestContextProvider capability.

// Package httpreq integrates the webfault pipeline with net/http: a
// RequestContextProvider built from the active request, and middleware that
// captures panics from downstream handlers.
package httpreq

import (
	"net"
	"net/http"
	"sort"
	"strings"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// StateStore exposes a request-adjacent state collection (session,
// application state, cache) to the snapshotter. Implementations return
// entries in a stable order.
type StateStore interface {
	Entries() []webfault.SnapshotEntry
}

// MapStore is a StateStore over a plain map, ordered by key.
type MapStore map[string]any

// Entries implements StateStore.
func (m MapStore) Entries() []webfault.SnapshotEntry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]webfault.SnapshotEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, webfault.SnapshotEntry{Key: k, Value: m[k]})
	}
	return out
}

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithSession attaches the caller's session state.
func WithSession(store StateStore) ProviderOption {
	return func(p *Provider) {
		p.session = store
	}
}

// WithApplicationState attaches application-wide shared state.
func WithApplicationState(store StateStore) ProviderOption {
	return func(p *Provider) {
		p.appState = store
	}
}

// WithCache attaches the application cache.
func WithCache(store StateStore) ProviderOption {
	return func(p *Provider) {
		p.cache = store
	}
}

// Provider implements webfault.RequestContextProvider over one request.
type Provider struct {
	req      *http.Request
	session  StateStore
	appState StateStore
	cache    StateStore
}

var _ webfault.RequestContextProvider = (*Provider)(nil)

// NewProvider creates a provider for the given request.
func NewProvider(r *http.Request, opts ...ProviderOption) *Provider {
	p := &Provider{req: r}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Available reports whether a request is in flight.
func (p *Provider) Available() bool {
	return p.req != nil
}

// CurrentURL reconstructs the full request URL from the scheme, host (with
// its port when non-standard), path, and query string.
func (p *Provider) CurrentURL() string {
	r := p.req
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := r.Host
	// Strip the port when it is the scheme's default.
	if h, port, err := net.SplitHostPort(host); err == nil {
		if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
			host = h
		}
	}
	return scheme + "://" + host + r.URL.RequestURI()
}

// ServerVariable resolves one CGI-style server variable.
func (p *Provider) ServerVariable(name string) (string, bool) {
	r := p.req
	switch name {
	case "REQUEST_METHOD":
		return r.Method, true
	case "REMOTE_ADDR":
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host, true
		}
		return r.RemoteAddr, true
	case "REMOTE_HOST":
		// Reverse lookup is deliberately skipped; the address stands in.
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host, true
		}
		return r.RemoteAddr, true
	case "LOGON_USER":
		if user, _, ok := r.BasicAuth(); ok {
			return user, true
		}
		return "", false
	case "SERVER_NAME":
		if host, _, err := net.SplitHostPort(r.Host); err == nil {
			return host, true
		}
		return r.Host, true
	case "QUERY_STRING":
		return r.URL.RawQuery, true
	case "PATH_INFO":
		return r.URL.Path, true
	case "SERVER_PROTOCOL":
		return r.Proto, true
	}
	if strings.HasPrefix(name, "HTTP_") {
		header := strings.ReplaceAll(strings.TrimPrefix(name, "HTTP_"), "_", "-")
		if v := p.req.Header.Get(header); v != "" {
			return v, true
		}
	}
	return "", false
}

// QueryString returns the parsed query parameters, ordered by key.
func (p *Provider) QueryString() ([]webfault.SnapshotEntry, bool) {
	return valuesEntries(p.req.URL.Query()), true
}

// Form returns the posted form fields, ordered by key. The body is parsed
// on first use; a parse failure yields an empty collection rather than an
// error, because the snapshot must not disturb the request.
func (p *Provider) Form() ([]webfault.SnapshotEntry, bool) {
	if p.req.PostForm == nil {
		_ = p.req.ParseForm()
	}
	return valuesEntries(p.req.PostForm), true
}

// Cookies returns the request cookies in header order.
func (p *Provider) Cookies() ([]webfault.SnapshotEntry, bool) {
	cookies := p.req.Cookies()
	out := make([]webfault.SnapshotEntry, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, webfault.SnapshotEntry{Key: c.Name, Value: c.Value})
	}
	return out, true
}

// Session returns the attached session state, absent when none was wired.
func (p *Provider) Session() ([]webfault.SnapshotEntry, bool) {
	return storeEntries(p.session)
}

// ApplicationState returns the attached application state.
func (p *Provider) ApplicationState() ([]webfault.SnapshotEntry, bool) {
	return storeEntries(p.appState)
}

// Cache returns the attached cache contents.
func (p *Provider) Cache() ([]webfault.SnapshotEntry, bool) {
	return storeEntries(p.cache)
}

// ServerVariables returns the synthesized CGI-style variable set: the
// standard request facts plus one HTTP_ entry per header, ordered.
func (p *Provider) ServerVariables() ([]webfault.SnapshotEntry, bool) {
	r := p.req

	var out []webfault.SnapshotEntry
	add := func(name string) {
		v, _ := p.ServerVariable(name)
		out = append(out, webfault.SnapshotEntry{Key: name, Value: v})
	}
	add("REQUEST_METHOD")
	add("SERVER_NAME")
	add("SERVER_PROTOCOL")
	add("PATH_INFO")
	add("QUERY_STRING")
	add("REMOTE_ADDR")
	add("LOGON_USER")

	headers := make([]string, 0, len(r.Header))
	for name := range r.Header {
		headers = append(headers, name)
	}
	sort.Strings(headers)
	for _, name := range headers {
		key := "HTTP_" + strings.ReplaceAll(strings.ToUpper(name), "-", "_")
		out = append(out, webfault.SnapshotEntry{Key: key, Value: r.Header.Get(name)})
	}
	return out, true
}

// valuesEntries flattens url.Values into ordered entries, joining repeated
// keys with commas.
func valuesEntries(values map[string][]string) []webfault.SnapshotEntry {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]webfault.SnapshotEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, webfault.SnapshotEntry{Key: k, Value: strings.Join(values[k], ", ")})
	}
	return out
}

// storeEntries reads an optional StateStore.
func storeEntries(store StateStore) ([]webfault.SnapshotEntry, bool) {
	if store == nil {
		return nil, false
	}
	return store.Entries(), true
}
