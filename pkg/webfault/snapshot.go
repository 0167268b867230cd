// snapshot.go captures machine, identity, and request-scoped state at error
// time. Nothing in this file may panic: every per-field failure degrades to
// an inline placeholder in that field's slot.

package webfault

import (
	"fmt"
	"net"
	"os"
	"os/user"
	"strings"
)

// Section names, in capture order.
const (
	SectionQueryString     = "QueryString"
	SectionForm            = "Form"
	SectionCookies         = "Cookies"
	SectionSession         = "Session"
	SectionCache           = "Cache"
	SectionApplication     = "Application"
	SectionServerVariables = "ServerVariables"
)

// DefaultViewStateKey is the form field captured with priority regardless of
// section filters.
const DefaultViewStateKey = "__VIEWSTATE"

// SectionFilter controls what a single snapshot section captures.
type SectionFilter struct {
	// Disabled suppresses the section entirely.
	Disabled bool

	// OmitEmpty drops entries whose rendered value is empty.
	OmitEmpty bool

	// OmitKeyPattern drops entries whose key contains this substring.
	OmitKeyPattern string
}

// SnapshotterConfig controls snapshot capture.
type SnapshotterConfig struct {
	// Filters maps section name to its filter. Absent sections capture
	// everything.
	Filters map[string]SectionFilter

	// ViewStateKey is the form key always captured and extracted as a
	// prioritized report field (default: __VIEWSTATE).
	ViewStateKey string

	// Masker redacts sensitive entries. Nil disables masking.
	Masker *Masker
}

// DefaultSnapshotterConfig returns defaults: sensitive keys masked, empty
// server variables dropped along with the ALL_* header dumps they duplicate.
func DefaultSnapshotterConfig() SnapshotterConfig {
	return SnapshotterConfig{
		Filters: map[string]SectionFilter{
			SectionServerVariables: {OmitEmpty: true, OmitKeyPattern: "ALL_"},
		},
		ViewStateKey: DefaultViewStateKey,
		Masker:       NewMasker(DefaultMaskerConfig()),
	}
}

// Snapshotter captures ContextSnapshots.
type Snapshotter struct {
	cfg SnapshotterConfig
}

// NewSnapshotter creates a snapshotter with the given configuration.
func NewSnapshotter(cfg SnapshotterConfig) *Snapshotter {
	if cfg.ViewStateKey == "" {
		cfg.ViewStateKey = DefaultViewStateKey
	}
	return &Snapshotter{cfg: cfg}
}

// Snapshot captures process and machine facts and, when a request context is
// available, the request-scoped collections. Never panics.
func (s *Snapshotter) Snapshot(provider RequestContextProvider) (snap *ContextSnapshot) {
	snap = &ContextSnapshot{}
	defer func() {
		// A provider failure mid-capture leaves a partial snapshot; the
		// facts gathered so far still render.
		recover()
	}()

	snap.MachineName = machineName()
	snap.ProcessUser = processIdentity()
	snap.LocalIP = localIPv4()

	if provider == nil || !provider.Available() {
		return snap
	}

	snap.URL = safeString(provider.CurrentURL)
	snap.RemoteUser = serverVariableOr(provider, "LOGON_USER", "")
	snap.RemoteAddr = serverVariableOr(provider, "REMOTE_ADDR", "")
	snap.RemoteHost = serverVariableOr(provider, "REMOTE_HOST", "")

	type collection struct {
		name string
		get  func() ([]SnapshotEntry, bool)
	}
	collections := []collection{
		{SectionQueryString, provider.QueryString},
		{SectionForm, provider.Form},
		{SectionCookies, provider.Cookies},
		{SectionSession, provider.Session},
		{SectionCache, provider.Cache},
		{SectionApplication, provider.ApplicationState},
		{SectionServerVariables, provider.ServerVariables},
	}
	for _, c := range collections {
		section, viewState := s.captureSection(c.name, c.get)
		if viewState != "" {
			snap.ViewState = viewState
		}
		if section != nil {
			snap.Sections = append(snap.Sections, *section)
		}
	}
	return snap
}

// captureSection captures one collection, applying the section's filter and
// masking. The view-state key bypasses every filter and is returned
// separately. A collection whose accessor panics degrades to a single
// inline error entry.
func (s *Snapshotter) captureSection(name string, get func() ([]SnapshotEntry, bool)) (section *SnapshotSection, viewState string) {
	filter := s.cfg.Filters[name]
	if filter.Disabled {
		return nil, ""
	}

	entries, ok := safeEntries(get)
	if !ok {
		return nil, ""
	}

	out := &SnapshotSection{Name: name}
	for _, e := range entries {
		value := stringifyValue(e.Value)

		if e.Key == s.cfg.ViewStateKey {
			viewState = value
			out.Entries = append(out.Entries, SnapshotEntry{Key: e.Key, Value: value})
			continue
		}
		if filter.OmitEmpty && value == "" {
			continue
		}
		if filter.OmitKeyPattern != "" && strings.Contains(e.Key, filter.OmitKeyPattern) {
			continue
		}
		if s.cfg.Masker != nil {
			value = s.cfg.Masker.Mask(e.Key, value)
		}
		out.Entries = append(out.Entries, SnapshotEntry{Key: e.Key, Value: value})
	}
	return out, viewState
}

// RenderSystem produces the system-facts text block: process and machine
// identity plus the request's core fields when one was in flight. The
// view-state value renders here, as a prioritized field, not buried in its
// collection.
func (snap *ContextSnapshot) RenderSystem() string {
	var b strings.Builder

	writeField := func(label, value string) {
		fmt.Fprintf(&b, "%-30s %s\n", label, value)
	}
	writeField("MachineName", snap.MachineName)
	writeField("Process Identity", snap.ProcessUser)
	writeField("Local IP", snap.LocalIP)

	if snap.HasRequest() {
		writeField("URL", snap.URL)
		writeField("Remote User", snap.RemoteUser)
		writeField("Remote Address", snap.RemoteAddr)
		writeField("Remote Host", snap.RemoteHost)
		if snap.ViewState != "" {
			writeField("ViewState", snap.ViewState)
		}
	}
	return b.String()
}

// RenderCollections produces the request-collection text block, one section
// at a time with keys padded to 30 characters. Empty when the snapshot was
// taken outside a request.
func (snap *ContextSnapshot) RenderCollections() string {
	var b strings.Builder
	for _, section := range snap.Sections {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(section.Name)
		b.WriteString("\n")
		for _, e := range section.Entries {
			fmt.Fprintf(&b, "    %-30s %s\n", e.Key, renderedEntryValue(e.Value))
		}
	}
	return b.String()
}

// renderedEntryValue renders an already-captured entry value. Capture stores
// strings, but a snapshot built by hand may still carry raw values.
func renderedEntryValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return stringifyValue(v)
}

// stringifyValue renders an arbitrary value: "(Null)" for nil, the type name
// in parentheses when stringification panics. String and Error methods are
// invoked directly rather than through fmt.Sprint, which would absorb their
// panics and embed a %!v(PANIC=...) marker instead of reaching the recover.
func stringifyValue(v any) (s string) {
	if v == nil {
		return "(Null)"
	}
	defer func() {
		if recover() != nil {
			s = fmt.Sprintf("(%T)", v)
		}
	}()
	switch typed := v.(type) {
	case error:
		return typed.Error()
	case fmt.Stringer:
		return typed.String()
	}
	return fmt.Sprint(v)
}

// safeEntries invokes a collection accessor, degrading a panic to a single
// inline error entry rather than aborting the snapshot.
func safeEntries(get func() ([]SnapshotEntry, bool)) (entries []SnapshotEntry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			entries = []SnapshotEntry{{Key: "(error)", Value: fmt.Sprintf("collection unavailable: %v", r)}}
			ok = true
		}
	}()
	return get()
}

// safeString invokes a string accessor, degrading a panic to a placeholder.
func safeString(get func() string) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("(error: %v)", r)
		}
	}()
	return get()
}

// serverVariableOr reads a server variable with a fallback, absorbing panics.
func serverVariableOr(provider RequestContextProvider, name, fallback string) (value string) {
	defer func() {
		if recover() != nil {
			value = fallback
		}
	}()
	if v, ok := provider.ServerVariable(name); ok {
		return v
	}
	return fallback
}

// machineName returns the hostname. Empty is acceptable.
func machineName() string {
	hostname, _ := os.Hostname()
	return hostname
}

// processIdentity resolves the identity the process runs as, falling back to
// an environment-derived "domain\user" string when the platform lookup fails.
func processIdentity() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USERNAME"); name != "" {
		if domain := os.Getenv("USERDOMAIN"); domain != "" {
			return domain + "\\" + name
		}
		return name
	}
	return os.Getenv("USER")
}

// localIPv4 returns the first non-loopback IPv4 address bound to the host.
func localIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return "127.0.0.1"
}
