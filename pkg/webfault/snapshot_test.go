package webfault

import (
	"fmt"
	"strings"
	"testing"
)

// fakeProvider implements RequestContextProvider for tests.
type fakeProvider struct {
	available  bool
	url        string
	serverVars map[string]string
	query      []SnapshotEntry
	form       []SnapshotEntry
	cookies    []SnapshotEntry
	session    []SnapshotEntry
	hasSession bool
	panicOnURL bool
}

func (p *fakeProvider) Available() bool { return p.available }

func (p *fakeProvider) CurrentURL() string {
	if p.panicOnURL {
		panic("no url")
	}
	return p.url
}

func (p *fakeProvider) ServerVariable(name string) (string, bool) {
	v, ok := p.serverVars[name]
	return v, ok
}

func (p *fakeProvider) QueryString() ([]SnapshotEntry, bool)      { return p.query, p.query != nil }
func (p *fakeProvider) Form() ([]SnapshotEntry, bool)             { return p.form, p.form != nil }
func (p *fakeProvider) Cookies() ([]SnapshotEntry, bool)          { return p.cookies, p.cookies != nil }
func (p *fakeProvider) Session() ([]SnapshotEntry, bool)          { return p.session, p.hasSession }
func (p *fakeProvider) ApplicationState() ([]SnapshotEntry, bool) { return nil, false }
func (p *fakeProvider) Cache() ([]SnapshotEntry, bool)            { return nil, false }

func (p *fakeProvider) ServerVariables() ([]SnapshotEntry, bool) {
	if p.serverVars == nil {
		return nil, false
	}
	var out []SnapshotEntry
	for _, k := range []string{"REMOTE_ADDR", "LOGON_USER", "ALL_RAW", "EMPTY_VAR"} {
		if v, ok := p.serverVars[k]; ok {
			out = append(out, SnapshotEntry{Key: k, Value: v})
		}
	}
	return out, true
}

// stringerBomb panics when stringified.
type stringerBomb struct{}

func (stringerBomb) String() string { panic("cannot render") }

// errorBomb panics when its message is read.
type errorBomb struct{}

func (errorBomb) Error() string { panic("cannot render") }

// okStringer stringifies normally.
type okStringer struct{}

func (okStringer) String() string { return "rendered" }

func TestSnapshot_WithoutRequestContext(t *testing.T) {
	s := NewSnapshotter(DefaultSnapshotterConfig())

	snap := s.Snapshot(nil)

	if snap.HasRequest() {
		t.Error("snapshot without provider must not claim request state")
	}
	if snap.LocalIP == "" {
		t.Error("local IP should always have a value")
	}

	text := snap.RenderSystem()
	if !strings.Contains(text, "MachineName") || !strings.Contains(text, "Process Identity") {
		t.Errorf("system block missing process facts:\n%s", text)
	}
	if snap.RenderCollections() != "" {
		t.Error("no collections expected without a request")
	}
}

func TestSnapshot_CapturesRequestCollections(t *testing.T) {
	provider := &fakeProvider{
		available: true,
		url:       "https://shop.example.com/checkout?step=2",
		serverVars: map[string]string{
			"REMOTE_ADDR": "203.0.113.9",
			"LOGON_USER":  "jordan",
		},
		query:   []SnapshotEntry{{Key: "step", Value: "2"}},
		cookies: []SnapshotEntry{{Key: "cart", Value: "abc123"}},
	}
	s := NewSnapshotter(DefaultSnapshotterConfig())

	snap := s.Snapshot(provider)

	if snap.URL != provider.url {
		t.Errorf("URL = %q, want %q", snap.URL, provider.url)
	}
	if snap.RemoteUser != "jordan" || snap.RemoteAddr != "203.0.113.9" {
		t.Errorf("remote identity not captured: %+v", snap)
	}

	text := snap.RenderCollections()
	if !strings.Contains(text, "QueryString") || !strings.Contains(text, "Cookies") {
		t.Errorf("sections missing:\n%s", text)
	}
	// Keys pad to 30 characters before the value.
	wantLine := fmt.Sprintf("    %-30s %s\n", "step", "2")
	if !strings.Contains(text, wantLine) {
		t.Errorf("key padding wrong:\n%s", text)
	}
}

func TestSnapshot_NullAndUnrenderableValues(t *testing.T) {
	provider := &fakeProvider{
		available: true,
		url:       "http://x/",
		session: []SnapshotEntry{
			{Key: "empty", Value: nil},
			{Key: "bomb", Value: stringerBomb{}},
		},
		hasSession: true,
	}
	s := NewSnapshotter(SnapshotterConfig{})

	snap := s.Snapshot(provider)
	text := snap.RenderCollections()

	if !strings.Contains(text, "(Null)") {
		t.Errorf("nil value must render as (Null):\n%s", text)
	}
	if !strings.Contains(text, "(webfault.stringerBomb)") {
		t.Errorf("panicking value must render as its type name:\n%s", text)
	}
}

func TestStringifyValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "(Null)"},
		{"string", "plain", "plain"},
		{"int", 42, "42"},
		{"stringer", okStringer{}, "rendered"},
		{"panicking stringer", stringerBomb{}, "(webfault.stringerBomb)"},
		{"panicking error", errorBomb{}, "(webfault.errorBomb)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stringifyValue(tt.in)
			if got != tt.want {
				t.Errorf("stringifyValue(%T) = %q, want %q", tt.in, got, tt.want)
			}
			// fmt's own panic absorption must never leak into a report.
			if strings.Contains(got, "%!") {
				t.Errorf("fmt panic marker leaked: %q", got)
			}
		})
	}
}

func TestSnapshot_SectionFilters(t *testing.T) {
	provider := &fakeProvider{
		available: true,
		url:       "http://x/",
		serverVars: map[string]string{
			"REMOTE_ADDR": "10.0.0.1",
			"ALL_RAW":     "Header-Dump: yes",
			"EMPTY_VAR":   "",
		},
	}
	s := NewSnapshotter(DefaultSnapshotterConfig())

	snap := s.Snapshot(provider)
	text := snap.RenderCollections()

	if strings.Contains(text, "ALL_RAW") {
		t.Errorf("ALL_* server variables should be filtered:\n%s", text)
	}
	if strings.Contains(text, "EMPTY_VAR") {
		t.Errorf("empty server variables should be filtered:\n%s", text)
	}
	if !strings.Contains(text, "REMOTE_ADDR") {
		t.Errorf("regular server variables should remain:\n%s", text)
	}
}

func TestSnapshot_ViewStateBypassesFiltersAndIsPrioritized(t *testing.T) {
	cfg := DefaultSnapshotterConfig()
	cfg.Filters[SectionForm] = SectionFilter{OmitKeyPattern: "__"}
	provider := &fakeProvider{
		available: true,
		url:       "http://x/",
		form: []SnapshotEntry{
			{Key: "__EVENTTARGET", Value: "btnSave"},
			{Key: DefaultViewStateKey, Value: "dDvV0x"},
		},
	}
	s := NewSnapshotter(cfg)

	snap := s.Snapshot(provider)

	if snap.ViewState != "dDvV0x" {
		t.Errorf("ViewState = %q, want captured value", snap.ViewState)
	}
	collections := snap.RenderCollections()
	if strings.Contains(collections, "__EVENTTARGET") {
		t.Errorf("filtered form key leaked:\n%s", collections)
	}
	if !strings.Contains(collections, DefaultViewStateKey) {
		t.Errorf("view-state key must survive the filter:\n%s", collections)
	}
	if !strings.Contains(snap.RenderSystem(), "ViewState") {
		t.Error("view state must render as a prioritized system field")
	}
}

func TestSnapshot_MasksSensitiveKeys(t *testing.T) {
	provider := &fakeProvider{
		available: true,
		url:       "http://x/",
		form: []SnapshotEntry{
			{Key: "password", Value: "hunter2"},
			{Key: "name", Value: "jordan"},
		},
	}
	s := NewSnapshotter(DefaultSnapshotterConfig())

	text := s.Snapshot(provider).RenderCollections()

	if strings.Contains(text, "hunter2") {
		t.Errorf("sensitive value leaked:\n%s", text)
	}
	if !strings.Contains(text, "[REDACTED]") {
		t.Errorf("expected redaction marker:\n%s", text)
	}
	if !strings.Contains(text, "jordan") {
		t.Errorf("non-sensitive value was masked:\n%s", text)
	}
}

func TestSnapshot_NeverPanics(t *testing.T) {
	provider := &fakeProvider{
		available:  true,
		panicOnURL: true,
		serverVars: map[string]string{},
	}
	s := NewSnapshotter(DefaultSnapshotterConfig())

	snap := s.Snapshot(provider) // must not panic

	if !strings.Contains(snap.URL, "(error:") {
		t.Errorf("URL failure must degrade inline, got %q", snap.URL)
	}
}
