package webfault

import (
	"strings"
	"testing"
)

func TestMasker_RedactsSensitiveKeys(t *testing.T) {
	m := NewMasker(DefaultMaskerConfig())

	tests := []struct {
		key  string
		want string
	}{
		{"password", "[REDACTED]"},
		{"UserPassword", "[REDACTED]"},
		{"api_token", "[REDACTED]"},
		{"AUTH_HEADER", "[REDACTED]"},
		{"client_secret", "[REDACTED]"},
		{"username", "value"},
		{"step", "value"},
	}
	for _, tt := range tests {
		if got := m.Mask(tt.key, "value"); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestMasker_TruncatesLongValues(t *testing.T) {
	m := NewMasker(MaskerConfig{MaxValueSize: 32})

	got := m.Mask("note", strings.Repeat("x", 100))

	if len(got) != 32 {
		t.Errorf("truncated length = %d, want 32", len(got))
	}
	if !strings.HasSuffix(got, "...[TRUNCATED]") {
		t.Errorf("missing truncation marker: %q", got)
	}
}

func TestMasker_ShortValuesPassThrough(t *testing.T) {
	m := NewMasker(DefaultMaskerConfig())
	if got := m.Mask("note", "short"); got != "short" {
		t.Errorf("Mask = %q, want unchanged", got)
	}
}
