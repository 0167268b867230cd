// mask.go implements sensitive-key redaction and value truncation for
// context snapshot collections.

package webfault

import "strings"

// MaskerConfig controls masking behavior.
type MaskerConfig struct {
	// SensitiveKeys contains case-insensitive substrings; any collection
	// key containing one renders as [REDACTED].
	SensitiveKeys []string

	// MaxValueSize is the maximum rendered length per value (default: 1024).
	MaxValueSize int
}

// DefaultMaskerConfig returns production-safe defaults.
func DefaultMaskerConfig() MaskerConfig {
	return MaskerConfig{
		SensitiveKeys: []string{
			"password",
			"passwd",
			"secret",
			"token",
			"credential",
			"auth",
		},
		MaxValueSize: 1024,
	}
}

// Masker redacts sensitive collection entries before they enter a report.
type Masker struct {
	cfg MaskerConfig
}

// NewMasker creates a masker with the given configuration.
func NewMasker(cfg MaskerConfig) *Masker {
	if cfg.MaxValueSize <= 0 {
		cfg.MaxValueSize = 1024
	}
	return &Masker{cfg: cfg}
}

// Mask returns the rendered value for a collection entry: [REDACTED] for
// sensitive keys, otherwise the value truncated to the configured maximum.
func (m *Masker) Mask(key, value string) string {
	if m.IsSensitiveKey(key) {
		return "[REDACTED]"
	}
	if len(value) > m.cfg.MaxValueSize {
		return truncateWithMarker(value, m.cfg.MaxValueSize)
	}
	return value
}

// IsSensitiveKey checks whether a key matches the sensitive patterns.
func (m *Masker) IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range m.cfg.SensitiveKeys {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// truncateWithMarker truncates a string and appends a truncation marker.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	marker := "...[TRUNCATED]"
	if maxLen <= len(marker) {
		return marker[:maxLen]
	}
	return s[:maxLen-len(marker)] + marker
}
