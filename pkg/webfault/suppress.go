// suppress.go decides whether an error should produce no report at all.
// Policy evaluation fails open: any failure while deciding means "report it",
// because silently dropping a real error is worse than one extra report.

package webfault

import (
	"errors"
	"net"
	"regexp"
	"strings"
)

// defaultHTTPNoiseTypes are the error types treated as expected web noise
// when IgnoreHttpErrors is enabled.
var defaultHTTPNoiseTypes = []string{
	"*webfault.HTTPError",
}

// PolicyConfig controls suppression.
type PolicyConfig struct {
	// IgnoreDebugErrors suppresses reports when a debugger is attached or
	// the request originates from the local host.
	IgnoreDebugErrors bool

	// IgnoreHTTPErrors suppresses the HTTP noise types.
	IgnoreHTTPErrors bool

	// IgnoreRegExp suppresses any report whose full rendered text matches
	// this pattern, case-insensitively. Empty disables the check.
	IgnoreRegExp string

	// WrapperTypes are the framework-root wrappers whose inner type is
	// substituted before type comparisons. Nil means the defaults.
	WrapperTypes []string

	// HTTPNoiseTypes are the type names suppressed by IgnoreHTTPErrors.
	// Nil means the defaults.
	HTTPNoiseTypes []string
}

// PolicyFromSettings derives a policy configuration from loaded settings.
func PolicyFromSettings(s *Settings) PolicyConfig {
	return PolicyConfig{
		IgnoreDebugErrors: s.IgnoreDebugErrors,
		IgnoreHTTPErrors:  s.IgnoreHTTPErrors,
		IgnoreRegExp:      s.IgnoreRegExp,
	}
}

// Policy implements the suppression decisions.
type Policy struct {
	cfg PolicyConfig
}

// NewPolicy creates a policy with the given configuration.
func NewPolicy(cfg PolicyConfig) *Policy {
	if cfg.WrapperTypes == nil {
		cfg.WrapperTypes = defaultElideTypes
	}
	if cfg.HTTPNoiseTypes == nil {
		cfg.HTTPNoiseTypes = defaultHTTPNoiseTypes
	}
	return &Policy{cfg: cfg}
}

// ShouldIgnore is the pre-render check: suppress debug-context errors when
// configured, and suppress HTTP noise types when configured. The type
// comparison always sees through the framework wrappers, whichever branch
// runs first.
func (p *Policy) ShouldIgnore(err error, isLocalHost, isDebuggerAttached bool) bool {
	if err == nil {
		return true
	}
	if p.cfg.IgnoreDebugErrors && (isDebuggerAttached || isLocalHost) {
		return true
	}
	if p.cfg.IgnoreHTTPErrors && p.isHTTPNoise(err) {
		return true
	}
	return false
}

// isHTTPNoise resolves the error's effective type, substituting the inner
// type when the value is a designated wrapper, then compares it against the
// noise list. Matching by errors.As semantics is deliberate: a noise type
// anywhere in the chain still counts.
func (p *Policy) isHTTPNoise(err error) bool {
	resolved := p.resolveTypeName(err)
	if containsString(p.cfg.HTTPNoiseTypes, resolved) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// resolveTypeName returns the error's type name, with wrapper types replaced
// by their inner error's type when an inner error exists.
func (p *Policy) resolveTypeName(err error) string {
	typeName := errorTypeName(err)
	for containsString(p.cfg.WrapperTypes, typeName) {
		inner := errors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
		typeName = errorTypeName(err)
	}
	return typeName
}

// ShouldIgnoreRendered is the post-render check: suppress when the full
// rendered report matches the configured pattern, case-insensitively. The
// whole text is scanned on purpose, so operators can suppress by any
// substring, not just type or message. A malformed pattern fails open.
func (p *Policy) ShouldIgnoreRendered(renderedReport string) bool {
	pattern := strings.TrimSpace(p.cfg.IgnoreRegExp)
	if pattern == "" {
		return false
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(renderedReport)
}

// IsLocalHostAddr reports whether a remote address or host string denotes
// the local machine. Accepts bare hosts and host:port forms.
func IsLocalHostAddr(addr string) bool {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
