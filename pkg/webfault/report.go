// report.go defines the canonical report data structures for webfault.

package webfault

import (
	"fmt"
	"time"
)

// FrameParam describes one formal parameter of a method in a stack frame.
// Go's runtime does not expose parameter metadata, so these are populated
// only when frames come from an external descriptor.
type FrameParam struct {
	// TypeName is the parameter's type name.
	TypeName string

	// Name is the parameter's name.
	Name string
}

// StackFrame describes one call-stack frame. Immutable once captured.
type StackFrame struct {
	// Module is the declaring module (package path for Go frames).
	Module string

	// TypeName is the declaring type, empty for free functions.
	TypeName string

	// Method is the method or function name.
	Method string

	// Params are the formal parameters, in declaration order.
	Params []FrameParam

	// File is the source file name, empty when unavailable.
	File string

	// Line is the source line number, 0 when unavailable.
	Line int

	// Column is the source column number, 0 when unavailable.
	Column int

	// ILOffset is the intermediate-code offset, negative when unknown.
	ILOffset int

	// NativeOffset is the offset from the function entry point, used when
	// source information is unavailable.
	NativeOffset uintptr
}

// ExceptionInfo describes one level of a nested error chain.
type ExceptionInfo struct {
	// TypeName is the error's concrete type name (e.g. "*fs.PathError").
	TypeName string

	// Message is the error's message text.
	Message string

	// Module is the originating module, when known.
	Module string

	// Frames is the call stack at the point the error was captured.
	// Only the level that carried a stack has frames; inner levels
	// unwrapped from the same error value usually share the outer stack.
	Frames []StackFrame
}

// ExceptionChain is the ordered sequence of an error and its nested causes,
// outermost first. A chain always has at least one element.
type ExceptionChain []ExceptionInfo

// Leaf returns the innermost exception of the chain.
func (c ExceptionChain) Leaf() ExceptionInfo {
	return c[len(c)-1]
}

// SnapshotEntry is one key/value pair inside a snapshot section. Value is
// kept untyped so that stringification failures can degrade per entry.
type SnapshotEntry struct {
	Key   string
	Value any
}

// SnapshotSection is one named, ordered collection of a context snapshot
// (QueryString, Form, Cookies, Session, Cache, Application, ServerVariables).
type SnapshotSection struct {
	Name    string
	Entries []SnapshotEntry
}

// ContextSnapshot holds process, machine, and (when available) request-scoped
// state captured at error time.
type ContextSnapshot struct {
	// MachineName is the hostname of the machine where the error occurred.
	MachineName string

	// ProcessUser is the identity the process runs as.
	ProcessUser string

	// LocalIP is the first IPv4 address bound to the host.
	LocalIP string

	// Request fields, populated only when a request context was available.

	// URL is the reconstructed current request URL.
	URL string

	// RemoteUser, RemoteAddr, and RemoteHost identify the caller.
	RemoteUser string
	RemoteAddr string
	RemoteHost string

	// ViewState is the prioritized view-state value, always captured even
	// when its section is filtered.
	ViewState string

	// Sections are the request-scoped collections, in capture order.
	Sections []SnapshotSection
}

// HasRequest reports whether the snapshot was taken inside a web request.
func (s *ContextSnapshot) HasRequest() bool {
	return s.URL != "" || len(s.Sections) > 0
}

// DeliveryOutcome maps sink name to its delivery result: nil for success,
// otherwise the error that sink produced. Built fresh per handled error and
// never persisted.
type DeliveryOutcome map[string]error

// Failed returns the names of sinks that reported an error, sorted order is
// not guaranteed.
func (o DeliveryOutcome) Failed() []string {
	var names []string
	for name, err := range o {
		if err != nil {
			names = append(names, name)
		}
	}
	return names
}

// Report is the fully rendered diagnostic report for one handled error.
// Constructed once per error, held only for the duration of delivery.
type Report struct {
	// ReportID is a unique identifier for this report (UUID).
	ReportID string

	// Timestamp is when the error was handled.
	Timestamp time.Time

	// TypeName is the resolved exception type, with framework wrappers
	// already unwrapped. Sinks use it as the report's short title.
	TypeName string

	// Message is the outermost error message.
	Message string

	// Fingerprint is a stable hash for grouping similar errors.
	Fingerprint string

	// Chain is the unwrapped exception chain, outermost first.
	Chain ExceptionChain

	// Snapshot is the context captured at error time.
	Snapshot *ContextSnapshot

	// Text is the complete rendered report.
	Text string
}

// Title returns a one-line identification of the report suitable for
// subjects and log lines.
func (r *Report) Title() string {
	if r.Message == "" {
		return r.TypeName
	}
	return fmt.Sprintf("%s: %s", r.TypeName, r.Message)
}
