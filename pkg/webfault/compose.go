// compose.go turns a raw error plus ambient state into a rendered Report:
// iterative chain unwrap, innermost-first rendering, and the once-only
// system, assembly, and context blocks.

package webfault

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
)

// defaultElideTypes are the framework-root wrapper types whose levels carry
// no information of their own. A chain level of one of these types is
// skipped when it has an inner error.
var defaultElideTypes = []string{
	"*webfault.PanicError",
	"*webfault.RequestError",
}

// ComposerConfig controls report composition.
type ComposerConfig struct {
	// ElideTypes are the wrapper type names elided from the chain when an
	// inner error is present. Nil means the defaults.
	ElideTypes []string

	// SuppressFramePattern omits matching frames from rendered stacks,
	// used to hide the handler's own frames from self-triggered traces.
	SuppressFramePattern string

	// Snapshotter captures the context block. Nil means defaults.
	Snapshotter *Snapshotter
}

// Composer builds Reports. Safe for concurrent use.
type Composer struct {
	elideTypes  []string
	suppressPat string
	snapshotter *Snapshotter
}

// NewComposer creates a composer with the given configuration.
func NewComposer(cfg ComposerConfig) *Composer {
	elide := cfg.ElideTypes
	if elide == nil {
		elide = defaultElideTypes
	}
	snapshotter := cfg.Snapshotter
	if snapshotter == nil {
		snapshotter = NewSnapshotter(DefaultSnapshotterConfig())
	}
	return &Composer{
		elideTypes:  elide,
		suppressPat: cfg.SuppressFramePattern,
		snapshotter: snapshotter,
	}
}

// BuildChain unwraps an error into its exception chain, outermost first,
// eliding framework-root wrappers that have an inner error. The returned
// chain always has at least one element. Frames carried by an elided
// wrapper migrate to the next emitted level if it has none of its own.
func BuildChain(err error, elideTypes []string) ExceptionChain {
	var chain ExceptionChain
	var pendingFrames []StackFrame

	for err != nil {
		inner := errors.Unwrap(err)
		typeName := errorTypeName(err)

		if inner != nil && containsString(elideTypes, typeName) {
			if fc, ok := err.(frameCarrier); ok && len(fc.StackFrames()) > 0 {
				pendingFrames = fc.StackFrames()
			}
			err = inner
			continue
		}

		info := ExceptionInfo{
			TypeName: typeName,
			Message:  levelMessage(err, inner),
		}
		if fc, ok := err.(frameCarrier); ok {
			info.Frames = fc.StackFrames()
		}
		if len(info.Frames) == 0 && pendingFrames != nil {
			info.Frames = pendingFrames
		}
		pendingFrames = nil
		if len(info.Frames) > 0 {
			info.Module = info.Frames[0].Module
		}

		chain = append(chain, info)
		err = inner
	}

	if len(chain) == 0 {
		chain = ExceptionChain{{TypeName: "(nil)", Message: "(no error)"}}
	}
	return chain
}

// levelMessage returns the message belonging to this chain level alone.
// Errors wrapped with fmt.Errorf("...: %w", inner) repeat the inner message
// in the outer one; the repeated suffix is stripped so no information
// appears twice in the rendered chain.
func levelMessage(err, inner error) string {
	msg := err.Error()
	if inner == nil {
		return msg
	}
	innerMsg := inner.Error()
	if innerMsg == "" || !strings.HasSuffix(msg, innerMsg) {
		return msg
	}
	trimmed := strings.TrimSuffix(msg, innerMsg)
	trimmed = strings.TrimSuffix(trimmed, ": ")
	if trimmed == "" {
		return msg
	}
	return trimmed
}

// errorTypeName returns the concrete type name of an error value.
func errorTypeName(err error) string {
	if err == nil {
		return "(nil)"
	}
	t := reflect.TypeOf(err)
	if t == nil {
		return "(nil)"
	}
	return t.String()
}

// Compose builds the full Report for an error. It never panics; a failure
// inside composition degrades to a minimal report carrying the error's
// message and a placeholder body.
func (c *Composer) Compose(err error, provider RequestContextProvider, settings *Settings) (report *Report) {
	report = &Report{
		ReportID:  uuid.NewString(),
		Timestamp: time.Now(),
	}
	defer func() {
		if r := recover(); r != nil {
			report.TypeName = errorTypeName(err)
			if err != nil {
				report.Message = err.Error()
			}
			report.Text = fmt.Sprintf("(report composition failed: %v)\n", r)
		}
	}()

	if settings == nil {
		settings = DefaultSettings()
	}

	chain := BuildChain(err, c.elideTypes)
	snapshot := c.snapshotter.Snapshot(provider)

	report.Chain = chain
	report.Snapshot = snapshot
	report.TypeName = chain[0].TypeName
	report.Message = chain[0].Message
	report.Fingerprint = ChainFingerprint(chain)
	report.Text = c.renderText(report, settings)
	return report
}

// renderText assembles the report body: header, exception chain with the
// innermost detail first, then system, assembly, and context blocks exactly
// once regardless of nesting depth.
func (c *Composer) renderText(r *Report, settings *Settings) string {
	var b strings.Builder

	if settings.AppName != "" {
		fmt.Fprintf(&b, "%s - Error Report\n", settings.AppName)
	} else {
		b.WriteString("Error Report\n")
	}
	fmt.Fprintf(&b, "%-30s %s\n", "Report ID", r.ReportID)
	fmt.Fprintf(&b, "%-30s %s\n", "Generated", r.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "%-30s %s\n", "Fingerprint", r.Fingerprint)
	if settings.ContactInfo != "" {
		fmt.Fprintf(&b, "%-30s %s\n", "Contact", settings.ContactInfo)
	}
	if settings.ReportedBy != "" {
		fmt.Fprintf(&b, "%-30s %s\n", "Reported By", settings.ReportedBy)
	}

	b.WriteString("\n--- Exception Information ---\n")
	b.WriteString(c.renderChain(r.Chain))

	b.WriteString("\n--- System Information ---\n")
	b.WriteString(r.Snapshot.RenderSystem())

	b.WriteString("\n--- Assembly Information ---\n")
	b.WriteString(renderAssemblyInfo(chainOriginModule(r.Chain)))

	if collections := r.Snapshot.RenderCollections(); collections != "" {
		b.WriteString("\n--- Request Context ---\n")
		b.WriteString(collections)
	}
	return b.String()
}

// renderChain renders the chain innermost-first, tagging every level that
// wraps another with "(Outer Exception)".
func (c *Composer) renderChain(chain ExceptionChain) string {
	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		info := chain[i]
		if i < len(chain)-1 {
			b.WriteString("\n(Outer Exception)\n")
		}
		fmt.Fprintf(&b, "%-30s %s\n", "Exception Type", info.TypeName)
		fmt.Fprintf(&b, "%-30s %s\n", "Message", info.Message)
		if info.Module != "" {
			fmt.Fprintf(&b, "%-30s %s\n", "Source Module", info.Module)
		}
		if len(info.Frames) > 0 {
			b.WriteString("Stack Trace\n")
			b.WriteString(FormatFrames(info.Frames, c.suppressPat))
		}
	}
	return b.String()
}

// chainOriginModule returns the module that raised the innermost exception.
func chainOriginModule(chain ExceptionChain) string {
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].Module != "" {
			return chain[i].Module
		}
	}
	return ""
}

// containsString reports whether list contains s.
func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
