// stacktrace.go captures call stacks and renders them as readable text.

package webfault

import (
	"fmt"
	"runtime"
	"strings"
)

const maxCapturedFrames = 64

// CaptureFrames captures the current call stack, skipping the given number
// of frames above the caller of CaptureFrames itself.
func CaptureFrames(skip int) []StackFrame {
	pcs := make([]uintptr, maxCapturedFrames)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	iter := runtime.CallersFrames(pcs[:n])
	var frames []StackFrame
	for {
		f, more := iter.Next()
		if f.Function != "" && !strings.HasPrefix(f.Function, "runtime.") {
			module, typeName, method := parseFunction(f.Function)
			var offset uintptr
			if f.Entry != 0 && f.PC >= f.Entry {
				offset = f.PC - f.Entry
			}
			frames = append(frames, StackFrame{
				Module:       module,
				TypeName:     typeName,
				Method:       method,
				File:         f.File,
				Line:         f.Line,
				ILOffset:     -1,
				NativeOffset: offset,
			})
		}
		if !more {
			break
		}
	}
	return frames
}

// parseFunction splits a runtime function name like
// "github.com/x/y/pkg.(*T).Method" into module, type, and method parts.
func parseFunction(fn string) (module, typeName, method string) {
	slash := strings.LastIndex(fn, "/")
	dot := strings.Index(fn[slash+1:], ".")
	if dot < 0 {
		return "", "", fn
	}
	dot += slash + 1
	module = fn[:dot]
	rest := fn[dot+1:]

	if strings.HasPrefix(rest, "(") {
		// Method with a pointer or value receiver: "(*T).Method"
		closing := strings.Index(rest, ")")
		if closing > 0 {
			typeName = rest[1:closing]
			method = strings.TrimPrefix(rest[closing+1:], ".")
			return module, typeName, method
		}
	}

	// "T.Method" or a free function, possibly with a closure suffix.
	if d := strings.Index(rest, "."); d >= 0 && !strings.HasPrefix(rest[d+1:], "func") {
		return module, rest[:d], rest[d+1:]
	}
	return module, "", rest
}

// FormatFrames renders a call stack as indented text, one frame per line.
//
// A frame renders as "Module.TypeName.Method(Type1 name1, ...)" followed by
// its source location: "<file>: line NNNNN, col NN" plus ", IL NNNNN" when an
// intermediate-code offset is known, or "(unknown file): N <offset>" when no
// source information is available.
//
// Frames whose declaring name (module plus type) contains the non-empty,
// case-sensitive suppressPattern are omitted. This is used to hide the
// handler's own frames from self-triggered traces.
//
// FormatFrames never panics; missing metadata renders as empty fields.
func FormatFrames(frames []StackFrame, suppressPattern string) string {
	var b strings.Builder
	for _, f := range frames {
		if suppressPattern != "" {
			declaring := f.Module + "." + f.TypeName
			if strings.Contains(declaring, suppressPattern) {
				continue
			}
		}
		b.WriteString("   at ")
		b.WriteString(formatFrame(f))
		b.WriteString("\n")
	}
	return b.String()
}

// formatFrame renders a single frame without the leading indent.
func formatFrame(f StackFrame) string {
	var name strings.Builder
	if f.Module != "" {
		name.WriteString(f.Module)
		name.WriteString(".")
	}
	if f.TypeName != "" {
		name.WriteString(f.TypeName)
		name.WriteString(".")
	}
	name.WriteString(f.Method)

	name.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			name.WriteString(", ")
		}
		name.WriteString(strings.TrimSpace(p.TypeName + " " + p.Name))
	}
	name.WriteString(")")

	if f.File == "" {
		return fmt.Sprintf("%s  (unknown file): N %d", name.String(), f.NativeOffset)
	}

	loc := fmt.Sprintf("%s: line %05d, col %02d", f.File, f.Line, f.Column)
	if f.ILOffset >= 0 {
		loc += fmt.Sprintf(", IL %05d", f.ILOffset)
	}
	return name.String() + "  " + loc
}
