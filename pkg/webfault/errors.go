// errors.go defines the wrapper error types produced by the capture points.
// Both wrappers carry no information of their own beyond the wrapped cause,
// so the composer elides them from the rendered chain when a cause is present.

package webfault

import "fmt"

// PanicError wraps a value recovered from a panic so it can travel through
// the pipeline as an error.
type PanicError struct {
	// Value is the recovered panic value.
	Value any

	// Frames is the stack captured at the recovery point.
	Frames []StackFrame
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	if e.Value == nil {
		return "panic: <nil>"
	}
	if err, ok := e.Value.(error); ok {
		return "panic: " + err.Error()
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the wrapped error when the panic value was one.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StackFrames returns the frames captured at recovery.
func (e *PanicError) StackFrames() []StackFrame {
	return e.Frames
}

// RequestError wraps an error that surfaced while serving a web request.
// The middleware uses it to attach the capture-site stack.
type RequestError struct {
	// Err is the underlying error.
	Err error

	// Frames is the stack captured where the error surfaced.
	Frames []StackFrame
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err == nil {
		return "request error"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// StackFrames returns the frames captured where the error surfaced.
func (e *RequestError) StackFrames() []StackFrame {
	return e.Frames
}

// HTTPError is an error with an associated HTTP status code. Errors of this
// type are the "expected noise" of a web application (404s, aborted
// requests) and can be suppressed via the IgnoreHttpErrors setting.
type HTTPError struct {
	// StatusCode is the HTTP status associated with the failure.
	StatusCode int

	// Err is the underlying cause, may be nil.
	Err error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("http error %d", e.StatusCode)
	}
	return fmt.Sprintf("http error %d: %s", e.StatusCode, e.Err.Error())
}

// Unwrap returns the underlying cause.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// frameCarrier is implemented by errors that carry a captured stack.
type frameCarrier interface {
	StackFrames() []StackFrame
}
