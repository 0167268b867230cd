// recover.go provides the Recover helper for standalone panic capture.
// Use this in goroutines or other code outside the HTTP middleware.

package webfault

import "context"

// Recover captures a panic, routes it through the handler's pipeline, and
// returns the recovered value. Recover does NOT re-panic.
//
// It must be deferred directly, because recover only takes effect when
// called by the deferred function itself:
//
//	func worker(ctx context.Context) {
//	    defer webfault.Recover(ctx, handler)
//	    // code that might panic
//	}
//
// To both report and convert the panic to an error, use ReportRecovered
// inside your own deferred function instead.
func Recover(ctx context.Context, handler *Handler) any {
	r := recover()
	if r == nil {
		return nil
	}
	ReportRecovered(ctx, handler, r)
	return r
}

// ReportRecovered reports an already-recovered panic value. Use it when the
// caller owns the deferred function:
//
//	func worker(ctx context.Context) (err error) {
//	    defer func() {
//	        if r := recover(); r != nil {
//	            webfault.ReportRecovered(ctx, handler, r)
//	            err = fmt.Errorf("panic: %v", r)
//	        }
//	    }()
//	    // code that might panic
//	}
func ReportRecovered(ctx context.Context, handler *Handler, recovered any) {
	if recovered == nil {
		return
	}

	err := &PanicError{
		Value: recovered,
		// Skip the reporting helpers and the deferred frame above them.
		Frames: CaptureFrames(2),
	}

	// Handle never panics and never returns anything; the caller is
	// unaffected no matter what delivery does.
	handler.Handle(ctx, err)
}
