// context.go propagates the request context provider through Go
// context.Context so capture points deep in a call tree can reach it.

package webfault

import "context"

// Context key types (unexported to avoid collisions)
type providerKey struct{}

// WithRequestContext returns a context carrying the request context provider.
// The middleware attaches it once per request; Handle retrieves it when no
// provider was passed explicitly.
func WithRequestContext(ctx context.Context, provider RequestContextProvider) context.Context {
	return context.WithValue(ctx, providerKey{}, provider)
}

// RequestContextFromContext extracts the request context provider.
// Returns nil and false if none is attached.
func RequestContextFromContext(ctx context.Context) (RequestContextProvider, bool) {
	if ctx == nil {
		return nil, false
	}
	v := ctx.Value(providerKey{})
	provider, ok := v.(RequestContextProvider)
	return provider, ok && provider != nil
}
