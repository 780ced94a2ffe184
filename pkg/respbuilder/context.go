package respbuilder

import "context"

type ctxKey struct{}

// Tracer identifies the request in every response envelope and in the Tracer-ID header.
type Tracer struct {
	RemoteAddr string
	AppTraceID string
}

func Inject(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// Extract returns zero Tracer when nothing was injected, i.e: when building example response.
func Extract(ctx context.Context) Tracer {
	t, _ := ctx.Value(ctxKey{}).(Tracer)
	return t
}
