package ctxlogger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// ContextHandler injects slog attributes carried by the context into every
// record, so command/request ids attached once flow through all log lines.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

// AppendCtx returns a context carrying the given attrs in addition to any
// attrs already present.
func AppendCtx(parent context.Context, attrs ...slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if existing, ok := parent.Value(ctxKey{}).([]slog.Attr); ok {
		merged := make([]slog.Attr, 0, len(existing)+len(attrs))
		merged = append(merged, existing...)
		merged = append(merged, attrs...)
		return context.WithValue(parent, ctxKey{}, merged)
	}

	return context.WithValue(parent, ctxKey{}, attrs)
}
