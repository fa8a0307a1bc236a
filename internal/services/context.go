package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	txidKey      contextKey = "txid"
	componentKey contextKey = "component"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTxID annotates context with the transaction currently being processed.
func WithTxID(ctx context.Context, txid string) context.Context {
	if txid == "" {
		return ctx
	}
	return context.WithValue(ctx, txidKey, txid)
}

// TxIDFromContext returns the transaction ID if present.
func TxIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(txidKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithComponent annotates context with the active component name.
func WithComponent(ctx context.Context, component string) context.Context {
	if component == "" {
		return ctx
	}
	return context.WithValue(ctx, componentKey, component)
}

// ComponentFromContext returns the component name if present.
func ComponentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(componentKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
