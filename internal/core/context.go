package core

import "context"

type contextKey string

const ctxKeyActor contextKey = "actor"

// DefaultActor names changes made without a known user.
const DefaultActor = "PharmaDB Client"

// ContextWithActor records who is making changes, used as updated_by and
// uploader name.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// ActorFromContext returns the actor set by ContextWithActor, or DefaultActor.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyActor).(string); ok && v != "" {
		return v
	}
	return DefaultActor
}
