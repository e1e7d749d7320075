package eventbus

import "context"

type replayKey struct{}

// WithReplay marks ctx as replaying events rebuilt from URL state, e.g. on
// reload or browser back/forward. Subscribers use it to avoid recording the
// navigation a second time.
func WithReplay(ctx context.Context) context.Context {
	return context.WithValue(ctx, replayKey{}, true)
}

// IsReplay reports whether ctx was marked with WithReplay.
func IsReplay(ctx context.Context) bool {
	v, _ := ctx.Value(replayKey{}).(bool)
	return v
}
