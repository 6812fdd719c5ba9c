package command

import (
	"context"
	"time"

	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/scope"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeIDGen(gen types.IDGenerator) types.IDGenerator {
	if gen != nil {
		return gen
	}
	return types.UUIDGenerator{}
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func emitTransitionHook(ctx context.Context, hooks types.Hooks, event types.TransitionEvent) {
	if hooks.AfterTransition == nil {
		return
	}
	hooks.AfterTransition(ctx, event)
}

func emitActivityHook(ctx context.Context, hooks types.Hooks, entry types.ActivityLogEntry) {
	if hooks.AfterActivity == nil {
		return
	}
	hooks.AfterActivity(ctx, entry)
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
