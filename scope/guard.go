package scope

import (
	"context"

	"github.com/goliatone/go-moderation/pkg/types"
)

// Guard enforces authorization policies for commands and queries. It is
// intentionally small so callers can swap custom guards in tests if needed.
type Guard interface {
	Enforce(ctx context.Context, actor types.Actor, action types.PolicyAction, target types.EntityKey) error
}

type guard struct {
	policy types.AuthorizationPolicy
}

// NewGuard builds a Guard from the supplied policy. A nil policy only
// requires an actor to be present.
func NewGuard(policy types.AuthorizationPolicy) Guard {
	return guard{policy: policy}
}

// Ensure returns a non-nil guard so command/query constructors can accept nil
// guards when tests instantiate them directly.
func Ensure(g Guard) Guard {
	if g == nil {
		return guard{}
	}
	return g
}

// NopGuard returns a guard that only checks for an actor.
func NopGuard() Guard {
	return guard{}
}

// Enforce authorizes the actor for the action.
func (g guard) Enforce(ctx context.Context, actor types.Actor, action types.PolicyAction, target types.EntityKey) error {
	if actor.ID == "" {
		return types.ErrActorRequired
	}
	if g.policy == nil || action == "" {
		return nil
	}
	return g.policy.Authorize(ctx, types.PolicyCheck{
		Actor:  actor,
		Action: action,
		Target: target,
	})
}

// ReadRolesPolicy limits the given read actions to the listed roles and lets
// every other action through.
func ReadRolesPolicy(actions []types.PolicyAction, roles ...types.ActorRole) types.AuthorizationPolicy {
	guarded := make(map[types.PolicyAction]struct{}, len(actions))
	for _, action := range actions {
		guarded[action] = struct{}{}
	}
	return types.AuthorizationPolicyFunc(func(_ context.Context, check types.PolicyCheck) error {
		if _, ok := guarded[check.Action]; !ok {
			return nil
		}
		for _, role := range roles {
			if check.Actor.IsRole(role) {
				return nil
			}
		}
		return types.ErrUnauthorized
	})
}
