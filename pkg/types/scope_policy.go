package types

import "context"

// PolicyAction enumerates the authorization actions enforced by the scope
// guard. Host applications can remap these actions to their own ACL systems.
type PolicyAction string

const (
	PolicyActionEntitiesModerate PolicyAction = "entities:moderate"
	PolicyActionActivityRead     PolicyAction = "activity:read"
	PolicyActionActivityWrite    PolicyAction = "activity:write"
	PolicyActionMetricsRead      PolicyAction = "metrics:read"
)

// PolicyCheck captures the authorization context for a single command/query.
type PolicyCheck struct {
	Actor  Actor
	Action PolicyAction
	Target EntityKey
}

// AuthorizationPolicy governs whether an actor can perform an action.
type AuthorizationPolicy interface {
	Authorize(ctx context.Context, check PolicyCheck) error
}

// AuthorizationPolicyFunc adapts bare functions to AuthorizationPolicy.
type AuthorizationPolicyFunc func(ctx context.Context, check PolicyCheck) error

// Authorize implements AuthorizationPolicy.
func (f AuthorizationPolicyFunc) Authorize(ctx context.Context, check PolicyCheck) error {
	return f(ctx, check)
}
