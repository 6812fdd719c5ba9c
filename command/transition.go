package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/scope"
)

// StatusTransitionInput describes a status change request for one entity.
type StatusTransitionInput struct {
	Kind     types.EntityKind
	EntityID string
	Target   types.Status
	Actor    types.Actor
	Result   *StatusTransitionResult
}

// Type implements gocommand.Message.
func (StatusTransitionInput) Type() string {
	return "command.entity.status.transition"
}

// Validate implements gocommand.Message.
func (input StatusTransitionInput) Validate() error {
	switch {
	case strings.TrimSpace(input.EntityID) == "":
		return ErrEntityIDRequired
	case !input.Kind.Valid():
		return ErrEntityKindInvalid
	case input.Target == "":
		return ErrTargetStatusRequired
	case input.Actor.ID == "":
		return ErrActorRequired
	default:
		return nil
	}
}

// StatusTransitionResult carries the outcome of a transition. Changed is false
// for idempotent requests where the target equals the current status.
type StatusTransitionResult struct {
	Entity     types.ModeratedEntity
	FromStatus types.Status
	Changed    bool
	OccurredAt time.Time
}

// StatusTransitionCommand validates and applies a status transition for one
// entity. It never writes the activity log; callers append on success.
type StatusTransitionCommand struct {
	store  types.EntityStore
	policy types.TransitionPolicy
	guard  types.RoleGuard
	scope  scope.Guard
	gate   featuregate.FeatureGate
	clock  types.Clock
	logger types.Logger
	locks  *entityLocks

	versions *types.MutationCounter
}

// TransitionCommandConfig configures the transition handler.
type TransitionCommandConfig struct {
	Store       types.EntityStore
	Policy      types.TransitionPolicy
	RoleGuard   types.RoleGuard
	ScopeGuard  scope.Guard
	FeatureGate featuregate.FeatureGate
	Clock       types.Clock
	Logger      types.Logger
	Versions    *types.MutationCounter
}

// NewStatusTransitionCommand wires the transition handler.
func NewStatusTransitionCommand(cfg TransitionCommandConfig) *StatusTransitionCommand {
	policy := cfg.Policy
	if policy == nil {
		policy = types.DefaultTransitionPolicy()
	}
	guard := cfg.RoleGuard
	if guard == nil {
		guard = types.DefaultRoleGuard()
	}
	return &StatusTransitionCommand{
		store:  cfg.Store,
		policy: policy,
		guard:  guard,
		scope:  safeScopeGuard(cfg.ScopeGuard),
		gate:   cfg.FeatureGate,
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
		locks:  newEntityLocks(),

		versions: cfg.Versions,
	}
}

var _ gocommand.Commander[StatusTransitionInput] = (*StatusTransitionCommand)(nil)

// Execute performs the transition. Transitions on the same entity are
// linearized; the lock is held from read to write.
func (c *StatusTransitionCommand) Execute(ctx context.Context, input StatusTransitionInput) error {
	if c.store == nil {
		return types.ErrMissingEntityStore
	}
	if err := input.Validate(); err != nil {
		return err
	}
	key := types.EntityKey{Kind: input.Kind, ID: input.EntityID}

	release := c.locks.lock(key)
	defer release()

	current, err := c.store.GetEntity(ctx, input.Kind, input.EntityID)
	if err != nil {
		return types.WrapStoreError("entity.get", err)
	}
	if current == nil {
		return types.ErrEntityNotFound
	}

	// a request for the current status is a no-op and skips scope and gate
	if input.Target != current.Status {
		if err := c.scope.Enforce(ctx, input.Actor, types.PolicyActionEntitiesModerate, key); err != nil {
			return err
		}
		enabled, err := featureEnabled(ctx, c.gate, featureModerationTransitions, input.Actor)
		if err != nil {
			return err
		}
		if !enabled {
			return ErrTransitionsDisabled
		}
	}

	updated, changed, err := types.Transition(c.policy, c.guard, *current, input.Target, input.Actor)
	if err != nil {
		c.logger.Debug("moderation policy rejected transition",
			"entity", key.String(), "from", current.Status, "to", input.Target,
			"actor_id", input.Actor.ID, "role", input.Actor.Role, "error", err)
		return err
	}

	result := StatusTransitionResult{
		Entity:     updated,
		FromStatus: current.Status,
		Changed:    changed,
		OccurredAt: now(c.clock),
	}
	if changed {
		stored, err := c.store.UpdateStatus(ctx, input.Kind, input.EntityID, updated.Status)
		if err != nil {
			return types.WrapStoreError("entity.update_status", err)
		}
		if stored != nil {
			result.Entity = *stored
		}
		if result.Entity.Status != input.Target {
			return fmt.Errorf("%w: store reported status %q after update", types.ErrStoreUnavailable, result.Entity.Status)
		}
		c.versions.Bump()
	}

	if input.Result != nil {
		*input.Result = result
	}
	return nil
}

// AllowedTargets returns the statuses the actor may move the entity into.
func (c *StatusTransitionCommand) AllowedTargets(ctx context.Context, kind types.EntityKind, id string, actor types.Actor) ([]types.Status, error) {
	if c.store == nil {
		return nil, types.ErrMissingEntityStore
	}
	entity, err := c.store.GetEntity(ctx, kind, id)
	if err != nil {
		return nil, types.WrapStoreError("entity.get", err)
	}
	if entity == nil {
		return nil, types.ErrEntityNotFound
	}
	return types.AllowedTargets(c.policy, c.guard, *entity, actor), nil
}

// Describe returns a human readable description of the command for debugging.
func (StatusTransitionInput) Describe() string {
	return "entity status transition"
}
