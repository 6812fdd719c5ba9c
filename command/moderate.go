package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-moderation/pkg/types"
)

// ActionStatusTransition is the activity verb recorded for status changes.
const ActionStatusTransition = "entity.status.transition"

// ModerateInput requests a status change and its audit entry in one step.
type ModerateInput struct {
	Kind     types.EntityKind
	EntityID string
	Target   types.Status
	Actor    types.Actor
	Reason   string
	Metadata map[string]any
	Result   *ModerateResult
}

// Type implements gocommand.Message.
func (ModerateInput) Type() string {
	return "command.entity.moderate"
}

// Validate implements gocommand.Message.
func (input ModerateInput) Validate() error {
	return input.transition(nil).Validate()
}

func (input ModerateInput) transition(result *StatusTransitionResult) StatusTransitionInput {
	return StatusTransitionInput{
		Kind:     input.Kind,
		EntityID: input.EntityID,
		Target:   input.Target,
		Actor:    input.Actor,
		Result:   result,
	}
}

// ModerateResult reports the updated entity and, when the status changed, the
// appended activity entry.
type ModerateResult struct {
	Entity  types.ModeratedEntity
	Changed bool
	Entry   *types.ActivityLogEntry
}

// ModerateCommand runs a transition and records exactly one activity entry
// for every transition that changed state.
type ModerateCommand struct {
	transition *StatusTransitionCommand
	append     *ActivityAppendCommand
	hooks      types.Hooks
	logger     types.Logger
}

// NewModerateCommand composes the transition and append handlers.
func NewModerateCommand(transition *StatusTransitionCommand, appendCmd *ActivityAppendCommand, hooks types.Hooks, logger types.Logger) *ModerateCommand {
	return &ModerateCommand{
		transition: transition,
		append:     appendCmd,
		hooks:      hooks,
		logger:     safeLogger(logger),
	}
}

var _ gocommand.Commander[ModerateInput] = (*ModerateCommand)(nil)

// Execute applies the transition then appends the audit entry. A failed
// append leaves the status change in place and surfaces the store error.
func (c *ModerateCommand) Execute(ctx context.Context, input ModerateInput) error {
	if c.transition == nil {
		return types.ErrMissingEntityStore
	}
	if c.append == nil {
		return types.ErrMissingActivitySink
	}

	var outcome StatusTransitionResult
	if err := c.transition.Execute(ctx, input.transition(&outcome)); err != nil {
		return err
	}

	result := ModerateResult{Entity: outcome.Entity, Changed: outcome.Changed}
	if outcome.Changed {
		data := cloneMap(input.Metadata)
		if reason := strings.TrimSpace(input.Reason); reason != "" {
			if data == nil {
				data = map[string]any{}
			}
			data["reason"] = reason
		}
		var stored types.ActivityLogEntry
		err := c.append.Execute(ctx, ActivityAppendInput{
			Entry: types.ActivityLogEntry{
				ActorID:         input.Actor.ID,
				Action:          ActionStatusTransition,
				EntityKind:      input.Kind,
				EntityID:        input.EntityID,
				PreviousStatus:  outcome.FromStatus,
				ResultingStatus: outcome.Entity.Status,
				Data:            data,
				OccurredAt:      outcome.OccurredAt,
			},
			Result: &stored,
		})
		if err != nil {
			c.logger.Error("moderation activity append failed", err,
				"entity", outcome.Entity.Key().String(), "to", outcome.Entity.Status)
			return err
		}
		result.Entry = &stored

		emitTransitionHook(ctx, c.hooks, types.TransitionEvent{
			Entity:     outcome.Entity,
			FromStatus: outcome.FromStatus,
			ToStatus:   outcome.Entity.Status,
			Actor:      input.Actor,
			Reason:     input.Reason,
			OccurredAt: outcome.OccurredAt,
		})
	}

	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
