package command

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-moderation/pkg/types"
)

// BulkModerateInput moves several entities to the same target status.
type BulkModerateInput struct {
	Entities    []types.EntityKey
	Target      types.Status
	Actor       types.Actor
	Reason      string
	StopOnError bool
	Results     *[]BulkModerateResult
}

// Type implements gocommand.Message.
func (BulkModerateInput) Type() string {
	return "command.entity.moderate.bulk"
}

// Validate implements gocommand.Message.
func (input BulkModerateInput) Validate() error {
	switch {
	case len(input.Entities) == 0:
		return ErrEntitiesRequired
	case input.Actor.ID == "":
		return ErrActorRequired
	case input.Target == "":
		return ErrTargetStatusRequired
	default:
		return nil
	}
}

// BulkModerateResult captures the outcome for a single entity.
type BulkModerateResult struct {
	Key     types.EntityKey
	Changed bool
	Err     error
}

// BulkModerateCommand reuses the single-entity command so each entity goes
// through the same policy, guard and audit path.
type BulkModerateCommand struct {
	moderate *ModerateCommand
}

// NewBulkModerateCommand constructs the bulk handler.
func NewBulkModerateCommand(moderate *ModerateCommand) *BulkModerateCommand {
	return &BulkModerateCommand{moderate: moderate}
}

var _ gocommand.Commander[BulkModerateInput] = (*BulkModerateCommand)(nil)

// Execute moderates each entity sequentially. Errors are aggregated.
func (c *BulkModerateCommand) Execute(ctx context.Context, input BulkModerateInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	var errs []error
	results := make([]BulkModerateResult, 0, len(input.Entities))
	for _, key := range input.Entities {
		var outcome ModerateResult
		err := c.moderate.Execute(ctx, ModerateInput{
			Kind:     key.Kind,
			EntityID: key.ID,
			Target:   input.Target,
			Actor:    input.Actor,
			Reason:   input.Reason,
			Result:   &outcome,
		})
		result := BulkModerateResult{Key: key, Changed: outcome.Changed, Err: err}
		results = append(results, result)
		if err != nil {
			errs = append(errs, fmt.Errorf("entity %s: %w", key, err))
			if input.StopOnError {
				break
			}
		}
	}

	if input.Results != nil {
		*input.Results = append((*input.Results)[:0], results...)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
