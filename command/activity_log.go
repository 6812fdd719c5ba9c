package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/google/uuid"
)

// ActivityAppendInput wraps an entry to persist through the ActivitySink.
type ActivityAppendInput struct {
	Entry  types.ActivityLogEntry
	Result *types.ActivityLogEntry
}

// Type implements gocommand.Message.
func (ActivityAppendInput) Type() string {
	return "command.activity.append"
}

// Validate implements gocommand.Message.
func (input ActivityAppendInput) Validate() error {
	switch {
	case strings.TrimSpace(input.Entry.Action) == "":
		return ErrActivityActionRequired
	case strings.TrimSpace(input.Entry.ActorID) == "":
		return ErrActorRequired
	case !input.Entry.EntityKind.Valid() || strings.TrimSpace(input.Entry.EntityID) == "":
		return ErrActivityEntityRequired
	case !input.Entry.ResultingStatus.Valid():
		return types.NewInvalidArgument("resultingStatus", "must be a known status")
	default:
		return nil
	}
}

// ActivityAppendCommand appends moderation entries to the log.
type ActivityAppendCommand struct {
	sink     types.ActivitySink
	hooks    types.Hooks
	clock    types.Clock
	idGen    types.IDGenerator
	versions *types.MutationCounter
}

// ActivityAppendConfig wires dependencies for the append command.
type ActivityAppendConfig struct {
	Sink     types.ActivitySink
	Hooks    types.Hooks
	Clock    types.Clock
	IDGen    types.IDGenerator
	Versions *types.MutationCounter
}

// NewActivityAppendCommand constructs the append handler.
func NewActivityAppendCommand(cfg ActivityAppendConfig) *ActivityAppendCommand {
	return &ActivityAppendCommand{
		sink:     cfg.Sink,
		hooks:    cfg.Hooks,
		clock:    safeClock(cfg.Clock),
		idGen:    safeIDGen(cfg.IDGen),
		versions: cfg.Versions,
	}
}

var _ gocommand.Commander[ActivityAppendInput] = (*ActivityAppendCommand)(nil)

// Execute validates and persists the supplied entry. Store failures are
// returned as ErrStoreUnavailable and never retried here.
func (c *ActivityAppendCommand) Execute(ctx context.Context, input ActivityAppendInput) error {
	if c.sink == nil {
		return types.ErrMissingActivitySink
	}
	if err := input.Validate(); err != nil {
		return err
	}
	entry := input.Entry
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = now(c.clock)
	}
	if entry.ID == uuid.Nil {
		entry.ID = c.idGen.UUID()
	}
	entry.Data = cloneMap(entry.Data)

	stored, err := c.sink.Append(ctx, entry)
	if err != nil {
		return types.WrapStoreError("activity.append", err)
	}
	c.versions.Bump()
	emitActivityHook(ctx, c.hooks, stored)
	if input.Result != nil {
		*input.Result = stored
	}
	return nil
}
