package command

import (
	"fmt"

	"github.com/goliatone/go-moderation/pkg/types"
)

// Validation sentinels wrap types.ErrInvalidArgument so transports map them
// to bad requests.
var (
	// ErrEntityIDRequired indicates the transition command lacks an entity ID.
	ErrEntityIDRequired = fmt.Errorf("%w: transition requires entity id", types.ErrInvalidArgument)
	// ErrEntityKindInvalid indicates the entity kind is outside the closed set.
	ErrEntityKindInvalid = fmt.Errorf("%w: transition requires a valid entity kind", types.ErrInvalidArgument)
	// ErrTargetStatusRequired indicates the desired status is missing.
	ErrTargetStatusRequired = fmt.Errorf("%w: transition requires target status", types.ErrInvalidArgument)
	// ErrActorRequired indicates an actor was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrEntitiesRequired occurs when bulk handlers are invoked without targets.
	ErrEntitiesRequired = fmt.Errorf("%w: entity keys required", types.ErrInvalidArgument)
	// ErrActivityActionRequired indicates an activity entry is missing its action.
	ErrActivityActionRequired = fmt.Errorf("%w: activity action required", types.ErrInvalidArgument)
	// ErrActivityEntityRequired indicates an activity entry does not reference an entity.
	ErrActivityEntityRequired = fmt.Errorf("%w: activity entity required", types.ErrInvalidArgument)
	// ErrTransitionsDisabled indicates transitions are frozen via feature gate.
	ErrTransitionsDisabled = types.ErrTransitionsDisabled
)
