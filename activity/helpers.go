package activity

import (
	"strings"

	"github.com/goliatone/go-auth"
	"github.com/goliatone/go-moderation/pkg/authctx"
	"github.com/goliatone/go-moderation/pkg/types"
)

// EntryOption mutates the ActivityLogEntry produced by BuildEntryFromActor.
type EntryOption func(*types.ActivityLogEntry)

// WithPreviousStatus records the status the entity held before the action.
func WithPreviousStatus(status types.Status) EntryOption {
	return func(entry *types.ActivityLogEntry) {
		entry.PreviousStatus = status
	}
}

// WithReason stores a free-text reason in the entry payload.
func WithReason(reason string) EntryOption {
	return func(entry *types.ActivityLogEntry) {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return
		}
		if entry.Data == nil {
			entry.Data = map[string]any{}
		}
		entry.Data["reason"] = reason
	}
}

// BuildEntryFromActor constructs an ActivityLogEntry using the actor metadata
// supplied by go-auth middleware plus the entity reference and optional
// metadata. Metadata is copied so later caller mutations do not leak in.
func BuildEntryFromActor(actor *auth.ActorContext, action string, key types.EntityKey, resulting types.Status, metadata map[string]any, opts ...EntryOption) (types.ActivityLogEntry, error) {
	resolved, err := authctx.ActorFromActorContext(actor)
	if err != nil {
		return types.ActivityLogEntry{}, err
	}

	entry := types.ActivityLogEntry{
		ActorID:         resolved.ID,
		Action:          strings.TrimSpace(action),
		EntityKind:      key.Kind,
		EntityID:        strings.TrimSpace(key.ID),
		ResultingStatus: resulting,
		Data:            cloneMetadata(metadata),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&entry)
		}
	}

	return entry, nil
}

func cloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
