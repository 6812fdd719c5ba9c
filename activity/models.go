package activity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LogEntry models the persisted row in moderation_activity.
type LogEntry struct {
	bun.BaseModel `bun:"table:moderation_activity"`

	ID              uuid.UUID      `bun:",pk,type:uuid"`
	Seq             int64          `bun:"seq,notnull"`
	ActorID         string         `bun:"actor_id,notnull"`
	Action          string         `bun:"action,notnull"`
	EntityKind      string         `bun:"entity_kind,notnull"`
	EntityID        string         `bun:"entity_id,notnull"`
	PreviousStatus  string         `bun:"previous_status"`
	ResultingStatus string         `bun:"resulting_status,notnull"`
	Data            map[string]any `bun:"data,type:jsonb"`
	OccurredAt      time.Time      `bun:"occurred_at,notnull"`
}
