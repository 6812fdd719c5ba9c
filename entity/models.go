package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Record models the persisted row in moderated_entities.
type Record struct {
	bun.BaseModel `bun:"table:moderated_entities"`

	Kind      string    `bun:"kind,pk"`
	ID        string    `bun:"id,pk"`
	Status    string    `bun:"status,notnull"`
	OwnerID   string    `bun:"owner_id,nullzero"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
