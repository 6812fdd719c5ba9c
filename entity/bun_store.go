package entity

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/uptrace/bun"
)

// StoreConfig wires the Bun-backed entity store.
type StoreConfig struct {
	DB    *bun.DB
	Clock types.Clock
}

// Store implements types.EntityStore over the moderated_entities table.
type Store struct {
	db    *bun.DB
	clock types.Clock
}

// NewStore constructs the default entity store.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.DB == nil {
		return nil, errors.New("entity: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Store{db: cfg.DB, clock: clock}, nil
}

var _ types.EntityStore = (*Store)(nil)

// GetEntity loads a single entity by kind and id.
func (s *Store) GetEntity(ctx context.Context, kind types.EntityKind, id string) (*types.ModeratedEntity, error) {
	record := &Record{}
	err := s.db.NewSelect().
		Model(record).
		Where("kind = ?", string(kind)).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrEntityNotFound
		}
		return nil, types.WrapStoreError("entity.get", err)
	}
	entity := toEntity(record)
	return &entity, nil
}

// UpdateStatus writes the new status and returns the stored entity.
func (s *Store) UpdateStatus(ctx context.Context, kind types.EntityKind, id string, status types.Status) (*types.ModeratedEntity, error) {
	res, err := s.db.NewUpdate().
		Model((*Record)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", s.clock.Now().UTC()).
		Where("kind = ?", string(kind)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return nil, types.WrapStoreError("entity.update_status", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return nil, types.ErrEntityNotFound
	}
	return s.GetEntity(ctx, kind, id)
}

// CountByStatus returns one row per observed (kind, status) pair.
func (s *Store) CountByStatus(ctx context.Context) ([]types.StatusCount, error) {
	type row struct {
		Kind   string `bun:"kind"`
		Status string `bun:"status"`
		Total  int    `bun:"total"`
	}
	var rows []row
	err := s.db.NewSelect().
		Table("moderated_entities").
		ColumnExpr("kind").
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS total").
		Group("kind", "status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, types.WrapStoreError("entity.count_by_status", err)
	}
	out := make([]types.StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, types.StatusCount{
			Kind:   types.EntityKind(r.Kind),
			Status: types.Status(r.Status),
			Count:  r.Total,
		})
	}
	return out, nil
}

// Upsert inserts or replaces an entity row. Hosts use it to mirror entities
// they own into the moderation table.
func (s *Store) Upsert(ctx context.Context, entity types.ModeratedEntity) error {
	if !entity.Kind.Valid() {
		return types.NewInvalidArgument("kind", "unknown entity kind")
	}
	if entity.ID == "" {
		return types.NewInvalidArgument("id", "required")
	}
	if entity.Status == "" {
		entity.Status = types.StatusDraft
	}
	if !entity.Status.Valid() {
		return types.NewInvalidArgument("status", "unknown status")
	}
	record := &Record{
		Kind:      string(entity.Kind),
		ID:        entity.ID,
		Status:    string(entity.Status),
		OwnerID:   entity.OwnerID,
		UpdatedAt: s.clock.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (kind, id) DO UPDATE").
		Set("status = EXCLUDED.status").
		Set("owner_id = EXCLUDED.owner_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return types.WrapStoreError("entity.upsert", err)
	}
	return nil
}

func toEntity(record *Record) types.ModeratedEntity {
	return types.ModeratedEntity{
		ID:      record.ID,
		Kind:    types.EntityKind(record.Kind),
		Status:  types.Status(record.Status),
		OwnerID: record.OwnerID,
	}
}
