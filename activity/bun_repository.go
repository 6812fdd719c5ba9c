package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-moderation/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const tableName = "moderation_activity"

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type activityStore interface {
	repository.Repository[*LogEntry]
}

// Repository persists activity entries and exposes the read helpers used by
// the dashboard. Appends are serialized so sequence numbers stay gapless.
type Repository struct {
	activityStore
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator

	mu      sync.Mutex
	seq     int64
	seqInit bool
}

// NewRepository constructs a repository that implements both ActivitySink
// and ActivityRepository interfaces.
func NewRepository(cfg RepositoryConfig, opts ...RepositoryOption) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("activity: db or repository required")
	}
	options := applyRepositoryOptions(opts)
	repo := cfg.Repository
	if repo == nil {
		repo = newBaseRepository(cfg.DB)
	}
	if options.CacheEnabled {
		cached, err := wrapWithCache(repo, options.CacheConfig)
		if err != nil {
			return nil, err
		}
		repo = cached
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		activityStore: repo,
		db:            cfg.DB,
		clock:         clock,
		idGen:         idGen,
	}, nil
}

func newBaseRepository(db *bun.DB) repository.Repository[*LogEntry] {
	return repository.NewRepository(db, repository.ModelHandlers[*LogEntry]{
		NewRecord: func() *LogEntry { return &LogEntry{} },
		GetID: func(entry *LogEntry) uuid.UUID {
			if entry == nil {
				return uuid.Nil
			}
			return entry.ID
		},
		SetID: func(entry *LogEntry, id uuid.UUID) {
			if entry != nil {
				entry.ID = id
			}
		},
	})
}

func wrapWithCache(repo repository.Repository[*LogEntry], cfg *cache.Config) (repository.Repository[*LogEntry], error) {
	if _, ok := repo.(*repositorycache.CachedRepository[*LogEntry]); ok {
		return repo, nil
	}
	config := cache.DefaultConfig()
	if cfg != nil {
		config = *cfg
	}
	service, err := cache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("activity: cache service: %w", err)
	}
	return repositorycache.New(repo, service, cache.NewDefaultKeySerializer()), nil
}

var (
	_ repository.Repository[*LogEntry] = (*Repository)(nil)
	_ types.ActivitySink               = (*Repository)(nil)
	_ types.ActivityRepository         = (*Repository)(nil)
)

// Append persists the entry and assigns the next sequence number.
func (r *Repository) Append(ctx context.Context, entry types.ActivityLogEntry) (types.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadSeq(ctx); err != nil {
		return types.ActivityLogEntry{}, types.WrapStoreError("activity.seq", err)
	}
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = r.clock.Now()
	}
	entry.OccurredAt = entry.OccurredAt.UTC()
	entry.Seq = r.seq + 1

	if _, err := r.Create(ctx, toLogEntry(entry)); err != nil {
		return types.ActivityLogEntry{}, types.WrapStoreError("activity.create", err)
	}
	r.seq = entry.Seq
	entry.Data = cloneMap(entry.Data)
	return entry, nil
}

// ListActivity returns the newest entries first, ties broken by sequence.
// With a DB it queries bun directly: the cache key ignores closure criteria,
// so a cached List would serve one page for every limit.
func (r *Repository) ListActivity(ctx context.Context, limit int) (types.ActivityPage, error) {
	newestFirst := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("occurred_at DESC").
			OrderExpr("seq DESC").
			Limit(limit)
	}

	var (
		rows  []*LogEntry
		total int
		err   error
	)
	if r.db != nil {
		total, err = newestFirst(r.db.NewSelect().Model(&rows)).ScanAndCount(ctx)
	} else {
		rows, total, err = r.List(ctx, newestFirst)
	}
	if err != nil {
		return types.ActivityPage{}, types.WrapStoreError("activity.list", err)
	}
	entries := make([]types.ActivityLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toActivityEntry(row))
	}
	return types.ActivityPage{
		Total:      total,
		Limit:      limit,
		Activities: entries,
	}, nil
}

// ActivityBetween returns entries with since <= OccurredAt < until, oldest first.
func (r *Repository) ActivityBetween(ctx context.Context, since, until time.Time) ([]types.ActivityLogEntry, error) {
	window := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("occurred_at >= ?", since.UTC()).
			Where("occurred_at < ?", until.UTC()).
			OrderExpr("occurred_at ASC").
			OrderExpr("seq ASC")
	}

	var rows []*LogEntry
	if r.db != nil {
		if err := window(r.db.NewSelect().Model(&rows)).Scan(ctx); err != nil {
			return nil, types.WrapStoreError("activity.between", err)
		}
	} else {
		listed, _, err := r.List(ctx, window)
		if err != nil {
			return nil, types.WrapStoreError("activity.between", err)
		}
		rows = listed
	}

	entries := make([]types.ActivityLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, toActivityEntry(row))
	}
	return entries, nil
}

// loadSeq seeds the in-memory sequence from the highest persisted value.
// Callers must hold r.mu.
func (r *Repository) loadSeq(ctx context.Context) error {
	if r.seqInit {
		return nil
	}
	var latest int64
	if r.db != nil {
		if err := r.db.NewSelect().
			Table(tableName).
			ColumnExpr("COALESCE(MAX(seq), 0)").
			Scan(ctx, &latest); err != nil {
			return err
		}
	} else {
		rows, _, err := r.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("seq DESC").Limit(1)
		})
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			latest = rows[0].Seq
		}
	}
	r.seq = latest
	r.seqInit = true
	return nil
}

func toLogEntry(entry types.ActivityLogEntry) *LogEntry {
	return &LogEntry{
		ID:              entry.ID,
		Seq:             entry.Seq,
		ActorID:         entry.ActorID,
		Action:          entry.Action,
		EntityKind:      string(entry.EntityKind),
		EntityID:        entry.EntityID,
		PreviousStatus:  string(entry.PreviousStatus),
		ResultingStatus: string(entry.ResultingStatus),
		Data:            cloneMap(entry.Data),
		OccurredAt:      entry.OccurredAt,
	}
}

func toActivityEntry(row *LogEntry) types.ActivityLogEntry {
	if row == nil {
		return types.ActivityLogEntry{}
	}
	return types.ActivityLogEntry{
		ID:              row.ID,
		Seq:             row.Seq,
		ActorID:         row.ActorID,
		Action:          row.Action,
		EntityKind:      types.EntityKind(row.EntityKind),
		EntityID:        row.EntityID,
		PreviousStatus:  types.Status(row.PreviousStatus),
		ResultingStatus: types.Status(row.ResultingStatus),
		Data:            cloneMap(row.Data),
		OccurredAt:      row.OccurredAt.UTC(),
	}
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
