package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/scope"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// MaxMetricsBuckets bounds the timeseries produced for one window.
	MaxMetricsBuckets = 10000
	defaultCacheSize  = 64
)

// MetricsOverviewInput requests a dashboard snapshot for the window.
type MetricsOverviewInput struct {
	Actor  types.Actor
	Window types.MetricsWindow
}

// MetricsOverviewQuery aggregates entity totals and activity buckets.
type MetricsOverviewQuery struct {
	store    types.EntityStore
	activity types.ActivityRepository
	guard    scope.Guard
	clock    types.Clock
	versions types.VersionSource
	cache    *lru.Cache[metricsCacheKey, types.MetricsSnapshot]
}

type metricsCacheKey struct {
	window  types.MetricsWindow
	version uint64
}

// MetricsOverviewConfig wires the aggregator.
type MetricsOverviewConfig struct {
	Store     types.EntityStore
	Activity  types.ActivityRepository
	Guard     scope.Guard
	Clock     types.Clock
	Versions  types.VersionSource
	CacheSize int
}

// NewMetricsOverviewQuery constructs the aggregator. Snapshots are cached only
// when a version source is supplied, since the cache key depends on it.
func NewMetricsOverviewQuery(cfg MetricsOverviewConfig) *MetricsOverviewQuery {
	q := &MetricsOverviewQuery{
		store:    cfg.Store,
		activity: cfg.Activity,
		guard:    scope.Ensure(cfg.Guard),
		clock:    cfg.Clock,
		versions: cfg.Versions,
	}
	if q.clock == nil {
		q.clock = types.SystemClock{}
	}
	if cfg.Versions != nil && cfg.CacheSize >= 0 {
		size := cfg.CacheSize
		if size == 0 {
			size = defaultCacheSize
		}
		if cache, err := lru.New[metricsCacheKey, types.MetricsSnapshot](size); err == nil {
			q.cache = cache
		}
	}
	return q
}

var _ gocommand.Querier[MetricsOverviewInput, types.MetricsSnapshot] = (*MetricsOverviewQuery)(nil)

// Query computes the snapshot. Any read failure fails the whole call.
func (q *MetricsOverviewQuery) Query(ctx context.Context, input MetricsOverviewInput) (types.MetricsSnapshot, error) {
	if q.store == nil {
		return types.MetricsSnapshot{}, types.ErrMissingEntityStore
	}
	if q.activity == nil {
		return types.MetricsSnapshot{}, types.ErrMissingActivityRepository
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionMetricsRead, types.EntityKey{}); err != nil {
		return types.MetricsSnapshot{}, err
	}
	window := input.Window
	if err := ValidateWindow(window); err != nil {
		return types.MetricsSnapshot{}, err
	}

	var key metricsCacheKey
	if q.cache != nil {
		key = metricsCacheKey{window: window, version: q.versions.Version()}
		if cached, ok := q.cache.Get(key); ok {
			return cloneSnapshot(cached), nil
		}
	}

	counts, err := q.store.CountByStatus(ctx)
	if err != nil {
		return types.MetricsSnapshot{}, types.WrapStoreError("entity.count_by_status", err)
	}
	since, until := window.Bounds()
	entries, err := q.activity.ActivityBetween(ctx, since, until)
	if err != nil {
		return types.MetricsSnapshot{}, types.WrapStoreError("activity.between", err)
	}

	snapshot := types.MetricsSnapshot{
		Totals:      buildTotals(counts),
		Timeseries:  buildTimeseries(window, entries),
		Window:      window,
		GeneratedAt: q.clock.Now(),
	}
	if q.cache != nil {
		q.cache.Add(key, cloneSnapshot(snapshot))
	}
	return snapshot, nil
}

// ValidateWindow checks bucket size, ordering and the bucket ceiling.
func ValidateWindow(window types.MetricsWindow) error {
	switch {
	case window.BucketSizeMs <= 0:
		return types.NewInvalidArgument("bucketSizeMs", "must be positive")
	case window.To <= window.From:
		return types.NewInvalidArgument("to", "must be after from")
	case window.BucketCount() > MaxMetricsBuckets:
		return types.NewInvalidArgument("bucketSizeMs", "window spans too many buckets")
	default:
		return nil
	}
}

// buildTotals returns a complete kind x status grid, zero filled.
func buildTotals(counts []types.StatusCount) map[types.EntityKind]map[types.Status]int {
	totals := make(map[types.EntityKind]map[types.Status]int, len(types.EntityKinds()))
	for _, kind := range types.EntityKinds() {
		row := make(map[types.Status]int, len(types.Statuses()))
		for _, status := range types.Statuses() {
			row[status] = 0
		}
		totals[kind] = row
	}
	for _, count := range counts {
		row, ok := totals[count.Kind]
		if !ok || !count.Status.Valid() {
			continue
		}
		row[count.Status] += count.Count
	}
	return totals
}

func buildTimeseries(window types.MetricsWindow, entries []types.ActivityLogEntry) []types.MetricsBucket {
	n := window.BucketCount()
	buckets := make([]types.MetricsBucket, n)
	for i := range buckets {
		buckets[i].BucketStart = window.BucketStart(int64(i))
	}
	for _, entry := range entries {
		ts := entry.OccurredAt.UnixMilli()
		if ts < window.From || ts >= window.To {
			continue
		}
		buckets[window.BucketIndex(ts)].Count++
	}
	return buckets
}

func cloneSnapshot(src types.MetricsSnapshot) types.MetricsSnapshot {
	out := src
	out.Totals = make(map[types.EntityKind]map[types.Status]int, len(src.Totals))
	for kind, row := range src.Totals {
		cloned := make(map[types.Status]int, len(row))
		for status, count := range row {
			cloned[status] = count
		}
		out.Totals[kind] = cloned
	}
	out.Timeseries = append([]types.MetricsBucket(nil), src.Timeseries...)
	return out
}
