package query

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	adminActor = types.Actor{ID: "admin1", Role: types.ActorRoleAdmin}
	userActor  = types.Actor{ID: "u1", Role: types.ActorRoleUser}
	baseTime   = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
)

func TestActivityListQuery_LimitValidation(t *testing.T) {
	repo := &memoryActivityRepo{}
	q := NewActivityListQuery(repo, nil)
	ctx := context.Background()

	for _, limit := range []int{-1, 0} {
		_, err := q.Query(ctx, ActivityListFilter{Actor: adminActor, Limit: limit})
		require.ErrorIs(t, err, types.ErrInvalidArgument)
		var invalid *types.InvalidArgumentError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, "limit", invalid.Field)
	}
}

func TestActivityListQuery_ReturnsNewestFirst(t *testing.T) {
	repo := &memoryActivityRepo{}
	for i := 0; i < 3; i++ {
		repo.add(types.ActivityLogEntry{ActorID: "u1", Action: "entity.status.transition", EntityKind: types.EntityKindRecipe, EntityID: "r1", ResultingStatus: types.StatusReview, OccurredAt: baseTime.Add(time.Duration(i) * time.Minute)})
	}
	q := NewActivityListQuery(repo, nil)

	page, err := q.Query(context.Background(), ActivityListFilter{Actor: adminActor, Limit: 5})
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 5, page.Limit)
	require.Len(t, page.Activities, 3)
	require.Equal(t, int64(3), page.Activities[0].Seq)
	require.Equal(t, int64(1), page.Activities[2].Seq)
}

func TestActivityListQuery_ClampsLimit(t *testing.T) {
	repo := &memoryActivityRepo{}
	q := NewActivityListQuery(repo, nil)

	page, err := q.Query(context.Background(), ActivityListFilter{Actor: adminActor, Limit: 5000})
	require.NoError(t, err)
	require.Equal(t, MaxActivityLimit, page.Limit)
	require.Equal(t, MaxActivityLimit, repo.lastLimit)

	q = NewActivityListQuery(repo, nil, WithMaxActivityLimit(2))
	page, err = q.Query(context.Background(), ActivityListFilter{Actor: adminActor, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, 2, page.Limit)
}

func TestActivityListQuery_MasksPayload(t *testing.T) {
	repo := &memoryActivityRepo{}
	repo.add(types.ActivityLogEntry{ActorID: "u1", Action: "entity.status.transition", EntityKind: types.EntityKindRecipe, EntityID: "r1", ResultingStatus: types.StatusReview, Data: map[string]any{"reason": "ok", "token": "super-secret-token"}})
	q := NewActivityListQuery(repo, nil)

	page, err := q.Query(context.Background(), ActivityListFilter{Actor: adminActor, Limit: 1})
	require.NoError(t, err)
	require.Equal(t, "ok", page.Activities[0].Data["reason"])
	require.NotEqual(t, "super-secret-token", page.Activities[0].Data["token"])
	require.Equal(t, "super-secret-token", repo.entries[0].Data["token"], "stored entry must not be mutated")
}

func TestActivityListQuery_GuardAndStoreErrors(t *testing.T) {
	repo := &memoryActivityRepo{}
	guard := scope.NewGuard(scope.ReadRolesPolicy([]types.PolicyAction{types.PolicyActionActivityRead}, types.ActorRoleAdmin))
	q := NewActivityListQuery(repo, guard)
	ctx := context.Background()

	_, err := q.Query(ctx, ActivityListFilter{Actor: userActor, Limit: 5})
	require.ErrorIs(t, err, types.ErrUnauthorized)

	_, err = q.Query(ctx, ActivityListFilter{Limit: 5})
	require.ErrorIs(t, err, types.ErrActorRequired)

	repo.err = errors.New("timeout")
	_, err = q.Query(ctx, ActivityListFilter{Actor: adminActor, Limit: 5})
	require.ErrorIs(t, err, types.ErrStoreUnavailable)

	_, err = NewActivityListQuery(nil, nil).Query(ctx, ActivityListFilter{Actor: adminActor, Limit: 5})
	require.ErrorIs(t, err, types.ErrMissingActivityRepository)
}

func TestMetricsOverviewQuery_TwoBuckets(t *testing.T) {
	repo := &memoryActivityRepo{}
	repo.add(types.ActivityLogEntry{OccurredAt: baseTime.Add(30 * time.Second)})
	repo.add(types.ActivityLogEntry{OccurredAt: baseTime.Add(90 * time.Second)})
	store := &countingStore{}
	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: store, Activity: repo})

	from := baseTime.UnixMilli()
	snapshot, err := q.Query(context.Background(), MetricsOverviewInput{
		Actor:  adminActor,
		Window: types.MetricsWindow{From: from, To: from + 120000, BucketSizeMs: 60000},
	})
	require.NoError(t, err)
	require.Equal(t, []types.MetricsBucket{
		{BucketStart: from, Count: 1},
		{BucketStart: from + 60000, Count: 1},
	}, snapshot.Timeseries)
}

func TestMetricsOverviewQuery_TotalsGridIsComplete(t *testing.T) {
	store := &countingStore{counts: []types.StatusCount{
		{Kind: types.EntityKindRecipe, Status: types.StatusPublished, Count: 4},
		{Kind: types.EntityKindComment, Status: types.StatusReview, Count: 2},
	}}
	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: store, Activity: &memoryActivityRepo{}})

	from := baseTime.UnixMilli()
	snapshot, err := q.Query(context.Background(), MetricsOverviewInput{
		Actor:  adminActor,
		Window: types.MetricsWindow{From: from, To: from + 1000, BucketSizeMs: 1000},
	})
	require.NoError(t, err)
	require.Len(t, snapshot.Totals, len(types.EntityKinds()))
	for _, kind := range types.EntityKinds() {
		require.Len(t, snapshot.Totals[kind], len(types.Statuses()), "kind %s", kind)
	}
	require.Equal(t, 4, snapshot.Totals[types.EntityKindRecipe][types.StatusPublished])
	require.Equal(t, 2, snapshot.Totals[types.EntityKindComment][types.StatusReview])
	require.Equal(t, 0, snapshot.Totals[types.EntityKindMedia][types.StatusDraft])
}

func TestMetricsOverviewQuery_PartialTrailingBucket(t *testing.T) {
	repo := &memoryActivityRepo{}
	repo.add(types.ActivityLogEntry{OccurredAt: baseTime.Add(150 * time.Second)})
	repo.add(types.ActivityLogEntry{OccurredAt: baseTime.Add(170 * time.Second)})
	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: &countingStore{}, Activity: repo})

	from := baseTime.UnixMilli()
	snapshot, err := q.Query(context.Background(), MetricsOverviewInput{
		Actor:  adminActor,
		Window: types.MetricsWindow{From: from, To: from + 160000, BucketSizeMs: 60000},
	})
	require.NoError(t, err)
	require.Len(t, snapshot.Timeseries, 3)
	require.Equal(t, from+120000, snapshot.Timeseries[2].BucketStart)
	require.Equal(t, 1, snapshot.Timeseries[2].Count, "entries at or after to are excluded")
}

func TestMetricsOverviewQuery_InvalidWindow(t *testing.T) {
	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: &countingStore{}, Activity: &memoryActivityRepo{}})
	ctx := context.Background()

	cases := []struct {
		name   string
		window types.MetricsWindow
		field  string
	}{
		{name: "zero bucket", window: types.MetricsWindow{From: 0, To: 1000, BucketSizeMs: 0}, field: "bucketSizeMs"},
		{name: "negative bucket", window: types.MetricsWindow{From: 0, To: 1000, BucketSizeMs: -5}, field: "bucketSizeMs"},
		{name: "to equals from", window: types.MetricsWindow{From: 1000, To: 1000, BucketSizeMs: 10}, field: "to"},
		{name: "to before from", window: types.MetricsWindow{From: 1000, To: 10, BucketSizeMs: 10}, field: "to"},
		{name: "too many buckets", window: types.MetricsWindow{From: 0, To: MaxMetricsBuckets + 1, BucketSizeMs: 1}, field: "bucketSizeMs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := q.Query(ctx, MetricsOverviewInput{Actor: adminActor, Window: tc.window})
			var invalid *types.InvalidArgumentError
			require.True(t, errors.As(err, &invalid))
			require.Equal(t, tc.field, invalid.Field)
		})
	}
}

func TestMetricsOverviewQuery_WideWindowDoesNotOverflow(t *testing.T) {
	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: &countingStore{}, Activity: &memoryActivityRepo{}})
	ctx := context.Background()

	_, err := q.Query(ctx, MetricsOverviewInput{
		Actor:  adminActor,
		Window: types.MetricsWindow{From: -1 << 62, To: 1 << 62, BucketSizeMs: 3},
	})
	var invalid *types.InvalidArgumentError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "bucketSizeMs", invalid.Field)

	_, err = q.Query(ctx, MetricsOverviewInput{
		Actor:  adminActor,
		Window: types.MetricsWindow{From: math.MinInt64, To: math.MaxInt64, BucketSizeMs: 1},
	})
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	repo := &memoryActivityRepo{}
	repo.add(types.ActivityLogEntry{OccurredAt: baseTime})
	q = NewMetricsOverviewQuery(MetricsOverviewConfig{Store: &countingStore{}, Activity: repo})
	snapshot, err := q.Query(ctx, MetricsOverviewInput{
		Actor:  adminActor,
		Window: types.MetricsWindow{From: -1 << 62, To: 1 << 62, BucketSizeMs: 1 << 62},
	})
	require.NoError(t, err)
	require.Equal(t, []types.MetricsBucket{
		{BucketStart: -1 << 62, Count: 0},
		{BucketStart: 0, Count: 1},
	}, snapshot.Timeseries)
}

func TestMetricsOverviewQuery_ReadFailureIsFatal(t *testing.T) {
	window := types.MetricsWindow{From: 0, To: 1000, BucketSizeMs: 100}

	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: &countingStore{err: errors.New("down")}, Activity: &memoryActivityRepo{}})
	_, err := q.Query(context.Background(), MetricsOverviewInput{Actor: adminActor, Window: window})
	require.ErrorIs(t, err, types.ErrStoreUnavailable)

	q = NewMetricsOverviewQuery(MetricsOverviewConfig{Store: &countingStore{}, Activity: &memoryActivityRepo{err: errors.New("down")}})
	_, err = q.Query(context.Background(), MetricsOverviewInput{Actor: adminActor, Window: window})
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestMetricsOverviewQuery_CacheFollowsMutationVersion(t *testing.T) {
	store := &countingStore{}
	versions := &types.MutationCounter{}
	q := NewMetricsOverviewQuery(MetricsOverviewConfig{Store: store, Activity: &memoryActivityRepo{}, Versions: versions})
	ctx := context.Background()
	input := MetricsOverviewInput{Actor: adminActor, Window: types.MetricsWindow{From: 0, To: 1000, BucketSizeMs: 100}}

	first, err := q.Query(ctx, input)
	require.NoError(t, err)
	first.Totals[types.EntityKindRecipe][types.StatusDraft] = 99

	second, err := q.Query(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
	require.Equal(t, 0, second.Totals[types.EntityKindRecipe][types.StatusDraft], "cached snapshots are copied")

	versions.Bump()
	_, err = q.Query(ctx, input)
	require.NoError(t, err)
	require.Equal(t, 2, store.calls)
}

type memoryActivityRepo struct {
	mu        sync.Mutex
	entries   []types.ActivityLogEntry
	err       error
	lastLimit int
}

func (r *memoryActivityRepo) add(entry types.ActivityLogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.New()
	entry.Seq = int64(len(r.entries) + 1)
	r.entries = append(r.entries, entry)
}

func (r *memoryActivityRepo) ListActivity(_ context.Context, limit int) (types.ActivityPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	if r.err != nil {
		return types.ActivityPage{}, r.err
	}
	ordered := append([]types.ActivityLogEntry(nil), r.entries...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].OccurredAt.Equal(ordered[j].OccurredAt) {
			return ordered[i].OccurredAt.After(ordered[j].OccurredAt)
		}
		return ordered[i].Seq > ordered[j].Seq
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return types.ActivityPage{Total: len(r.entries), Limit: limit, Activities: ordered}, nil
}

func (r *memoryActivityRepo) ActivityBetween(_ context.Context, since, until time.Time) ([]types.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []types.ActivityLogEntry
	for _, entry := range r.entries {
		if !entry.OccurredAt.Before(since) && entry.OccurredAt.Before(until) {
			out = append(out, entry)
		}
	}
	return out, nil
}

type countingStore struct {
	counts []types.StatusCount
	err    error
	calls  int
}

func (s *countingStore) GetEntity(context.Context, types.EntityKind, string) (*types.ModeratedEntity, error) {
	return nil, types.ErrEntityNotFound
}

func (s *countingStore) UpdateStatus(context.Context, types.EntityKind, string, types.Status) (*types.ModeratedEntity, error) {
	return nil, types.ErrEntityNotFound
}

func (s *countingStore) CountByStatus(context.Context) ([]types.StatusCount, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]types.StatusCount(nil), s.counts...), nil
}
