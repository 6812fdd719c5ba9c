package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-moderation/activity"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/scope"
)

const (
	// DefaultActivityLimit is used by transports when no limit is supplied.
	DefaultActivityLimit = 50
	// MaxActivityLimit bounds a single activity page.
	MaxActivityLimit = 200
)

// ActivityListFilter requests the newest activity entries.
type ActivityListFilter struct {
	Actor types.Actor
	Limit int
}

// ActivityListQuery renders the bounded activity feed for the dashboard.
type ActivityListQuery struct {
	repo     types.ActivityRepository
	guard    scope.Guard
	mask     *masker.Masker
	exposure activity.MetadataExposureStrategy
	max      int
}

// ActivityListOption customizes the activity list query.
type ActivityListOption func(*ActivityListQuery)

// WithActivityMasker overrides the masker used on entry payloads.
func WithActivityMasker(mask *masker.Masker) ActivityListOption {
	return func(q *ActivityListQuery) {
		if mask != nil {
			q.mask = mask
		}
	}
}

// WithMetadataExposure selects how entry data is returned to readers.
func WithMetadataExposure(strategy activity.MetadataExposureStrategy) ActivityListOption {
	return func(q *ActivityListQuery) {
		q.exposure = strategy
	}
}

// WithMaxActivityLimit overrides the clamp applied to requested limits.
func WithMaxActivityLimit(limit int) ActivityListOption {
	return func(q *ActivityListQuery) {
		if limit > 0 {
			q.max = limit
		}
	}
}

// NewActivityListQuery constructs the feed query.
func NewActivityListQuery(repo types.ActivityRepository, guard scope.Guard, opts ...ActivityListOption) *ActivityListQuery {
	q := &ActivityListQuery{
		repo:  repo,
		guard: scope.Ensure(guard),
		max:   MaxActivityLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(q)
		}
	}
	if q.mask == nil {
		q.mask = activity.DefaultMasker()
	}
	return q
}

var _ gocommand.Querier[ActivityListFilter, types.ActivityPage] = (*ActivityListQuery)(nil)

// Query returns at most Limit entries, newest first. Limits above the maximum
// are clamped, non-positive limits are rejected.
func (q *ActivityListQuery) Query(ctx context.Context, filter ActivityListFilter) (types.ActivityPage, error) {
	if q.repo == nil {
		return types.ActivityPage{}, types.ErrMissingActivityRepository
	}
	if err := q.guard.Enforce(ctx, filter.Actor, types.PolicyActionActivityRead, types.EntityKey{}); err != nil {
		return types.ActivityPage{}, err
	}
	if filter.Limit <= 0 {
		return types.ActivityPage{}, types.NewInvalidArgument("limit", "must be a positive integer")
	}
	limit := filter.Limit
	if limit > q.max {
		limit = q.max
	}

	page, err := q.repo.ListActivity(ctx, limit)
	if err != nil {
		return types.ActivityPage{}, types.WrapStoreError("activity.list", err)
	}
	page.Limit = limit
	if len(page.Activities) > limit {
		page.Activities = page.Activities[:limit]
	}
	page.Activities = activity.ExposeEntries(q.exposure, q.mask, page.Activities)
	return page, nil
}
