package types

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityKind identifies the moderatable domain object family.
type EntityKind string

const (
	EntityKindRecipe   EntityKind = "recipe"
	EntityKindComment  EntityKind = "comment"
	EntityKindCategory EntityKind = "category"
	EntityKindTag      EntityKind = "tag"
	EntityKindMedia    EntityKind = "media"
	EntityKindUser     EntityKind = "user"
)

// EntityKinds returns every supported kind in a stable order.
func EntityKinds() []EntityKind {
	return []EntityKind{
		EntityKindRecipe,
		EntityKindComment,
		EntityKindCategory,
		EntityKindTag,
		EntityKindMedia,
		EntityKindUser,
	}
}

// Valid reports whether the kind belongs to the closed set.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityKindRecipe, EntityKindComment, EntityKindCategory,
		EntityKindTag, EntityKindMedia, EntityKindUser:
		return true
	default:
		return false
	}
}

// ParseEntityKind normalizes raw transport values into an EntityKind.
func ParseEntityKind(raw string) (EntityKind, bool) {
	kind := EntityKind(strings.ToLower(strings.TrimSpace(raw)))
	return kind, kind.Valid()
}

// Status represents the moderation status shared by every entity kind.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusReview    Status = "review"
	StatusPublished Status = "published"
	StatusRejected  Status = "rejected"
)

// Statuses returns every supported status in a stable order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusReview, StatusPublished, StatusRejected}
}

// Valid reports whether the status belongs to the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished, StatusRejected:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes raw transport values into a Status.
func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	return status, status.Valid()
}

// ModeratedEntity is the moderation view of a stored entity. Only Status is
// ever mutated by this module.
type ModeratedEntity struct {
	ID      string
	Kind    EntityKind
	Status  Status
	OwnerID string
}

// EntityKey identifies an entity across kinds.
type EntityKey struct {
	Kind EntityKind
	ID   string
}

// Key returns the composite identifier for the entity.
func (e ModeratedEntity) Key() EntityKey {
	return EntityKey{Kind: e.Kind, ID: e.ID}
}

// String renders the key as kind:id.
func (k EntityKey) String() string {
	return string(k.Kind) + ":" + k.ID
}

// ActivityLogEntry is a single immutable moderation audit record.
type ActivityLogEntry struct {
	ID              uuid.UUID
	Seq             int64
	ActorID         string
	Action          string
	EntityKind      EntityKind
	EntityID        string
	PreviousStatus  Status
	ResultingStatus Status
	Data            map[string]any
	OccurredAt      time.Time
}

// ActivityPage is the bounded, newest-first view of the activity log.
type ActivityPage struct {
	Total      int
	Limit      int
	Activities []ActivityLogEntry
}

// StatusCount is a grouped (kind, status) counter produced by entity stores.
type StatusCount struct {
	Kind   EntityKind
	Status Status
	Count  int
}

// MetricsWindow describes the half-open [From, To) range, in unix
// milliseconds, bucketed by BucketSizeMs.
type MetricsWindow struct {
	From         int64
	To           int64
	BucketSizeMs int64
}

// Bounds returns the window edges as UTC times.
func (w MetricsWindow) Bounds() (time.Time, time.Time) {
	return time.UnixMilli(w.From).UTC(), time.UnixMilli(w.To).UTC()
}

// BucketCount returns how many buckets the window spans, counting a trailing
// partial bucket.
func (w MetricsWindow) BucketCount() int64 {
	if w.BucketSizeMs <= 0 || w.To <= w.From {
		return 0
	}
	// unsigned so windows wider than math.MaxInt64 do not wrap negative
	span := uint64(w.To) - uint64(w.From)
	size := uint64(w.BucketSizeMs)
	count := span / size
	if span%size != 0 {
		count++
	}
	if count > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(count)
}

// BucketIndex returns the bucket holding ts. Callers must ensure
// From <= ts < To.
func (w MetricsWindow) BucketIndex(ts int64) int64 {
	return int64((uint64(ts) - uint64(w.From)) / uint64(w.BucketSizeMs))
}

// BucketStart returns the start of the i-th bucket.
func (w MetricsWindow) BucketStart(i int64) int64 {
	return int64(uint64(w.From) + uint64(i)*uint64(w.BucketSizeMs))
}

// MetricsBucket is a single point in the activity timeseries.
type MetricsBucket struct {
	BucketStart int64
	Count       int
}

// MetricsSnapshot powers the admin dashboard overview.
type MetricsSnapshot struct {
	Totals      map[EntityKind]map[Status]int
	Timeseries  []MetricsBucket
	Window      MetricsWindow
	GeneratedAt time.Time
}

// EntityStore is the external collaborator holding moderatable entities.
type EntityStore interface {
	GetEntity(ctx context.Context, kind EntityKind, id string) (*ModeratedEntity, error)
	UpdateStatus(ctx context.Context, kind EntityKind, id string, status Status) (*ModeratedEntity, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

// ActivitySink is the write side of the activity log. Keep it limited to
// Append so hosts can swap sinks without breaking changes.
type ActivitySink interface {
	Append(ctx context.Context, entry ActivityLogEntry) (ActivityLogEntry, error)
}

// ActivityRepository exposes read-side access to the activity log. Limits are
// already validated and clamped by the caller.
type ActivityRepository interface {
	ListActivity(ctx context.Context, limit int) (ActivityPage, error)
	ActivityBetween(ctx context.Context, since, until time.Time) ([]ActivityLogEntry, error)
}

// ActivityLog combines both sides of the log.
type ActivityLog interface {
	ActivitySink
	ActivityRepository
}

// TransitionEvent is emitted after a status change is committed.
type TransitionEvent struct {
	Entity     ModeratedEntity
	FromStatus Status
	ToStatus   Status
	Actor      Actor
	Reason     string
	OccurredAt time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterTransition func(context.Context, TransitionEvent)
	AfterActivity   func(context.Context, ActivityLogEntry)
}

// VersionSource reports a counter that moves on every committed mutation.
type VersionSource interface {
	Version() uint64
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}
