package service

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-moderation/activity"
	"github.com/goliatone/go-moderation/command"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/query"
	"github.com/goliatone/go-moderation/scope"
)

// Service is the entry point for go-moderation. It wires the stores, guards,
// hooks, and command/query facades supplied by the host application.
type Service struct {
	cfg          Config
	commands     Commands
	queries      Queries
	activityRepo types.ActivityRepository
	scopeGuard   scope.Guard
	versions     *types.MutationCounter
}

// Commands exposes the service command handlers.
type Commands struct {
	Transition   *command.StatusTransitionCommand
	LogActivity  *command.ActivityAppendCommand
	Moderate     *command.ModerateCommand
	BulkModerate *command.BulkModerateCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	ActivityList    *query.ActivityListQuery
	MetricsOverview *query.MetricsOverviewQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun-backed stores, cached repositories, hooks, etc.).
type Config struct {
	EntityStore         types.EntityStore
	ActivitySink        types.ActivitySink
	ActivityRepository  types.ActivityRepository
	Hooks               types.Hooks
	Clock               types.Clock
	IDGenerator         types.IDGenerator
	Logger              types.Logger
	TransitionPolicy    types.TransitionPolicy
	RoleGuard           types.RoleGuard
	AuthorizationPolicy types.AuthorizationPolicy
	FeatureGate         featuregate.FeatureGate
	Masker              *masker.Masker
	// MetadataExposure selects how activity data is returned on read.
	MetadataExposure activity.MetadataExposureStrategy
	// MaxActivityLimit clamps activity pages. Zero uses query.MaxActivityLimit.
	MaxActivityLimit int
	// MetricsCacheSize bounds cached snapshots. Negative disables the cache.
	MetricsCacheSize int
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	actRepo := norm.ActivityRepository
	if actRepo == nil {
		if sinkRepo, ok := norm.ActivitySink.(types.ActivityRepository); ok {
			actRepo = sinkRepo
		}
	}

	s := &Service{
		cfg:          norm,
		activityRepo: actRepo,
		scopeGuard:   scope.Ensure(scope.NewGuard(norm.AuthorizationPolicy)),
		versions:     &types.MutationCounter{},
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.TransitionPolicy == nil {
		cfg.TransitionPolicy = types.DefaultTransitionPolicy()
	}
	if cfg.RoleGuard == nil {
		cfg.RoleGuard = types.DefaultRoleGuard()
	}
	if cfg.MaxActivityLimit <= 0 {
		cfg.MaxActivityLimit = query.MaxActivityLimit
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil &&
		s.cfg.EntityStore != nil &&
		s.cfg.ActivitySink != nil &&
		s.activityRepo != nil
}

// HealthCheck surfaces missing configuration and probes the entity store with
// the grouped count used by the dashboard.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.cfg.EntityStore == nil {
		return types.ErrMissingEntityStore
	}
	if s.cfg.ActivitySink == nil {
		return types.ErrMissingActivitySink
	}
	if s.activityRepo == nil {
		return types.ErrMissingActivityRepository
	}
	if _, err := s.cfg.EntityStore.CountByStatus(ctx); err != nil {
		return types.WrapStoreError("health.count_by_status", err)
	}
	return nil
}

// ScopeGuard exposes the guard instance used internally so transports can reuse
// the same policy for HTTP adapters.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

// ActivitySink returns the configured sink so transports can record activity
// for auxiliary workflows.
func (s *Service) ActivitySink() types.ActivitySink {
	if s == nil {
		return nil
	}
	return s.cfg.ActivitySink
}

// Version reports the mutation counter that keys the metrics cache.
func (s *Service) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.versions.Version()
}

func (s *Service) buildCommands() Commands {
	transition := command.NewStatusTransitionCommand(command.TransitionCommandConfig{
		Store:       s.cfg.EntityStore,
		Policy:      s.cfg.TransitionPolicy,
		RoleGuard:   s.cfg.RoleGuard,
		ScopeGuard:  s.scopeGuard,
		FeatureGate: s.cfg.FeatureGate,
		Clock:       s.cfg.Clock,
		Logger:      s.cfg.Logger,
		Versions:    s.versions,
	})
	appendCmd := command.NewActivityAppendCommand(command.ActivityAppendConfig{
		Sink:     s.cfg.ActivitySink,
		Hooks:    s.cfg.Hooks,
		Clock:    s.cfg.Clock,
		IDGen:    s.cfg.IDGenerator,
		Versions: s.versions,
	})
	moderate := command.NewModerateCommand(transition, appendCmd, s.cfg.Hooks, s.cfg.Logger)
	return Commands{
		Transition:   transition,
		LogActivity:  appendCmd,
		Moderate:     moderate,
		BulkModerate: command.NewBulkModerateCommand(moderate),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		ActivityList: query.NewActivityListQuery(s.activityRepo, s.scopeGuard,
			query.WithActivityMasker(s.cfg.Masker),
			query.WithMaxActivityLimit(s.cfg.MaxActivityLimit),
			query.WithMetadataExposure(s.cfg.MetadataExposure),
		),
		MetricsOverview: query.NewMetricsOverviewQuery(query.MetricsOverviewConfig{
			Store:     s.cfg.EntityStore,
			Activity:  s.activityRepo,
			Guard:     s.scopeGuard,
			Clock:     s.cfg.Clock,
			Versions:  s.versions,
			CacheSize: s.cfg.MetricsCacheSize,
		}),
	}
}
