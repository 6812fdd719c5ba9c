package moderation

import "github.com/goliatone/go-moderation/service"

// Re-export the service package entry point so consumers can do
// `moderation.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the go-moderation runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
