package command

import (
	"context"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-moderation/pkg/types"
)

const featureModerationTransitions = "moderation.transitions"

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, actor types.Actor) (bool, error) {
	if gate == nil {
		return true, nil
	}
	if actor.ID == "" {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeChain(featuregate.ScopeChain{
		{Kind: featuregate.ScopeUser, ID: actor.ID},
		{Kind: featuregate.ScopeSystem},
	}))
}
