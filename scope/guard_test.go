package scope

import (
	"context"
	"testing"

	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestGuardRequiresActor(t *testing.T) {
	err := NopGuard().Enforce(context.Background(), types.Actor{}, types.PolicyActionActivityRead, types.EntityKey{})
	require.ErrorIs(t, err, types.ErrActorRequired)
}

func TestEnsureReturnsUsableGuard(t *testing.T) {
	g := Ensure(nil)
	require.NoError(t, g.Enforce(context.Background(), types.Actor{ID: "u1"}, types.PolicyActionMetricsRead, types.EntityKey{}))
}

func TestReadRolesPolicy(t *testing.T) {
	g := NewGuard(ReadRolesPolicy(
		[]types.PolicyAction{types.PolicyActionMetricsRead},
		types.ActorRoleAdmin, types.ActorRoleEditor,
	))
	ctx := context.Background()

	require.NoError(t, g.Enforce(ctx, types.Actor{ID: "a1", Role: types.ActorRoleAdmin}, types.PolicyActionMetricsRead, types.EntityKey{}))
	require.NoError(t, g.Enforce(ctx, types.Actor{ID: "e1", Role: "EDITOR"}, types.PolicyActionMetricsRead, types.EntityKey{}))
	require.ErrorIs(t,
		g.Enforce(ctx, types.Actor{ID: "u1", Role: types.ActorRoleUser}, types.PolicyActionMetricsRead, types.EntityKey{}),
		types.ErrUnauthorized)
	require.NoError(t, g.Enforce(ctx, types.Actor{ID: "u1", Role: types.ActorRoleUser}, types.PolicyActionEntitiesModerate, types.EntityKey{}))
}
