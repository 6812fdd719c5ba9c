package authctx

import (
	"context"
	"strings"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-router"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

// ActorFromContext is a thin wrapper around go-auth helpers so callers do not
// need to import auth directly when they only need the actor payload.
func ActorFromContext(ctx context.Context) (*auth.ActorContext, bool) {
	return auth.ActorFromContext(ctx)
}

// ActorFromRouterContext extracts the actor payload from router contexts using
// go-auth helpers.
func ActorFromRouterContext(ctx router.Context) (*auth.ActorContext, bool) {
	return auth.ActorFromRouterContext(ctx)
}

// ResolveActorContext returns the actor metadata stored by go-auth middleware
// or rebuilds it from JWT claims when the ContextEnricher hook was not
// configured.
func ResolveActorContext(ctx context.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-moderation: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}

	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return actor, nil
	}

	if claims, ok := auth.GetClaims(ctx); ok && claims != nil {
		if actor := auth.ActorContextFromClaims(claims); actor != nil {
			return actor, nil
		}
	}

	return nil, errors.New("go-moderation: auth actor context not found on request", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

// ResolveActorContextFromRouter mirrors ResolveActorContext for router
// transports where middleware stores actor metadata directly in the router
// context.
func ResolveActorContextFromRouter(ctx router.Context) (*auth.ActorContext, error) {
	if ctx == nil {
		return nil, errors.New("go-moderation: missing router context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}

	if actor, ok := auth.ActorFromRouterContext(ctx); ok && actor != nil {
		return actor, nil
	}

	return ResolveActorContext(ctx.Context())
}

// ResolveActor returns the moderation actor plus the richer auth payload.
func ResolveActor(ctx context.Context) (types.Actor, *auth.ActorContext, error) {
	actorCtx, err := ResolveActorContext(ctx)
	if err != nil {
		return types.Actor{}, nil, err
	}
	actor, err := ActorFromActorContext(actorCtx)
	if err != nil {
		return types.Actor{}, nil, err
	}
	return actor, actorCtx, nil
}

// ResolveActorFromRouter resolves the moderation actor for router handlers.
func ResolveActorFromRouter(ctx router.Context) (types.Actor, error) {
	actorCtx, err := ResolveActorContextFromRouter(ctx)
	if err != nil {
		return types.Actor{}, err
	}
	return ActorFromActorContext(actorCtx)
}

// ActorFromActorContext converts the auth middleware payload into the Actor
// consumed by the workflow. Roles outside admin, editor and user are kept as
// given; the role guard denies them.
func ActorFromActorContext(actor *auth.ActorContext) (types.Actor, error) {
	if actor == nil {
		return types.Actor{}, errors.New("go-moderation: actor context is nil", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	id := strings.TrimSpace(actor.ActorID)
	if id == "" {
		return types.Actor{}, errors.New("go-moderation: actor context missing actor_id", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	return types.Actor{
		ID:   id,
		Role: types.ActorRole(strings.ToLower(strings.TrimSpace(actor.Role))),
	}, nil
}
