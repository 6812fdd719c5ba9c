package authctx

import (
	"context"
	"testing"
	"time"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
)

func TestResolveActorContextPrefersStoredActor(t *testing.T) {
	ctx := context.Background()
	expected := &auth.ActorContext{
		ActorID: "admin1",
		Role:    "admin",
	}
	ctx = auth.WithActorContext(ctx, expected)

	actual, err := ResolveActorContext(ctx)
	if err != nil {
		t.Fatalf("ResolveActorContext returned error: %v", err)
	}
	if actual.ActorID != expected.ActorID {
		t.Fatalf("expected actor %s, got %s", expected.ActorID, actual.ActorID)
	}
}

func TestResolveActorContextFallsBackToClaims(t *testing.T) {
	ctx := context.Background()
	actorID := "2c9b2d4e-5a61-4f7e-8d21-0b6f3a9e4c17"
	tenantID := "7d1f0f5e-3b3a-4f0c-9a59-2a8f5c0c6b11"
	claims := &stubClaims{
		subject:  actorID,
		uid:      actorID,
		role:     "editor",
		metadata: map[string]any{"tenant_id": tenantID},
	}
	ctx = auth.WithClaimsContext(ctx, claims)

	actual, err := ResolveActorContext(ctx)
	if err != nil {
		t.Fatalf("expected fallback to claims, got error: %v", err)
	}
	if actual.ActorID != actorID {
		t.Fatalf("expected actor %s, got %s", actorID, actual.ActorID)
	}
	if actual.TenantID != tenantID {
		t.Fatalf("expected tenant %s, got %s", tenantID, actual.TenantID)
	}
}

func TestResolveActorContextMissingReturnsRichError(t *testing.T) {
	_, err := ResolveActorContext(context.Background())
	if err == nil {
		t.Fatal("expected error when context lacks auth metadata")
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		t.Fatalf("expected go-errors.Error, got %T", err)
	}
	if richErr.TextCode != textCodeActorMissing {
		t.Fatalf("expected text code %s, got %s", textCodeActorMissing, richErr.TextCode)
	}
}

func TestActorFromActorContext(t *testing.T) {
	actor, err := ActorFromActorContext(&auth.ActorContext{
		ActorID: "admin1",
		Role:    " Admin ",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if actor.ID != "admin1" {
		t.Fatalf("expected id admin1, got %s", actor.ID)
	}
	if !actor.IsAdmin() {
		t.Fatalf("expected admin role, got %s", actor.Role)
	}
}

func TestActorFromActorContextMissingID(t *testing.T) {
	_, err := ActorFromActorContext(&auth.ActorContext{
		ActorID: "  ",
		Role:    "editor",
	})
	if err == nil {
		t.Fatal("expected error for missing actor id")
	}
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		t.Fatalf("expected go-errors.Error, got %T", err)
	}
	if richErr.TextCode != textCodeActorInvalid {
		t.Fatalf("expected text code %s, got %s", textCodeActorInvalid, richErr.TextCode)
	}
}

func TestResolveActorKeepsUnknownRoles(t *testing.T) {
	ctx := auth.WithActorContext(context.Background(), &auth.ActorContext{
		ActorID: "u9",
		Role:    "guest",
	})
	actor, actorCtx, err := ResolveActor(ctx)
	if err != nil {
		t.Fatalf("ResolveActor returned error: %v", err)
	}
	if actorCtx == nil || actorCtx.ActorID != "u9" {
		t.Fatalf("expected actor context for u9, got %+v", actorCtx)
	}
	if actor.Role != "guest" {
		t.Fatalf("expected role guest, got %s", actor.Role)
	}
}

type stubClaims struct {
	subject  string
	uid      string
	role     string
	metadata map[string]any
	res      map[string]string
}

func (s *stubClaims) Subject() string                  { return s.subject }
func (s *stubClaims) UserID() string                   { return s.uid }
func (s *stubClaims) Role() string                     { return s.role }
func (s *stubClaims) CanRead(string) bool              { return true }
func (s *stubClaims) CanEdit(string) bool              { return true }
func (s *stubClaims) CanCreate(string) bool            { return true }
func (s *stubClaims) CanDelete(string) bool            { return true }
func (s *stubClaims) HasRole(role string) bool         { return s.role == role }
func (s *stubClaims) IsAtLeast(string) bool            { return true }
func (s *stubClaims) Expires() time.Time               { return time.Time{} }
func (s *stubClaims) IssuedAt() time.Time              { return time.Time{} }
func (s *stubClaims) ResourceRoles() map[string]string { return s.res }
func (s *stubClaims) ClaimsMetadata() map[string]any   { return s.metadata }
