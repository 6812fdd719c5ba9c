package types

import "strings"

// ActorRole is the role resolved by the auth collaborator.
type ActorRole string

const (
	// ActorRoleAdmin may perform every transition in the table.
	ActorRoleAdmin ActorRole = "admin"
	// ActorRoleEditor may submit entities for review.
	ActorRoleEditor ActorRole = "editor"
	// ActorRoleUser may only submit its own drafts for review.
	ActorRoleUser ActorRole = "user"
)

// Actor is the authenticated identity requesting a moderation action.
type Actor struct {
	ID   string
	Role ActorRole
}

// RoleName normalizes the actor role for comparisons.
func (a Actor) RoleName() ActorRole {
	return normalizeRole(a.Role)
}

// IsRole reports whether the actor matches the provided role.
func (a Actor) IsRole(role ActorRole) bool {
	return a.RoleName() == normalizeRole(role)
}

// IsAdmin reports whether the actor is an administrator.
func (a Actor) IsAdmin() bool {
	return a.IsRole(ActorRoleAdmin)
}

// IsEditor reports whether the actor is an editor.
func (a Actor) IsEditor() bool {
	return a.IsRole(ActorRoleEditor)
}

// Owns reports whether the actor owns the entity.
func (a Actor) Owns(entity ModeratedEntity) bool {
	return a.ID != "" && entity.OwnerID == a.ID
}

func normalizeRole(role ActorRole) ActorRole {
	return ActorRole(strings.ToLower(strings.TrimSpace(string(role))))
}

// RoleGuard authorizes a single transition edge for an actor.
type RoleGuard interface {
	Authorize(actor Actor, entity ModeratedEntity, target Status) error
}

// RoleGuardFunc adapts bare functions to RoleGuard.
type RoleGuardFunc func(actor Actor, entity ModeratedEntity, target Status) error

// Authorize implements RoleGuard.
func (f RoleGuardFunc) Authorize(actor Actor, entity ModeratedEntity, target Status) error {
	return f(actor, entity, target)
}

// EdgeGuard decides whether an actor may move an entity along one edge.
type EdgeGuard func(actor Actor, entity ModeratedEntity) bool

// TableRoleGuard resolves the guard per target status.
type TableRoleGuard struct {
	guards map[Status]EdgeGuard
}

// NewTableRoleGuard builds a guard from per-target functions. Targets with no
// guard are denied.
func NewTableRoleGuard(guards map[Status]EdgeGuard) *TableRoleGuard {
	copied := make(map[Status]EdgeGuard, len(guards))
	for status, guard := range guards {
		if guard != nil {
			copied[status] = guard
		}
	}
	return &TableRoleGuard{guards: copied}
}

// DefaultRoleGuard returns the moderation guard table:
// published/rejected/draft are admin-only, review is open to admins, editors
// and owners submitting their own draft. Editors cannot send an entity back
// to draft (review→draft and rejected→draft need an admin).
func DefaultRoleGuard() *TableRoleGuard {
	return NewTableRoleGuard(map[Status]EdgeGuard{
		StatusPublished: adminOnly,
		StatusRejected:  adminOnly,
		StatusDraft:     adminOnly,
		StatusReview: func(actor Actor, entity ModeratedEntity) bool {
			switch actor.RoleName() {
			case ActorRoleAdmin, ActorRoleEditor:
				return true
			case ActorRoleUser:
				return actor.Owns(entity) && entity.Status == StatusDraft
			default:
				return false
			}
		},
	})
}

func adminOnly(actor Actor, _ ModeratedEntity) bool {
	return actor.IsAdmin()
}

// Authorize implements RoleGuard.
func (g *TableRoleGuard) Authorize(actor Actor, entity ModeratedEntity, target Status) error {
	guard, ok := g.guards[target]
	if !ok || !guard(actor, entity) {
		return ErrUnauthorized
	}
	return nil
}
