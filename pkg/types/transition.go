package types

// Transition validates a status change for a single entity and returns the
// updated copy. A target equal to the current status is a no-op that always
// succeeds; changed reports whether a mutation happened.
func Transition(policy TransitionPolicy, guard RoleGuard, entity ModeratedEntity, target Status, actor Actor) (updated ModeratedEntity, changed bool, err error) {
	if target == entity.Status {
		return entity, false, nil
	}
	if !target.Valid() || !entity.Status.Valid() {
		return entity, false, ErrInvalidTransition
	}
	if err := policy.Validate(entity.Status, target); err != nil {
		return entity, false, err
	}
	if err := guard.Authorize(actor, entity, target); err != nil {
		return entity, false, err
	}
	entity.Status = target
	return entity, true, nil
}

// AllowedTargets lists the statuses the actor may currently move the entity
// into.
func AllowedTargets(policy TransitionPolicy, guard RoleGuard, entity ModeratedEntity, actor Actor) []Status {
	candidates := policy.AllowedTargets(entity.Status)
	out := make([]Status, 0, len(candidates))
	for _, target := range candidates {
		if guard.Authorize(actor, entity, target) == nil {
			out = append(out, target)
		}
	}
	return out
}
