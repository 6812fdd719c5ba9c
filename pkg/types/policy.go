package types

// TransitionPolicy validates status transitions.
type TransitionPolicy interface {
	Validate(current, target Status) error
	AllowedTargets(current Status) []Status
}

// StaticTransitionPolicy enforces a fixed transition graph.
type StaticTransitionPolicy struct {
	graph map[Status]map[Status]struct{}
	order map[Status][]Status
}

// NewStaticTransitionPolicy creates a policy from a transition graph.
func NewStaticTransitionPolicy(graph map[Status][]Status) *StaticTransitionPolicy {
	internal := make(map[Status]map[Status]struct{}, len(graph))
	order := make(map[Status][]Status, len(graph))
	for from, targets := range graph {
		targetSet := make(map[Status]struct{}, len(targets))
		for _, to := range targets {
			if to == "" {
				continue
			}
			if _, seen := targetSet[to]; seen {
				continue
			}
			targetSet[to] = struct{}{}
			order[from] = append(order[from], to)
		}
		internal[from] = targetSet
	}
	return &StaticTransitionPolicy{graph: internal, order: order}
}

// DefaultTransitionPolicy returns the moderation table:
// draft→review, review→published/rejected/draft, published→review,
// rejected→draft.
func DefaultTransitionPolicy() *StaticTransitionPolicy {
	return NewStaticTransitionPolicy(map[Status][]Status{
		StatusDraft:     {StatusReview},
		StatusReview:    {StatusPublished, StatusRejected, StatusDraft},
		StatusPublished: {StatusReview},
		StatusRejected:  {StatusDraft},
	})
}

// Validate ensures the target is allowed from the current state.
func (p *StaticTransitionPolicy) Validate(current, target Status) error {
	if current == "" || target == "" {
		return ErrInvalidTransition
	}
	targets, ok := p.graph[current]
	if !ok {
		return ErrInvalidTransition
	}
	if _, ok := targets[target]; !ok {
		return ErrInvalidTransition
	}
	return nil
}

// AllowedTargets returns the valid targets from the provided state in table
// order.
func (p *StaticTransitionPolicy) AllowedTargets(current Status) []Status {
	targets := p.order[current]
	if len(targets) == 0 {
		return nil
	}
	out := make([]Status, len(targets))
	copy(out, targets)
	return out
}
