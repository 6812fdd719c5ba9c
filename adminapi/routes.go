package adminapi

import (
	"github.com/goliatone/go-router"
)

// Register mounts the admin endpoints under /admin on the supplied router,
// typically the host's /api group. Middleware (for example the go-auth
// protected route handler) is applied to every route.
func Register[T any](r router.Router[T], h *Handlers, middleware ...router.MiddlewareFunc) {
	admin := r.Group("/admin")
	admin.Get("/metrics/overview", h.MetricsOverview(), middleware...)
	admin.Get("/activity", h.ActivityList(), middleware...)
	admin.Post("/entities/:kind/:id/transition", h.Transition(), middleware...)
}
