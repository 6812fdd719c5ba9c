package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-moderation/command"
	"github.com/goliatone/go-moderation/pkg/authctx"
	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-moderation/query"
	"github.com/goliatone/go-moderation/service"
	"github.com/goliatone/go-router"
)

// Config wires the handlers to a configured service.
type Config struct {
	Service *service.Service
	Clock   types.Clock
	Logger  types.Logger
}

// Handlers serves the admin dashboard endpoints.
type Handlers struct {
	moderate *command.ModerateCommand
	activity *query.ActivityListQuery
	metrics  *query.MetricsOverviewQuery
	clock    types.Clock
	logger   types.Logger
}

// NewHandlers validates the config and captures the service facades.
func NewHandlers(cfg Config) (*Handlers, error) {
	if cfg.Service == nil {
		return nil, types.ErrServiceNotReady
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	commands := cfg.Service.Commands()
	queries := cfg.Service.Queries()
	return &Handlers{
		moderate: commands.Moderate,
		activity: queries.ActivityList,
		metrics:  queries.MetricsOverview,
		clock:    clock,
		logger:   logger,
	}, nil
}

// MetricsOverview handles GET /metrics/overview?from=&to=&bucket=.
func (h *Handlers) MetricsOverview() router.HandlerFunc {
	return func(c router.Context) error {
		actor, err := authctx.ResolveActorFromRouter(c)
		if err != nil {
			return h.writeError(c, err)
		}
		view, err := h.metricsOverview(c.Context(), actor, c.Query("from"), c.Query("to"), c.Query("bucket"))
		if err != nil {
			return h.writeError(c, err)
		}
		return writeJSON(c, http.StatusOK, view)
	}
}

// ActivityList handles GET /activity?limit=N.
func (h *Handlers) ActivityList() router.HandlerFunc {
	return func(c router.Context) error {
		actor, err := authctx.ResolveActorFromRouter(c)
		if err != nil {
			return h.writeError(c, err)
		}
		view, err := h.activityList(c.Context(), actor, c.Query("limit"))
		if err != nil {
			return h.writeError(c, err)
		}
		return writeJSON(c, http.StatusOK, view)
	}
}

// Transition handles POST /entities/:kind/:id/transition with the status and
// reason form values.
func (h *Handlers) Transition() router.HandlerFunc {
	return func(c router.Context) error {
		actor, err := authctx.ResolveActorFromRouter(c)
		if err != nil {
			return h.writeError(c, err)
		}
		view, err := h.transition(c.Context(), actor,
			c.Param("kind", ""), c.Param("id", ""),
			c.FormValue("status"), c.FormValue("reason"))
		if err != nil {
			return h.writeError(c, err)
		}
		return writeJSON(c, http.StatusOK, view)
	}
}

func (h *Handlers) metricsOverview(ctx context.Context, actor types.Actor, rawFrom, rawTo, rawBucket string) (snapshotView, error) {
	window, err := parseWindow(rawFrom, rawTo, rawBucket, h.clock.Now())
	if err != nil {
		return snapshotView{}, err
	}
	snapshot, err := h.metrics.Query(ctx, query.MetricsOverviewInput{Actor: actor, Window: window})
	if err != nil {
		return snapshotView{}, err
	}
	return toSnapshotView(snapshot), nil
}

func (h *Handlers) activityList(ctx context.Context, actor types.Actor, rawLimit string) (activityPageView, error) {
	limit, err := parseLimit(rawLimit)
	if err != nil {
		return activityPageView{}, err
	}
	page, err := h.activity.Query(ctx, query.ActivityListFilter{Actor: actor, Limit: limit})
	if err != nil {
		return activityPageView{}, err
	}
	return toActivityPageView(page), nil
}

func (h *Handlers) transition(ctx context.Context, actor types.Actor, rawKind, rawID, rawStatus, reason string) (transitionView, error) {
	key, err := parseEntityKey(rawKind, rawID)
	if err != nil {
		return transitionView{}, err
	}
	target, err := parseTarget(rawStatus)
	if err != nil {
		return transitionView{}, err
	}
	var result command.ModerateResult
	if err := h.moderate.Execute(ctx, command.ModerateInput{
		Kind:     key.Kind,
		EntityID: key.ID,
		Target:   target,
		Actor:    actor,
		Reason:   reason,
		Result:   &result,
	}); err != nil {
		return transitionView{}, err
	}
	view := transitionView{
		Entity:  toEntityView(result.Entity),
		Changed: result.Changed,
	}
	if result.Entry != nil {
		entry := toActivityView(*result.Entry)
		view.Entry = &entry
	}
	return view, nil
}

func (h *Handlers) writeError(c router.Context, err error) error {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("admin api request failed", err, "status", status)
	} else {
		h.logger.Debug("admin api request rejected", "status", status, "error", err.Error())
	}
	data, marshalErr := json.Marshal(envelope{Success: false, Error: toErrorBody(err)})
	if marshalErr != nil {
		return errors.Join(err, marshalErr)
	}
	c.SetHeader("Content-Type", "application/json")
	return c.Status(status).Send(data)
}

func writeJSON(c router.Context, status int, payload any) error {
	data, err := json.Marshal(envelope{Success: true, Data: payload})
	if err != nil {
		return err
	}
	c.SetHeader("Content-Type", "application/json")
	return c.Status(status).Send(data)
}
