package adminapi

import (
	"github.com/goliatone/go-moderation/pkg/types"
)

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Message  string `json:"message"`
	Code     int    `json:"code"`
	TextCode string `json:"text_code,omitempty"`
	Category string `json:"category,omitempty"`
	Field    string `json:"field,omitempty"`
}

type bucketView struct {
	BucketStart int64 `json:"bucketStart"`
	Count       int   `json:"count"`
}

type windowView struct {
	From         int64 `json:"from"`
	To           int64 `json:"to"`
	BucketSizeMs int64 `json:"bucketSizeMs"`
}

type snapshotView struct {
	Totals      map[string]map[string]int `json:"totals"`
	Timeseries  []bucketView              `json:"timeseries"`
	Window      windowView                `json:"window"`
	GeneratedAt int64                     `json:"generatedAt"`
}

type activityView struct {
	ID              string         `json:"id"`
	Seq             int64          `json:"seq"`
	ActorID         string         `json:"actorId"`
	Action          string         `json:"action"`
	EntityKind      string         `json:"entityKind"`
	EntityID        string         `json:"entityId"`
	PreviousStatus  string         `json:"previousStatus,omitempty"`
	ResultingStatus string         `json:"resultingStatus"`
	Data            map[string]any `json:"data,omitempty"`
	Timestamp       int64          `json:"timestamp"`
}

type activityPageView struct {
	Total      int            `json:"total"`
	Limit      int            `json:"limit"`
	Activities []activityView `json:"activities"`
}

type entityView struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	OwnerID string `json:"ownerId,omitempty"`
}

type transitionView struct {
	Entity  entityView    `json:"entity"`
	Changed bool          `json:"changed"`
	Entry   *activityView `json:"entry,omitempty"`
}

func toSnapshotView(snapshot types.MetricsSnapshot) snapshotView {
	totals := make(map[string]map[string]int, len(snapshot.Totals))
	for kind, byStatus := range snapshot.Totals {
		row := make(map[string]int, len(byStatus))
		for status, count := range byStatus {
			row[string(status)] = count
		}
		totals[string(kind)] = row
	}
	series := make([]bucketView, 0, len(snapshot.Timeseries))
	for _, bucket := range snapshot.Timeseries {
		series = append(series, bucketView{BucketStart: bucket.BucketStart, Count: bucket.Count})
	}
	return snapshotView{
		Totals:     totals,
		Timeseries: series,
		Window: windowView{
			From:         snapshot.Window.From,
			To:           snapshot.Window.To,
			BucketSizeMs: snapshot.Window.BucketSizeMs,
		},
		GeneratedAt: snapshot.GeneratedAt.UnixMilli(),
	}
}

func toActivityView(entry types.ActivityLogEntry) activityView {
	return activityView{
		ID:              entry.ID.String(),
		Seq:             entry.Seq,
		ActorID:         entry.ActorID,
		Action:          entry.Action,
		EntityKind:      string(entry.EntityKind),
		EntityID:        entry.EntityID,
		PreviousStatus:  string(entry.PreviousStatus),
		ResultingStatus: string(entry.ResultingStatus),
		Data:            entry.Data,
		Timestamp:       entry.OccurredAt.UnixMilli(),
	}
}

func toActivityPageView(page types.ActivityPage) activityPageView {
	activities := make([]activityView, 0, len(page.Activities))
	for _, entry := range page.Activities {
		activities = append(activities, toActivityView(entry))
	}
	return activityPageView{
		Total:      page.Total,
		Limit:      page.Limit,
		Activities: activities,
	}
}

func toEntityView(entity types.ModeratedEntity) entityView {
	return entityView{
		ID:      entity.ID,
		Kind:    string(entity.Kind),
		Status:  string(entity.Status),
		OwnerID: entity.OwnerID,
	}
}

func toErrorBody(err error) *errorBody {
	richErr := ToError(err)
	if richErr == nil {
		return nil
	}
	body := &errorBody{
		Message:  richErr.Message,
		Code:     StatusCode(err),
		TextCode: richErr.TextCode,
		Category: string(richErr.Category),
	}
	if field, ok := richErr.Metadata["field"].(string); ok {
		body.Field = field
	}
	return body
}
