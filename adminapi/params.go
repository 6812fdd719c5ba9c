package adminapi

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-moderation/pkg/types"
)

const (
	// DefaultWindow is the metrics range used when from is omitted.
	DefaultWindow = 24 * time.Hour
	// DefaultBucket is the metrics bucket width used when bucket is omitted.
	DefaultBucket = time.Hour
	// DefaultLimit is the activity page size used when limit is omitted.
	DefaultLimit = 50
)

// parseLimit reads the activity limit. An empty value falls back to
// DefaultLimit; non-numeric values are rejected so the query can report the
// field instead of silently defaulting.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.NewInvalidArgument("limit", "must be an integer")
	}
	return parsed, nil
}

// parseWindow builds the metrics window from the raw from, to and bucket
// query values. from and to are unix milliseconds. bucket accepts either
// milliseconds or a duration such as 15m.
func parseWindow(rawFrom, rawTo, rawBucket string, now time.Time) (types.MetricsWindow, error) {
	to := now.UTC().UnixMilli()
	if value, ok, err := parseMillis(rawTo, "to"); err != nil {
		return types.MetricsWindow{}, err
	} else if ok {
		to = value
	}

	from := to - DefaultWindow.Milliseconds()
	if from > to {
		from = math.MinInt64
	}
	if value, ok, err := parseMillis(rawFrom, "from"); err != nil {
		return types.MetricsWindow{}, err
	} else if ok {
		from = value
	}

	bucket := DefaultBucket.Milliseconds()
	if raw := strings.TrimSpace(rawBucket); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			bucket = parsed
		} else if duration, err := time.ParseDuration(raw); err == nil {
			bucket = duration.Milliseconds()
		} else {
			return types.MetricsWindow{}, types.NewInvalidArgument("bucketSizeMs", "must be milliseconds or a duration")
		}
	}

	return types.MetricsWindow{From: from, To: to, BucketSizeMs: bucket}, nil
}

func parseMillis(raw, field string) (int64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return parsed, true, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC().UnixMilli(), true, nil
	}
	return 0, false, types.NewInvalidArgument(field, "must be unix milliseconds or RFC3339")
}

func parseEntityKey(rawKind, rawID string) (types.EntityKey, error) {
	kind, ok := types.ParseEntityKind(rawKind)
	if !ok {
		return types.EntityKey{}, types.NewInvalidArgument("kind", "unknown entity kind")
	}
	id := strings.TrimSpace(rawID)
	if id == "" {
		return types.EntityKey{}, types.NewInvalidArgument("id", "required")
	}
	return types.EntityKey{Kind: kind, ID: id}, nil
}

func parseTarget(raw string) (types.Status, error) {
	status, ok := types.ParseStatus(raw)
	if !ok {
		return "", types.NewInvalidArgument("status", "unknown status")
	}
	return status, nil
}
