package activity

import (
	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-moderation/pkg/types"
)

// MetadataExposureStrategy controls how entry data is exposed on read.
type MetadataExposureStrategy int

const (
	// MetadataExposeSanitized returns data after masking sensitive keys.
	MetadataExposeSanitized MetadataExposureStrategy = iota
	// MetadataExposeNone drops the data payload.
	MetadataExposeNone
	// MetadataExposeAll returns raw data (intended for development/debug).
	MetadataExposeAll
)

// ExposeEntries applies the strategy to entries read from the log. The input
// slice is never modified.
func ExposeEntries(strategy MetadataExposureStrategy, mask *masker.Masker, entries []types.ActivityLogEntry) []types.ActivityLogEntry {
	switch strategy {
	case MetadataExposeAll:
		out := make([]types.ActivityLogEntry, len(entries))
		for i, entry := range entries {
			entry.Data = cloneMap(entry.Data)
			out[i] = entry
		}
		return out
	case MetadataExposeNone:
		out := make([]types.ActivityLogEntry, len(entries))
		for i, entry := range entries {
			entry.Data = nil
			out[i] = entry
		}
		return out
	default:
		return SanitizeEntries(mask, entries)
	}
}
