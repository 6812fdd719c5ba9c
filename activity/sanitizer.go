package activity

import (
	"sync"

	"github.com/goliatone/go-masker"
	"github.com/goliatone/go-moderation/pkg/types"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns a configured masker instance with the default denylist.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerDefaultMaskFields(masker.Default)
	})
	return masker.Default
}

// SanitizeEntry masks sensitive values in the entry data payload. Entries
// whose payload cannot be masked are returned with an empty payload.
func SanitizeEntry(mask *masker.Masker, entry types.ActivityLogEntry) types.ActivityLogEntry {
	if len(entry.Data) == 0 {
		return entry
	}
	if mask == nil {
		mask = DefaultMasker()
	}
	if mask == nil {
		entry.Data = map[string]any{}
		return entry
	}

	cloned := cloneStringMap(entry.Data)
	masked, err := mask.Mask(cloned)
	if err != nil {
		entry.Data = map[string]any{}
		return entry
	}

	switch masked := masked.(type) {
	case map[string]any:
		entry.Data = masked
	default:
		entry.Data = map[string]any{}
	}
	return entry
}

// SanitizeEntries masks every entry in the slice without touching the input.
func SanitizeEntries(mask *masker.Masker, entries []types.ActivityLogEntry) []types.ActivityLogEntry {
	if len(entries) == 0 {
		return entries
	}
	out := make([]types.ActivityLogEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, SanitizeEntry(mask, entry))
	}
	return out
}

func registerDefaultMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	for _, field := range []string{"secret", "token", "password", "email", "ip"} {
		mask.RegisterMaskField(field, "filled4")
	}
}

func cloneStringMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
