// Package activity provides the default persistence for the moderation
// activity log. The Repository implements both the ActivitySink (appends) and
// the ActivityRepository read contract used by the feed and metrics queries.
// Entries are append-only; nothing in this package updates or deletes rows.
// Host applications can swap the repository for a different storage engine.
package activity
