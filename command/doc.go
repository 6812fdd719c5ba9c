// Package command exposes go-command compatible handlers for the moderation
// write path: status transitions, activity appends and the Moderate
// orchestration that couples them. Commands are wired by the service layer
// and can be invoked by any transport.
package command
