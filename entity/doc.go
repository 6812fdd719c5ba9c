// Package entity provides the default Bun-backed EntityStore. It only reads
// and writes the moderation columns (kind, id, status, owner); the host owns
// the rest of each entity.
package entity
