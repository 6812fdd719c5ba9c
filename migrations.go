package moderation

import (
	"embed"
	"io/fs"
)

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// The migrations are organized in a dialect-aware structure:
//   - Root files (data/sql/migrations/*.sql) contain PostgreSQL migrations
//   - SQLite overrides are in data/sql/migrations/sqlite/*.sql
//
// Usage with the migrations registry:
//
//	import _ "github.com/goliatone/go-moderation/migrations"
//
//	for _, fsys := range migrations.Filesystems() {
//	    // feed fsys into your migration runner
//	}
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var MigrationsFS embed.FS

// GetMigrationsFS exposes the SQL migration files so host applications can
// register them with their migration runner.
func GetMigrationsFS() embed.FS {
	return MigrationsFS
}

// GetDialectMigrationsFS returns the migrations for the given dialect rooted
// at the directory holding the .sql files. Unknown dialects get PostgreSQL.
func GetDialectMigrationsFS(dialect string) (fs.FS, error) {
	switch dialect {
	case "sqlite", "sqlite3":
		return fs.Sub(MigrationsFS, "data/sql/migrations/sqlite")
	default:
		return fs.Sub(MigrationsFS, "data/sql/migrations")
	}
}
