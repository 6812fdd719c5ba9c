package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Apply runs the up migrations of every registered filesystem in file order.
// It is meant for tests, demos and single-node SQLite deployments; production
// hosts should feed Filesystems() into their own runner.
func Apply(ctx context.Context, db *sql.DB, dialect string) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := normalizeDialect(dialect)
	if err != nil {
		return err
	}
	pattern := "data/sql/migrations/*.up.sql"
	if normalized == "sqlite" {
		pattern = "data/sql/migrations/sqlite/*.up.sql"
	}
	for _, fsys := range Filesystems() {
		files, err := fs.Glob(fsys, pattern)
		if err != nil {
			return err
		}
		sort.Strings(files)
		for _, file := range files {
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				return err
			}
			for _, stmt := range splitStatements(string(content)) {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migrations: %s: %w", file, err)
				}
			}
		}
	}
	return nil
}

func normalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

func splitStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
