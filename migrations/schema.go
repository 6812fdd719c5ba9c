package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type schemaTable struct {
	name    string
	columns []string
}

// moderationTables lists the columns read by the entity and activity stores.
var moderationTables = []schemaTable{
	{
		name:    "moderated_entities",
		columns: []string{"kind", "id", "status", "owner_id", "updated_at"},
	},
	{
		name: "moderation_activity",
		columns: []string{
			"id", "seq", "actor_id", "action", "entity_kind", "entity_id",
			"previous_status", "resulting_status", "data", "occurred_at",
		},
	},
}

// SchemaValidationError lists what the database is missing. Columns are
// reported as table.column.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns []string
}

func (e *SchemaValidationError) Error() string {
	var parts []string
	if len(e.MissingTables) > 0 {
		parts = append(parts, "tables "+strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingColumns) > 0 {
		parts = append(parts, "columns "+strings.Join(e.MissingColumns, ", "))
	}
	return "migrations: moderation schema incomplete: missing " + strings.Join(parts, "; ")
}

// ValidateSchema checks that the moderation tables exist with the columns the
// stores read. Hosts call it after running their migrations.
func ValidateSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	report := &SchemaValidationError{}
	for _, table := range moderationTables {
		cols, err := tableColumns(ctx, db, table.name)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			report.MissingTables = append(report.MissingTables, table.name)
			continue
		}
		for _, col := range table.columns {
			if !cols[col] {
				report.MissingColumns = append(report.MissingColumns, table.name+"."+col)
			}
		}
	}
	if len(report.MissingTables) == 0 && len(report.MissingColumns) == 0 {
		return nil
	}
	return report
}

// tableColumns reads the column names from an empty result set, which works
// the same on postgres and sqlite.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	cols := make(map[string]bool, len(names))
	for _, name := range names {
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
