package migrations

import (
	moderation "github.com/goliatone/go-moderation"
)

func init() {
	Register(moderation.GetMigrationsFS())
}
