package activity

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-moderation/pkg/types"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func TestRepository_AppendAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)

	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	stored, err := store.Append(ctx, transitionEntry("r1", types.StatusReview, t0, map[string]any{"reason": "ready"}))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, stored.ID)
	require.Equal(t, int64(1), stored.Seq)

	page, err := store.ListActivity(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Activities, 1)
	require.Equal(t, "entity.status.transition", page.Activities[0].Action)
	require.Equal(t, types.StatusReview, page.Activities[0].ResultingStatus)
	require.Equal(t, types.StatusDraft, page.Activities[0].PreviousStatus)
	require.Equal(t, "ready", page.Activities[0].Data["reason"])
	require.True(t, t0.Equal(page.Activities[0].OccurredAt))
}

func TestRepository_ListOrdersNewestFirstWithSeqTieBreak(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	_, err = store.Append(ctx, transitionEntry("a", types.StatusReview, t0, nil))
	require.NoError(t, err)
	_, err = store.Append(ctx, transitionEntry("b", types.StatusReview, t0.Add(time.Minute), nil))
	require.NoError(t, err)
	_, err = store.Append(ctx, transitionEntry("c", types.StatusReview, t0.Add(time.Minute), nil))
	require.NoError(t, err)

	page, err := store.ListActivity(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.Limit)
	require.Len(t, page.Activities, 2)
	require.Equal(t, "c", page.Activities[0].EntityID)
	require.Equal(t, "b", page.Activities[1].EntityID)
}

func TestRepository_SeqResumesFromStoredRows(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)

	first, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := first.Append(ctx, transitionEntry("r1", types.StatusReview, t0, nil))
		require.NoError(t, err)
	}

	second, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)
	stored, err := second.Append(ctx, transitionEntry("r1", types.StatusPublished, t0, nil))
	require.NoError(t, err)
	require.Equal(t, int64(3), stored.Seq)
}

func TestRepository_ActivityBetweenIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	for _, offset := range []time.Duration{-time.Second, 0, 30 * time.Second, time.Minute} {
		_, err := store.Append(ctx, transitionEntry("r1", types.StatusReview, t0.Add(offset), nil))
		require.NoError(t, err)
	}

	entries, err := store.ActivityBetween(ctx, t0, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.True(t, t0.Equal(entries[0].OccurredAt))
	require.True(t, t0.Add(30*time.Second).Equal(entries[1].OccurredAt))
}

func TestRepository_AppendFailureIsStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	_, err = store.Append(ctx, transitionEntry("r1", types.StatusReview, t0, nil))
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestRepository_CacheWrapsRepository(t *testing.T) {
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)

	repo, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	cached, ok := repo.activityStore.(*repositorycache.CachedRepository[*LogEntry])
	require.True(t, ok)

	again, err := NewRepository(RepositoryConfig{DB: db, Repository: cached}, WithCache(true))
	require.NoError(t, err)
	require.Same(t, cached, again.activityStore)
}

func TestRepository_CachedListHonoursEachLimit(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db}, WithCache(true))
	require.NoError(t, err)

	for i, id := range []string{"a", "b", "c"} {
		_, err := store.Append(ctx, transitionEntry(id, types.StatusReview, t0.Add(time.Duration(i)*time.Minute), nil))
		require.NoError(t, err)
	}

	page, err := store.ListActivity(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Activities, 1)
	require.Equal(t, "c", page.Activities[0].EntityID)

	page, err = store.ListActivity(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, page.Activities, 3)
	require.Equal(t, "a", page.Activities[2].EntityID)
}

func TestRepository_ConcurrentAppendsKeepSequenceGapless(t *testing.T) {
	ctx := context.Background()
	db := newTestActivityDB(t)
	applyActivityDDL(t, db)
	store, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)

	const writers = 24
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Append(ctx, transitionEntry(fmt.Sprintf("r%d", i), types.StatusReview, t0, nil))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	page, err := store.ListActivity(ctx, writers)
	require.NoError(t, err)
	require.Equal(t, writers, page.Total)
	require.Len(t, page.Activities, writers)

	seen := make(map[int64]bool, writers)
	for i, entry := range page.Activities {
		require.False(t, seen[entry.Seq], "duplicate seq %d", entry.Seq)
		seen[entry.Seq] = true
		require.Equal(t, int64(writers-i), entry.Seq, "same timestamp entries are ordered by seq")
	}
}

func TestSanitizeEntryMasksDefaultFields(t *testing.T) {
	entry := types.ActivityLogEntry{
		Data: map[string]any{
			"password": "secret-value",
			"token":    "abcd1234",
			"secret":   "shh",
		},
	}
	out := SanitizeEntry(DefaultMasker(), entry)
	require.NotEqual(t, "secret-value", out.Data["password"])
	require.NotEqual(t, "abcd1234", out.Data["token"])
	require.NotEqual(t, "shh", out.Data["secret"])
	require.Equal(t, "abcd1234", entry.Data["token"])
}

func transitionEntry(id string, status types.Status, at time.Time, data map[string]any) types.ActivityLogEntry {
	return types.ActivityLogEntry{
		ActorID:         "admin1",
		Action:          "entity.status.transition",
		EntityKind:      types.EntityKindRecipe,
		EntityID:        id,
		PreviousStatus:  types.StatusDraft,
		ResultingStatus: status,
		Data:            data,
		OccurredAt:      at,
	}
}

func newTestActivityDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyActivityDDL(t *testing.T, db *bun.DB) {
	content, err := os.ReadFile("../data/sql/migrations/sqlite/00002_moderation_activity.up.sql")
	require.NoError(t, err)
	for _, stmt := range splitStatements(string(content)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func splitStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var builder strings.Builder
	var statements []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}

func TestExposeEntriesStrategies(t *testing.T) {
	entries := []types.ActivityLogEntry{{
		EntityID: "r1",
		Data:     map[string]any{"reason": "ok", "token": "abcd1234"},
	}}

	none := ExposeEntries(MetadataExposeNone, nil, entries)
	require.Nil(t, none[0].Data)

	all := ExposeEntries(MetadataExposeAll, nil, entries)
	require.Equal(t, "abcd1234", all[0].Data["token"])
	all[0].Data["reason"] = "changed"
	require.Equal(t, "ok", entries[0].Data["reason"])

	sanitized := ExposeEntries(MetadataExposeSanitized, DefaultMasker(), entries)
	require.Equal(t, "ok", sanitized[0].Data["reason"])
	require.NotEqual(t, "abcd1234", sanitized[0].Data["token"])
	require.NotNil(t, entries[0].Data)
}
