//go:build integration

package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	dom "Tasker/internal/domain"
	"Tasker/internal/utils"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("tasker_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer db.Close()
	goose.SetBaseFS(Migrations)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, MigrationsDir))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestRepos_Postgres(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()
	users := NewPGUserRepo(pool)
	tasks := NewPGTaskRepo(pool)

	alice, err := users.Create(ctx, "alice", "hash", dom.RoleUser)
	require.NoError(t, err)
	assert.Positive(t, alice.ID)
	assert.Equal(t, dom.RoleUser, alice.Role)

	_, err = users.Create(ctx, "alice", "hash2", dom.RoleUser)
	assert.True(t, utils.IsPGUniqueViolation(err), "got %v", err)

	got, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = users.GetByUsername(ctx, "nobody")
	assert.True(t, utils.IsNoRows(err))

	admin, err := users.UpdateRole(ctx, alice.ID, dom.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, dom.RoleAdmin, admin.Role)

	byID, err := users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, dom.RoleAdmin, byID.Role)

	bob, err := users.Create(ctx, "bob", "hash", dom.RoleUser)
	require.NoError(t, err)

	_, err = tasks.Create(ctx, dom.Task{UserID: alice.ID, Title: "milk", Content: "2l"})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, dom.Task{UserID: bob.ID, Title: "milk"})
	require.NoError(t, err, "same title for another owner is fine")
	_, err = tasks.Create(ctx, dom.Task{UserID: alice.ID, Title: "milk"})
	assert.True(t, utils.IsPGUniqueViolation(err))

	list, err := tasks.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2l", list[0].Content)

	upd, err := tasks.Update(ctx, alice.ID, "milk", true, nil)
	require.NoError(t, err)
	assert.True(t, upd.IsCompleted)
	assert.Equal(t, "2l", upd.Content)

	content := "1l"
	upd, err = tasks.Update(ctx, alice.ID, "milk", false, &content)
	require.NoError(t, err)
	assert.Equal(t, "1l", upd.Content)

	_, err = tasks.Update(ctx, alice.ID, "bread", true, nil)
	assert.True(t, utils.IsNoRows(err))

	all, err := tasks.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, tasks.Delete(ctx, alice.ID, "milk"))
	assert.True(t, utils.IsNoRows(tasks.Delete(ctx, alice.ID, "milk")))

	list, err = tasks.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
