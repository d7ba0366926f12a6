package cache

import (
	"context"
	"testing"
	"time"

	dom "Tasker/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*TaskCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTaskCache(rdb, time.Minute), mr
}

func mustSet(t *testing.T, c *TaskCache, userID int64, list []dom.Task) {
	t.Helper()
	ok, err := c.SetList(context.Background(), userID, 0, list)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTaskCache_MissThenHit(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	got, err := c.GetList(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	list := []dom.Task{{ID: 10, UserID: 1, Title: "milk", IsCompleted: true}}
	_, err = c.SetList(ctx, 1, 0, list)
	require.NoError(t, err)
	assert.True(t, mr.Exists("tasks:user:1"))
	assert.Equal(t, time.Minute, mr.TTL("tasks:user:1"))

	got, err = c.GetList(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "milk", got[0].Title)
	assert.True(t, got[0].IsCompleted)

	other, err := c.GetList(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, other, "lists are per owner")
}

func TestTaskCache_EmptyListIsAHit(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, err := c.SetList(ctx, 5, 0, nil)
	require.NoError(t, err)
	got, err := c.GetList(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTaskCache_Invalidate(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	mustSet(t, c, 1, []dom.Task{{Title: "a"}})
	mustSet(t, c, 2, []dom.Task{{Title: "b"}})
	require.NoError(t, c.Invalidate(ctx, 1))

	assert.False(t, mr.Exists("tasks:user:1"))
	assert.True(t, mr.Exists("tasks:user:2"))
}

func TestTaskCache_Expiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	mustSet(t, c, 1, []dom.Task{{Title: "a"}})
	mr.FastForward(2 * time.Minute)

	got, err := c.GetList(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaskCache_RedisDown(t *testing.T) {
	c, mr := setupCache(t)
	mr.Close()

	_, err := c.GetList(context.Background(), 1)
	assert.Error(t, err)
}

func TestTaskCache_StaleGenerationIsNotStored(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Invalidate(ctx, 1))
	assert.Equal(t, "1", mustGet(t, mr, "tasks:user:1:gen"))

	ok, err := c.SetList(ctx, 1, gen, []dom.Task{{Title: "old"}})
	require.NoError(t, err)
	assert.False(t, ok, "list read before the write is dropped")
	assert.False(t, mr.Exists("tasks:user:1"))

	gen, err = c.Generation(ctx, 1)
	require.NoError(t, err)
	ok, err = c.SetList(ctx, 1, gen, []dom.Task{{Title: "new"}})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := c.GetList(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Title)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
