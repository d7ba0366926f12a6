package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	dom "Tasker/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyUserTasks = "tasks:user:"

// TaskCache caches each owner's task list in Redis.
// Every owner also has a generation counter that Invalidate bumps; a list is only
// stored if the generation it was read under is still current.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached list for userID or nil if miss.
// An empty cached list is returned as a non-nil empty slice.
func (c *TaskCache) GetList(ctx context.Context, userID int64) ([]dom.Task, error) {
	b, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []dom.Task{}
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Generation returns the current generation of userID's list. Read it before
// loading the list from the store and pass it to SetList.
func (c *TaskCache) Generation(ctx context.Context, userID int64) (int64, error) {
	return readGen(ctx, c.rdb, userID)
}

// SetList stores the list for userID if gen is still the current generation.
// It reports false when a write invalidated the list in the meantime.
func (c *TaskCache) SetList(ctx context.Context, userID, gen int64, list []dom.Task) (bool, error) {
	if list == nil {
		list = []dom.Task{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return false, err
	}

	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := readGen(ctx, tx, userID)
		if err != nil || cur != gen {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, listKey(userID), b, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, genKey(userID))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate drops the cached list for userID and bumps its generation.
func (c *TaskCache) Invalidate(ctx context.Context, userID int64) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey(userID))
		p.Del(ctx, listKey(userID))
		return nil
	})
	return err
}

func readGen(ctx context.Context, r redis.Cmdable, userID int64) (int64, error) {
	gen, err := r.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func listKey(userID int64) string {
	return keyUserTasks + strconv.FormatInt(userID, 10)
}

func genKey(userID int64) string {
	return listKey(userID) + ":gen"
}
