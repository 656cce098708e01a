// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/readtrack/internal/platform/constants"
)

// RedisProgressCache implements [ProgressCache] with one Redis hash per user,
// keyed by goal id, plus a per-user generation counter. Dropping the hash
// invalidates every goal of the user; bumping the counter rejects fills that
// started before the drop.
type RedisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressCache creates a Redis-backed progress cache.
func NewRedisProgressCache(client *redis.Client, ttl time.Duration) *RedisProgressCache {
	return &RedisProgressCache{client: client, ttl: ttl}
}

func userKey(userID string) string {
	return constants.RedisPrefixGoalProgress + userID
}

func generationKey(userID string) string {
	return constants.RedisPrefixGoalGeneration + userID
}

// setIfCurrent writes the hash field only when the generation is unchanged.
// KEYS: generation, hash. ARGV: expected generation, goal id, payload, ttl ms.
var setIfCurrent = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[3])
redis.call('PEXPIRE', KEYS[2], ARGV[4])
return 1
`)

/*
Get retrieves cached progress for a goal.

Parameters:
  - context: context.Context
  - userID: string
  - goalID: string

Returns:
  - *Progress: Cached value, nil on a miss
  - bool: Whether the value was present
  - error: Connectivity or decoding errors
*/
func (cache *RedisProgressCache) Get(context context.Context, userID, goalID string) (*Progress, bool, error) {
	raw, err := cache.client.HGet(context, userKey(userID), goalID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_goal_progress_get_failed: %w", err)
	}

	var progress Progress
	if err := json.Unmarshal(raw, &progress); err != nil {
		return nil, false, fmt.Errorf("redis_goal_progress_decode_failed: %w", err)
	}
	return &progress, true, nil
}

// Generation reads the user's invalidation counter; a missing key is zero.
func (cache *RedisProgressCache) Generation(context context.Context, userID string) (int64, error) {
	generation, err := cache.client.Get(context, generationKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_goal_generation_get_failed: %w", err)
	}
	return generation, nil
}

/*
Set stores progress for a goal and refreshes the user's TTL, unless the
user's generation moved past the one read before evaluation.

Parameters:
  - context: context.Context
  - userID: string
  - generation: int64 (value returned by Generation before the snapshot)
  - progress: *Progress

Returns:
  - bool: Whether the value was stored
  - error: Storage failures
*/
func (cache *RedisProgressCache) Set(context context.Context, userID string, generation int64, progress *Progress) (bool, error) {
	raw, err := json.Marshal(progress)
	if err != nil {
		return false, fmt.Errorf("redis_goal_progress_encode_failed: %w", err)
	}

	keys := []string{generationKey(userID), userKey(userID)}
	stored, err := setIfCurrent.Run(context, cache.client, keys, generation, progress.GoalID, raw, cache.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis_goal_progress_set_failed: %w", err)
	}
	return stored == 1, nil
}

// InvalidateUser bumps the generation and drops every cached goal of a user.
func (cache *RedisProgressCache) InvalidateUser(context context.Context, userID string) error {
	pipe := cache.client.TxPipeline()
	pipe.Incr(context, generationKey(userID))
	pipe.Del(context, userKey(userID))
	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("redis_goal_progress_invalidate_failed: %w", err)
	}
	return nil
}

// InvalidateGoal bumps the generation and drops a single cached goal.
func (cache *RedisProgressCache) InvalidateGoal(context context.Context, userID, goalID string) error {
	pipe := cache.client.TxPipeline()
	pipe.Incr(context, generationKey(userID))
	pipe.HDel(context, userKey(userID), goalID)
	if _, err := pipe.Exec(context); err != nil {
		return fmt.Errorf("redis_goal_progress_invalidate_failed: %w", err)
	}
	return nil
}
