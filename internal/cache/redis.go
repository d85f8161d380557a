package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/model"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned by the getters when the key is absent or the
// cache is disabled.
var ErrCacheMiss = errors.New("cache miss")

const (
	KeyTaskList = "tasks:list"
	KeyActivity = "tasks:activity"
)

type RedisCache interface {
	SetTask(ctx context.Context, task *model.Task, ttl time.Duration) error
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
	SetTaskList(ctx context.Context, key string, tasks []*model.Task, ttl time.Duration) error
	GetTaskList(ctx context.Context, key string) ([]*model.Task, error)
	InvalidateLists(ctx context.Context) error

	Enabled() bool
	Ping(ctx context.Context) error
	Close() error
}

type redisCache struct {
	clients []redis.Cmdable
	enabled bool
}

// NewRedisCache connects one client per shard address. A disabled cache is a
// valid RedisCache whose writes are no-ops and whose reads always miss.
func NewRedisCache(ctx context.Context, urls []string, password string, db int, enabled bool, ttl time.Duration) (RedisCache, error) {
	if !enabled {
		logger.LogCacheStatus(ctx, false, 0, 0)
		return &redisCache{enabled: false}, nil
	}

	if len(urls) == 0 {
		return nil, errors.New("redis URLs cannot be empty when Redis is enabled")
	}

	clients := make([]redis.Cmdable, 0, len(urls))

	for i, url := range urls {
		client := redis.NewClient(&redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		})

		connCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(connCtx).Err()
		cancel()

		logger.LogRedisShardConnection(ctx, i, url, err)
		if err != nil {
			_ = client.Close()
			closeClients(clients)
			return nil, fmt.Errorf("connect redis shard %d (%s): %w", i, url, err)
		}

		clients = append(clients, client)
	}

	logger.LogCacheStatus(ctx, true, len(urls), ttl)

	return NewShardedCache(clients), nil
}

// NewShardedCache wraps already constructed clients.
func NewShardedCache(clients []redis.Cmdable) RedisCache {
	return &redisCache{
		clients: clients,
		enabled: len(clients) > 0,
	}
}

func (r *redisCache) Enabled() bool {
	return r.enabled
}

func (r *redisCache) getShardIndex(key string) int {
	if len(r.clients) <= 1 {
		return 0
	}

	hash := crc32.ChecksumIEEE([]byte(key))
	return int(hash % uint32(len(r.clients)))
}

func (r *redisCache) getClient(key string) (redis.Cmdable, int) {
	index := r.getShardIndex(key)
	return r.clients[index], index
}

func (r *redisCache) SetTask(ctx context.Context, task *model.Task, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}
	return r.set(ctx, "SET", TaskKey(task.ID), task, ttl)
}

func (r *redisCache) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	if !r.enabled {
		return nil, ErrCacheMiss
	}

	var task model.Task
	if err := r.get(ctx, "GET", TaskKey(id), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *redisCache) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if !r.enabled {
		return nil
	}

	key := TaskKey(id)
	client, shardIndex := r.getClient(key)

	start := time.Now()
	err := client.Del(ctx, key).Err()
	logger.LogCacheOperation(ctx, "DELETE", key, shardIndex, time.Since(start), err)
	return err
}

func (r *redisCache) SetTaskList(ctx context.Context, key string, tasks []*model.Task, ttl time.Duration) error {
	if !r.enabled {
		return nil
	}
	return r.set(ctx, "SET_LIST", key, tasks, ttl)
}

func (r *redisCache) GetTaskList(ctx context.Context, key string) ([]*model.Task, error) {
	if !r.enabled {
		return nil, ErrCacheMiss
	}

	var tasks []*model.Task
	if err := r.get(ctx, "GET_LIST", key, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// InvalidateLists drops every cached list. Called after any write.
func (r *redisCache) InvalidateLists(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	keys := []string{KeyTaskList, KeyActivity}
	var errs []error

	for _, key := range keys {
		client, shardIndex := r.getClient(key)

		start := time.Now()
		err := client.Del(ctx, key).Err()
		logger.LogCacheOperation(ctx, "DELETE_LIST", key, shardIndex, time.Since(start), err)
		if err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	logger.LogCacheInvalidation(ctx, keys, "task_written", err)
	return err
}

func (r *redisCache) set(ctx context.Context, operation, key string, value any, ttl time.Duration) error {
	client, shardIndex := r.getClient(key)
	start := time.Now()

	data, err := json.Marshal(value)
	if err != nil {
		logger.LogCacheOperation(ctx, operation, key, shardIndex, time.Since(start), err)
		return err
	}

	err = client.Set(ctx, key, data, ttl).Err()
	logger.LogCacheOperation(ctx, operation, key, shardIndex, time.Since(start), err)
	return err
}

func (r *redisCache) get(ctx context.Context, operation, key string, dest any) error {
	client, shardIndex := r.getClient(key)
	start := time.Now()

	data, err := client.Get(ctx, key).Bytes()
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, redis.Nil) {
			logger.LogRedisCacheHit(ctx, key, false, duration)
			return ErrCacheMiss
		}
		logger.LogCacheOperation(ctx, operation, key, shardIndex, duration, err)
		return err
	}

	logger.LogRedisCacheHit(ctx, key, true, duration)

	if err := json.Unmarshal(data, dest); err != nil {
		logger.LogCacheOperation(ctx, operation, key, shardIndex, duration, err)
		return err
	}

	return nil
}

func (r *redisCache) Ping(ctx context.Context) error {
	if !r.enabled {
		return nil
	}

	for i, client := range r.clients {
		start := time.Now()
		err := client.Ping(ctx).Err()
		logger.LogCacheOperation(ctx, "PING", "health_check", i, time.Since(start), err)
		if err != nil {
			return fmt.Errorf("redis shard %d: %w", i, err)
		}
	}
	return nil
}

func (r *redisCache) Close() error {
	if !r.enabled {
		return nil
	}
	return closeClients(r.clients)
}

func closeClients(clients []redis.Cmdable) error {
	var lastErr error
	for i, client := range clients {
		if redisClient, ok := client.(*redis.Client); ok {
			if err := redisClient.Close(); err != nil {
				logger.LogError(context.Background(), err, "close_redis_shard",
					slog.Int("shard_index", i))
				lastErr = err
			}
		}
	}
	return lastErr
}

func TaskKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id.String())
}
