package repository

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/cache"
	"github.com/Shishir-Kc/ThE-lIsT/internal/model"
	"github.com/google/uuid"
)

type cachedTaskRepository struct {
	repo    TaskRepository
	cache   cache.RedisCache
	ttl     time.Duration
	listTTL time.Duration

	// mu orders cache fills against writes. Readers snapshot generation
	// before loading and fill the cache under RLock only if it is unchanged;
	// writers bump it and update the cache under Lock.
	mu         sync.RWMutex
	generation uint64

	// Ids whose cache entry could not be refreshed or evicted. Reads of these
	// go to the store until an eviction succeeds.
	staleTasks sync.Map
	// Set while the cached lists could not be invalidated.
	listsStale atomic.Bool
}

// NewCachedTaskRepository decorates repo with a read-through cache. Cache
// failures are logged and never fail the call; every write refreshes the
// task entry and drops the cached lists.
func NewCachedTaskRepository(repo TaskRepository, cache cache.RedisCache, ttl, listTTL time.Duration) TaskRepository {
	return &cachedTaskRepository{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		listTTL: listTTL,
	}
}

func (r *cachedTaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	createdTask, err := r.repo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	r.afterWrite(ctx, createdTask.ID, createdTask)

	return createdTask, nil
}

func (r *cachedTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	if !r.isStale(id) {
		task, err := r.cache.GetTask(ctx, id)
		if err == nil {
			slog.DebugContext(ctx, "Task found in cache", slog.String("task_id", id.String()))
			return task, nil
		}
	}

	generation := r.currentGeneration()

	task, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if IsNotFoundError(err) && r.isStale(id) {
			r.evictTask(ctx, id)
		}
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.generation == generation {
		r.storeTask(ctx, task)
	}

	return task, nil
}

func (r *cachedTaskRepository) List(ctx context.Context) ([]*model.Task, error) {
	return r.cachedList(ctx, cache.KeyTaskList, r.repo.List)
}

func (r *cachedTaskRepository) ListCompleted(ctx context.Context) ([]*model.Task, error) {
	return r.cachedList(ctx, cache.KeyActivity, r.repo.ListCompleted)
}

func (r *cachedTaskRepository) cachedList(ctx context.Context, key string, load func(context.Context) ([]*model.Task, error)) ([]*model.Task, error) {
	if r.listsStale.Load() {
		r.mu.Lock()
		r.invalidateListsLocked(ctx)
		r.mu.Unlock()
	}

	if !r.listsStale.Load() {
		tasks, err := r.cache.GetTaskList(ctx, key)
		if err == nil {
			slog.DebugContext(ctx, "Task list found in cache",
				slog.String("key", key),
				slog.Int("count", len(tasks)))
			return tasks, nil
		}
	}

	generation := r.currentGeneration()

	tasks, err := load(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	// A write finished while loading: tasks may predate it.
	if r.generation != generation || r.listsStale.Load() {
		return tasks, nil
	}

	if err := r.cache.SetTaskList(ctx, key, tasks, r.listTTL); err != nil {
		slog.WarnContext(ctx, "Failed to cache task list",
			slog.String("key", key),
			slog.Int("count", len(tasks)),
			slog.String("error", err.Error()))
	}

	return tasks, nil
}

func (r *cachedTaskRepository) Modify(ctx context.Context, id uuid.UUID, mutate func(task *model.Task)) (*model.Task, error) {
	updatedTask, err := r.repo.Modify(ctx, id, mutate)
	if err != nil {
		return nil, err
	}

	r.afterWrite(ctx, id, updatedTask)

	return updatedTask, nil
}

func (r *cachedTaskRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	r.afterWrite(ctx, id, nil)

	return nil
}

// afterWrite refreshes the entry for id (evicts it when task is nil) and
// drops the cached lists.
func (r *cachedTaskRepository) afterWrite(ctx context.Context, id uuid.UUID, task *model.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++

	if task != nil {
		r.storeTask(ctx, task)
	} else {
		r.evictTask(ctx, id)
	}

	r.invalidateListsLocked(ctx)
}

func (r *cachedTaskRepository) currentGeneration() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

func (r *cachedTaskRepository) isStale(id uuid.UUID) bool {
	_, stale := r.staleTasks.Load(id)
	return stale
}

// storeTask falls back to evicting the entry when the refresh fails.
func (r *cachedTaskRepository) storeTask(ctx context.Context, task *model.Task) {
	if err := r.cache.SetTask(ctx, task, r.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		r.evictTask(ctx, task.ID)
		return
	}
	r.staleTasks.Delete(task.ID)
}

// evictTask retries once; if the entry still cannot be removed the id is
// marked stale and served from the store.
func (r *cachedTaskRepository) evictTask(ctx context.Context, id uuid.UUID) {
	err := r.cache.DeleteTask(ctx, id)
	if err != nil {
		err = r.cache.DeleteTask(ctx, id)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to delete task from cache",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		r.staleTasks.Store(id, struct{}{})
		return
	}
	r.staleTasks.Delete(id)
}

func (r *cachedTaskRepository) invalidateListsLocked(ctx context.Context) {
	if err := r.cache.InvalidateLists(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate task list cache",
			slog.String("error", err.Error()))
		r.listsStale.Store(true)
		return
	}
	r.listsStale.Store(false)
}
