package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/cache"
	"github.com/Shishir-Kc/ThE-lIsT/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type taskRepositoryMock struct {
	mock.Mock
}

func (m *taskRepositoryMock) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	args := m.Called(ctx, task)
	return taskOrNil(args.Get(0)), args.Error(1)
}

func (m *taskRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, id)
	return taskOrNil(args.Get(0)), args.Error(1)
}

func (m *taskRepositoryMock) List(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	return tasksOrNil(args.Get(0)), args.Error(1)
}

func (m *taskRepositoryMock) ListCompleted(ctx context.Context) ([]*model.Task, error) {
	args := m.Called(ctx)
	return tasksOrNil(args.Get(0)), args.Error(1)
}

func (m *taskRepositoryMock) Modify(ctx context.Context, id uuid.UUID, mutate func(task *model.Task)) (*model.Task, error) {
	args := m.Called(ctx, id, mutate)
	return taskOrNil(args.Get(0)), args.Error(1)
}

func (m *taskRepositoryMock) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func taskOrNil(v any) *model.Task {
	if v == nil {
		return nil
	}
	return v.(*model.Task)
}

func tasksOrNil(v any) []*model.Task {
	if v == nil {
		return nil
	}
	return v.([]*model.Task)
}

// memoryCache is an in-process RedisCache used to observe decorator behavior.
type memoryCache struct {
	mu            sync.Mutex
	tasks         map[uuid.UUID]*model.Task
	lists         map[string][]*model.Task
	setErr        error
	deleteErr     error
	invalidateErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		tasks: map[uuid.UUID]*model.Task{},
		lists: map[string][]*model.Task{},
	}
}

func (c *memoryCache) SetTask(_ context.Context, task *model.Task, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.tasks[task.ID] = task
	return nil
}

func (c *memoryCache) GetTask(_ context.Context, id uuid.UUID) (*model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	task, ok := c.tasks[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return task, nil
}

func (c *memoryCache) DeleteTask(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	delete(c.tasks, id)
	return nil
}

func (c *memoryCache) SetTaskList(_ context.Context, key string, tasks []*model.Task, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.lists[key] = tasks
	return nil
}

func (c *memoryCache) GetTaskList(_ context.Context, key string) ([]*model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks, ok := c.lists[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return tasks, nil
}

func (c *memoryCache) InvalidateLists(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.lists = map[string][]*model.Task{}
	return nil
}

func (c *memoryCache) fail(set, del, invalidate error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setErr, c.deleteErr, c.invalidateErr = set, del, invalidate
}

func (c *memoryCache) Enabled() bool                { return true }
func (c *memoryCache) Ping(_ context.Context) error { return nil }
func (c *memoryCache) Close() error                 { return nil }

func TestCachedTaskRepository_ListIsReadThrough(t *testing.T) {
	ctx := context.Background()
	task := model.NewTask("x", nil, nil, nil, 1)

	repoMock := new(taskRepositoryMock)
	repoMock.On("List", mock.Anything).Return([]*model.Task{task}, nil).Once()

	repo := NewCachedTaskRepository(repoMock, newMemoryCache(), time.Minute, time.Minute)

	first, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_ModifyRefreshesTaskAndDropsLists(t *testing.T) {
	ctx := context.Background()
	memCache := newMemoryCache()

	original := model.NewTask("x", nil, nil, nil, 1)
	completed := *original
	ended := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	completed.ToggleCompletion(&ended)

	repoMock := new(taskRepositoryMock)
	repoMock.On("ListCompleted", mock.Anything).Return([]*model.Task{}, nil).Once()
	repoMock.On("Modify", mock.Anything, original.ID, mock.Anything).Return(&completed, nil).Once()
	repoMock.On("ListCompleted", mock.Anything).Return([]*model.Task{&completed}, nil).Once()

	repo := NewCachedTaskRepository(repoMock, memCache, time.Minute, time.Minute)

	activity, err := repo.ListCompleted(ctx)
	require.NoError(t, err)
	require.Empty(t, activity)

	_, err = repo.Modify(ctx, original.ID, func(task *model.Task) {})
	require.NoError(t, err)

	cached, err := memCache.GetTask(ctx, original.ID)
	require.NoError(t, err)
	require.True(t, cached.Completed)

	activity, err = repo.ListCompleted(ctx)
	require.NoError(t, err)
	require.Len(t, activity, 1)

	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_GetByIDUsesCache(t *testing.T) {
	ctx := context.Background()
	task := model.NewTask("x", nil, nil, nil, 1)

	repoMock := new(taskRepositoryMock)
	repoMock.On("GetByID", mock.Anything, task.ID).Return(task, nil).Once()

	repo := NewCachedTaskRepository(repoMock, newMemoryCache(), time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := repo.GetByID(ctx, task.ID)
		require.NoError(t, err)
		require.Equal(t, task.ID, got.ID)
	}

	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_DeleteEvictsTask(t *testing.T) {
	ctx := context.Background()
	memCache := newMemoryCache()
	task := model.NewTask("x", nil, nil, nil, 1)
	require.NoError(t, memCache.SetTask(ctx, task, time.Minute))

	repoMock := new(taskRepositoryMock)
	repoMock.On("DeleteByID", mock.Anything, task.ID).Return(nil).Once()

	repo := NewCachedTaskRepository(repoMock, memCache, time.Minute, time.Minute)
	require.NoError(t, repo.DeleteByID(ctx, task.ID))

	_, err := memCache.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, cache.ErrCacheMiss)
	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_NotFoundPassesThrough(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	repoMock := new(taskRepositoryMock)
	repoMock.On("DeleteByID", mock.Anything, id).Return(WrapError("delete_task", ErrTaskNotFound)).Once()
	repoMock.On("Modify", mock.Anything, id, mock.Anything).Return(nil, WrapError("modify_task_lookup", ErrTaskNotFound)).Once()

	repo := NewCachedTaskRepository(repoMock, newMemoryCache(), time.Minute, time.Minute)

	require.True(t, IsNotFoundError(repo.DeleteByID(ctx, id)))

	_, err := repo.Modify(ctx, id, func(task *model.Task) {})
	require.True(t, IsNotFoundError(err))
	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_CacheFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	memCache := newMemoryCache()
	memCache.setErr = errors.New("redis down")
	task := model.NewTask("x", nil, nil, nil, 1)

	repoMock := new(taskRepositoryMock)
	repoMock.On("Create", mock.Anything, task).Return(task, nil).Once()

	repo := NewCachedTaskRepository(repoMock, memCache, time.Minute, time.Minute)

	created, err := repo.Create(ctx, task)
	require.NoError(t, err)
	require.Equal(t, task.ID, created.ID)
	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_ListLoadedBeforeDeleteIsNotCached(t *testing.T) {
	ctx := context.Background()
	task := model.NewTask("x", nil, nil, nil, 1)

	loaded := make(chan struct{})
	release := make(chan struct{})

	repoMock := new(taskRepositoryMock)
	repoMock.On("List", mock.Anything).
		Run(func(mock.Arguments) {
			close(loaded)
			<-release
		}).
		Return([]*model.Task{task}, nil).Once()
	repoMock.On("DeleteByID", mock.Anything, task.ID).Return(nil).Once()
	repoMock.On("List", mock.Anything).Return([]*model.Task{}, nil).Once()

	repo := NewCachedTaskRepository(repoMock, newMemoryCache(), time.Minute, time.Minute)

	type result struct {
		tasks []*model.Task
		err   error
	}
	done := make(chan result, 1)
	go func() {
		tasks, err := repo.List(ctx)
		done <- result{tasks, err}
	}()

	<-loaded
	require.NoError(t, repo.DeleteByID(ctx, task.ID))
	close(release)

	before := <-done
	require.NoError(t, before.err)
	require.Len(t, before.tasks, 1)

	after, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, after)

	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_FailedEvictionFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	memCache := newMemoryCache()
	task := model.NewTask("x", nil, nil, nil, 1)
	require.NoError(t, memCache.SetTask(ctx, task, time.Minute))
	memCache.fail(nil, errors.New("redis down"), nil)

	repoMock := new(taskRepositoryMock)
	repoMock.On("DeleteByID", mock.Anything, task.ID).Return(nil).Once()
	repoMock.On("GetByID", mock.Anything, task.ID).Return(nil, WrapError("get_task", ErrTaskNotFound)).Twice()

	repo := NewCachedTaskRepository(repoMock, memCache, time.Minute, time.Minute)
	require.NoError(t, repo.DeleteByID(ctx, task.ID))

	// The entry is still in the cache but must not be served.
	_, err := repo.GetByID(ctx, task.ID)
	require.True(t, IsNotFoundError(err))

	memCache.fail(nil, nil, nil)
	_, err = repo.GetByID(ctx, task.ID)
	require.True(t, IsNotFoundError(err))

	_, err = memCache.GetTask(ctx, task.ID)
	require.ErrorIs(t, err, cache.ErrCacheMiss)
	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_FailedRefreshEvictsOldEntry(t *testing.T) {
	ctx := context.Background()
	memCache := newMemoryCache()

	original := model.NewTask("x", nil, nil, nil, 1)
	require.NoError(t, memCache.SetTask(ctx, original, time.Minute))
	updated := *original
	updated.SetPriority(3)

	repoMock := new(taskRepositoryMock)
	repoMock.On("Modify", mock.Anything, original.ID, mock.Anything).Return(&updated, nil).Once()
	repoMock.On("GetByID", mock.Anything, original.ID).Return(&updated, nil).Once()

	memCache.fail(errors.New("redis down"), nil, nil)
	repo := NewCachedTaskRepository(repoMock, memCache, time.Minute, time.Minute)

	_, err := repo.Modify(ctx, original.ID, func(task *model.Task) {})
	require.NoError(t, err)

	_, err = memCache.GetTask(ctx, original.ID)
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	got, err := repo.GetByID(ctx, original.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.PriorityLevel)
	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_FailedInvalidationBypassesLists(t *testing.T) {
	ctx := context.Background()
	memCache := newMemoryCache()
	task := model.NewTask("x", nil, nil, nil, 1)
	require.NoError(t, memCache.SetTaskList(ctx, cache.KeyTaskList, []*model.Task{task}, time.Minute))

	repoMock := new(taskRepositoryMock)
	repoMock.On("DeleteByID", mock.Anything, task.ID).Return(nil).Once()
	repoMock.On("List", mock.Anything).Return([]*model.Task{}, nil).Twice()

	memCache.fail(nil, nil, errors.New("redis down"))
	repo := NewCachedTaskRepository(repoMock, memCache, time.Minute, time.Minute)
	require.NoError(t, repo.DeleteByID(ctx, task.ID))

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)

	// Once invalidation works again the stale list is dropped and refilled.
	memCache.fail(nil, nil, nil)
	tasks, err = repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)

	cached, err := memCache.GetTaskList(ctx, cache.KeyTaskList)
	require.NoError(t, err)
	require.Empty(t, cached)
	repoMock.AssertExpectations(t)
}

func TestCachedTaskRepository_UsesListTTL(t *testing.T) {
	ctx := context.Background()
	ttls := &ttlRecordingCache{memoryCache: newMemoryCache()}

	repoMock := new(taskRepositoryMock)
	repoMock.On("List", mock.Anything).Return([]*model.Task{}, nil).Once()

	repo := NewCachedTaskRepository(repoMock, ttls, time.Minute, 5*time.Second)
	_, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, ttls.listTTL)
}

type ttlRecordingCache struct {
	*memoryCache
	listTTL time.Duration
}

func (c *ttlRecordingCache) SetTaskList(ctx context.Context, key string, tasks []*model.Task, ttl time.Duration) error {
	c.listTTL = ttl
	return c.memoryCache.SetTaskList(ctx, key, tasks, ttl)
}
