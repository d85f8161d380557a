package service

import (
	"context"
	"time"

	"github.com/Shishir-Kc/ThE-lIsT/internal/errors"
	"github.com/Shishir-Kc/ThE-lIsT/internal/model"
	"github.com/Shishir-Kc/ThE-lIsT/internal/repository"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/dto"
	"github.com/Shishir-Kc/ThE-lIsT/pkg/logger"
	"github.com/google/uuid"
)

// TaskService holds the API operations. Every method returns either a result
// or a *errors.ServiceError.
type TaskService interface {
	CreateTask(ctx context.Context, req *dto.CreateTaskRequest) (*model.Task, error)
	ListTasks(ctx context.Context) ([]*model.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error)
	ToggleCompletion(ctx context.Context, req *dto.ToggleCompletionRequest) (*model.Task, error)
	UpdatePriority(ctx context.Context, req *dto.UpdatePriorityRequest) (*model.Task, error)
	DeleteTask(ctx context.Context, req *dto.DeleteTaskRequest) (*dto.StatusResponse, error)
	ListActivity(ctx context.Context) ([]dto.ActivityView, error)
}

const StatusSuccessful = "successful"

// OperationObserver receives one call per finished operation. Outcome is
// "success", "not_found" or "error".
type OperationObserver interface {
	ObserveTaskOperation(operation, outcome string)
}

type taskService struct {
	taskRepo repository.TaskRepository
	observer OperationObserver
}

// NewTaskService builds the service. observer may be nil.
func NewTaskService(taskRepo repository.TaskRepository, observer OperationObserver) TaskService {
	return &taskService{
		taskRepo: taskRepo,
		observer: observer,
	}
}

func (s *taskService) CreateTask(ctx context.Context, req *dto.CreateTaskRequest) (*model.Task, error) {
	start := time.Now()
	operation := "CreateTask"

	if err := req.Validate(); err != nil {
		serviceErr := errors.Validation(err)
		s.record(ctx, operation, "", start, serviceErr, false)
		return nil, serviceErr
	}

	task := model.TaskFromCreateRequest(req)

	savedTask, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, s.fail(ctx, operation, task.ID.String(), start, err, nil)
	}

	s.record(ctx, operation, savedTask.ID.String(), start, nil, false)
	return savedTask, nil
}

func (s *taskService) ListTasks(ctx context.Context) ([]*model.Task, error) {
	start := time.Now()
	operation := "ListTasks"

	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, operation, "", start, err, nil)
	}

	s.record(ctx, operation, "", start, nil, false)
	return tasks, nil
}

func (s *taskService) GetTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	start := time.Now()
	operation := "GetTask"

	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, operation, id.String(), start, err, errors.ErrTaskNotFound)
	}

	s.record(ctx, operation, id.String(), start, nil, false)
	return task, nil
}

// ToggleCompletion flips the task's completed flag; see model.Task.ToggleCompletion.
func (s *taskService) ToggleCompletion(ctx context.Context, req *dto.ToggleCompletionRequest) (*model.Task, error) {
	start := time.Now()
	operation := "ToggleCompletion"

	if err := req.Validate(); err != nil {
		serviceErr := errors.Validation(err)
		s.record(ctx, operation, "", start, serviceErr, false)
		return nil, serviceErr
	}

	id := *req.ID
	endedAt := req.EndedAt.TimePtr()
	task, err := s.taskRepo.Modify(ctx, id, func(task *model.Task) {
		task.ToggleCompletion(endedAt)
	})
	if err != nil {
		return nil, s.fail(ctx, operation, id.String(), start, err, errors.ErrTaskNotFound)
	}

	s.record(ctx, operation, task.ID.String(), start, nil, false)
	return task, nil
}

func (s *taskService) UpdatePriority(ctx context.Context, req *dto.UpdatePriorityRequest) (*model.Task, error) {
	start := time.Now()
	operation := "UpdatePriority"

	if err := req.Validate(); err != nil {
		serviceErr := errors.Validation(err)
		s.record(ctx, operation, "", start, serviceErr, false)
		return nil, serviceErr
	}

	id := *req.ID
	level := *req.PriorityLevel
	task, err := s.taskRepo.Modify(ctx, id, func(task *model.Task) {
		task.SetPriority(level)
	})
	if err != nil {
		return nil, s.fail(ctx, operation, id.String(), start, err, errors.ErrTaskNotAvailable)
	}

	s.record(ctx, operation, task.ID.String(), start, nil, false)
	return task, nil
}

func (s *taskService) DeleteTask(ctx context.Context, req *dto.DeleteTaskRequest) (*dto.StatusResponse, error) {
	start := time.Now()
	operation := "DeleteTask"

	if err := req.Validate(); err != nil {
		serviceErr := errors.Validation(err)
		s.record(ctx, operation, "", start, serviceErr, false)
		return nil, serviceErr
	}

	id := *req.ID
	if err := s.taskRepo.DeleteByID(ctx, id); err != nil {
		return nil, s.fail(ctx, operation, id.String(), start, err, errors.ErrTaskNotAvailable)
	}

	s.record(ctx, operation, id.String(), start, nil, false)
	return &dto.StatusResponse{Status: StatusSuccessful}, nil
}

// ListActivity projects completed tasks. An empty result is reported as
// not found.
func (s *taskService) ListActivity(ctx context.Context) ([]dto.ActivityView, error) {
	start := time.Now()
	operation := "ListActivity"

	tasks, err := s.taskRepo.ListCompleted(ctx)
	if err != nil {
		return nil, s.fail(ctx, operation, "", start, err, errors.ErrNoCompletedTasks)
	}

	if len(tasks) == 0 {
		serviceErr := errors.ErrNoCompletedTasks
		s.record(ctx, operation, "", start, serviceErr, true)
		return nil, serviceErr
	}

	s.record(ctx, operation, "", start, nil, false)
	return model.TasksToActivityViews(tasks), nil
}

func (s *taskService) fail(ctx context.Context, operation, taskID string, start time.Time, err error, notFound *errors.ServiceError) error {
	serviceErr := errors.WrapRepositoryError(err, notFound)
	s.record(ctx, operation, taskID, start, serviceErr, serviceErr.IsNotFound())
	return serviceErr
}

func (s *taskService) record(ctx context.Context, operation, taskID string, start time.Time, err error, notFound bool) {
	logger.LogTaskOperation(ctx, operation, taskID, time.Since(start), err, notFound)

	if s.observer == nil {
		return
	}
	outcome := "success"
	switch {
	case notFound:
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	s.observer.ObserveTaskOperation(operation, outcome)
}
