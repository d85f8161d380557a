package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTaskNameRequired      = errors.New("task_name is required")
	ErrPriorityLevelRequired = errors.New("priority_level is required")
	ErrIDRequired            = errors.New("id is required")
)

type CreateTaskRequest struct {
	TaskName        *string    `json:"task_name"`
	TaskDescription *string    `json:"task_description"`
	StartDate       *Timestamp `json:"start_date"`
	EndDate         *Timestamp `json:"end_date"`
	PriorityLevel   *int       `json:"priority_level"`
}

func (r *CreateTaskRequest) Validate() error {
	if r.TaskName == nil {
		return ErrTaskNameRequired
	}
	if r.PriorityLevel == nil {
		return ErrPriorityLevelRequired
	}
	return nil
}

// ToggleCompletionRequest flips a task's completion state. EndedAt is only
// applied when the task goes from incomplete to complete. Completed is
// accepted for payload compatibility and never read.
//
// ID is a pointer in every id-addressed request so an absent id can be told
// apart from the all-zero UUID, which is a valid (unknown) id.
type ToggleCompletionRequest struct {
	ID        *uuid.UUID `json:"id"`
	EndedAt   *Timestamp `json:"ended_at"`
	Completed *bool      `json:"completed,omitempty"`
}

func (r *ToggleCompletionRequest) Validate() error {
	if r.ID == nil {
		return ErrIDRequired
	}
	return nil
}

type UpdatePriorityRequest struct {
	ID            *uuid.UUID `json:"id"`
	PriorityLevel *int       `json:"priority_level"`
}

func (r *UpdatePriorityRequest) Validate() error {
	if r.ID == nil {
		return ErrIDRequired
	}
	if r.PriorityLevel == nil {
		return ErrPriorityLevelRequired
	}
	return nil
}

type DeleteTaskRequest struct {
	ID *uuid.UUID `json:"id"`
}

func (r *DeleteTaskRequest) Validate() error {
	if r.ID == nil {
		return ErrIDRequired
	}
	return nil
}

// ActivityView is the read-only projection of a completed task.
type ActivityView struct {
	StartDate time.Time  `json:"start_date"`
	EndedAt   *time.Time `json:"ended_at"`
	Completed bool       `json:"completed"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HelloResponse struct {
	Hello string `json:"hello"`
}
