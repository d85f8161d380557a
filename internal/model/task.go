package model

import (
	"time"

	"github.com/google/uuid"
)

// Task is the single persisted entity. Only Completed, EndedAt and
// PriorityLevel change after creation.
type Task struct {
	ID              uuid.UUID  `json:"id"`
	TaskName        string     `json:"task_name"`
	TaskDescription *string    `json:"task_description"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	EndedAt         *time.Time `json:"ended_at"`
	Completed       bool       `json:"completed"`
	PriorityLevel   int        `json:"priority_level"`
}

// NewTask builds an incomplete task with a fresh id. A nil startDate
// defaults to the current time.
func NewTask(name string, description *string, startDate, endDate *time.Time, priority int) *Task {
	start := time.Now().UTC().Truncate(time.Microsecond)
	if startDate != nil {
		start = *startDate
	}

	return &Task{
		ID:              uuid.New(),
		TaskName:        name,
		TaskDescription: description,
		StartDate:       start,
		EndDate:         endDate,
		EndedAt:         nil,
		Completed:       false,
		PriorityLevel:   priority,
	}
}

// ToggleCompletion inverts Completed. Completing records endedAt;
// un-completing always clears EndedAt and ignores endedAt.
func (t *Task) ToggleCompletion(endedAt *time.Time) {
	if !t.Completed {
		t.Completed = true
		t.EndedAt = endedAt
		return
	}

	t.Completed = false
	t.EndedAt = nil
}

func (t *Task) SetPriority(level int) {
	t.PriorityLevel = level
}
