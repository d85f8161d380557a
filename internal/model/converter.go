package model

import (
	"github.com/Shishir-Kc/ThE-lIsT/pkg/dto"
)

func TaskFromCreateRequest(req *dto.CreateTaskRequest) *Task {
	if req == nil || req.TaskName == nil || req.PriorityLevel == nil {
		return nil
	}

	return NewTask(*req.TaskName, req.TaskDescription, req.StartDate.TimePtr(), req.EndDate.TimePtr(), *req.PriorityLevel)
}

func TaskToActivityView(task *Task) dto.ActivityView {
	return dto.ActivityView{
		StartDate: task.StartDate,
		EndedAt:   task.EndedAt,
		Completed: task.Completed,
	}
}

func TasksToActivityViews(tasks []*Task) []dto.ActivityView {
	views := make([]dto.ActivityView, len(tasks))
	for i, task := range tasks {
		views[i] = TaskToActivityView(task)
	}
	return views
}
