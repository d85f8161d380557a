package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskRequest_Validate(t *testing.T) {
	name := "write report"
	priority := 0

	require.ErrorIs(t, (&CreateTaskRequest{PriorityLevel: &priority}).Validate(), ErrTaskNameRequired)
	require.ErrorIs(t, (&CreateTaskRequest{TaskName: &name}).Validate(), ErrPriorityLevelRequired)
	require.NoError(t, (&CreateTaskRequest{TaskName: &name, PriorityLevel: &priority}).Validate())
}

func TestCreateTaskRequest_DecodesOptionalFields(t *testing.T) {
	var req CreateTaskRequest
	body := `{"task_name":"x","priority_level":1,"task_description":null,"end_date":"2026-01-02T15:04:05Z"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.Equal(t, "x", *req.TaskName)
	require.Equal(t, 1, *req.PriorityLevel)
	require.Nil(t, req.TaskDescription)
	require.Nil(t, req.StartDate)
	require.NotNil(t, req.EndDate)
	require.NoError(t, req.Validate())
}

func TestToggleCompletionRequest_Validate(t *testing.T) {
	id := uuid.New()

	require.ErrorIs(t, (&ToggleCompletionRequest{}).Validate(), ErrIDRequired)
	require.NoError(t, (&ToggleCompletionRequest{ID: &id}).Validate())
}

func TestIDRequests_AcceptNilUUID(t *testing.T) {
	priority := 1
	body := []byte(`{"id":"00000000-0000-0000-0000-000000000000","priority_level":1}`)

	var toggle ToggleCompletionRequest
	require.NoError(t, json.Unmarshal(body, &toggle))
	require.NoError(t, toggle.Validate())
	require.Equal(t, uuid.Nil, *toggle.ID)

	var priorityReq UpdatePriorityRequest
	require.NoError(t, json.Unmarshal(body, &priorityReq))
	require.NoError(t, priorityReq.Validate())
	require.Equal(t, priority, *priorityReq.PriorityLevel)

	var del DeleteTaskRequest
	require.NoError(t, json.Unmarshal(body, &del))
	require.NoError(t, del.Validate())

	var missing DeleteTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	require.ErrorIs(t, missing.Validate(), ErrIDRequired)
}

func TestToggleCompletionRequest_RejectsMalformedID(t *testing.T) {
	var req ToggleCompletionRequest
	require.Error(t, json.Unmarshal([]byte(`{"id":"not-a-uuid"}`), &req))
}

func TestUpdatePriorityRequest_Validate(t *testing.T) {
	priority := 3
	id := uuid.New()

	require.ErrorIs(t, (&UpdatePriorityRequest{PriorityLevel: &priority}).Validate(), ErrIDRequired)
	require.ErrorIs(t, (&UpdatePriorityRequest{ID: &id}).Validate(), ErrPriorityLevelRequired)
	require.NoError(t, (&UpdatePriorityRequest{ID: &id, PriorityLevel: &priority}).Validate())
}

func TestDeleteTaskRequest_Validate(t *testing.T) {
	require.ErrorIs(t, (&DeleteTaskRequest{}).Validate(), ErrIDRequired)
	id := uuid.New()
	require.NoError(t, (&DeleteTaskRequest{ID: &id}).Validate())
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2024-01-01T10:00:00+02:00"`, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{"zoneless", `"2024-01-01T10:00:00"`, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"zoneless fraction", `"2024-01-01T10:00:00.123456"`, time.Date(2024, 1, 1, 10, 0, 0, 123456000, time.UTC)},
		{"space separated", `"2024-01-01 10:00:00"`, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", `"2024-01-01"`, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			require.True(t, tt.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	var ts Timestamp
	require.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	require.Error(t, json.Unmarshal([]byte(`12`), &ts))
}

func TestCreateTaskRequest_AcceptsZonelessDates(t *testing.T) {
	var req CreateTaskRequest
	body := `{"task_name":"x","priority_level":1,"start_date":"2024-01-01T10:00:00","end_date":null}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	require.True(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC).Equal(*req.StartDate.TimePtr()))
	require.Nil(t, req.EndDate.TimePtr())
}
