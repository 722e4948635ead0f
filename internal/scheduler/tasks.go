package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskSnapshotCapture = "analytics.snapshot.capture"

const TaskAssignmentEmail = "notification.assignment.email"

type AssignmentEmailPayload struct {
	NotificationID string  `json:"notificationId"`
	UserID         string  `json:"userId"`
	LeadID         *string `json:"leadId,omitempty"`
	Message        string  `json:"message"`
}

// NewSnapshotCaptureTask carries no payload; the handler snapshots "today".
func NewSnapshotCaptureTask() *asynq.Task {
	return asynq.NewTask(TaskSnapshotCapture, nil)
}

func NewAssignmentEmailTask(payload AssignmentEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentEmail, data), nil
}

func ParseAssignmentEmailPayload(task *asynq.Task) (AssignmentEmailPayload, error) {
	var payload AssignmentEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AssignmentEmailPayload{}, err
	}
	return payload, nil
}
