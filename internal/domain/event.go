package domain

import "time"

type TaskEventType string

const (
	EventTaskCreated TaskEventType = "task.created"
	EventTaskUpdated TaskEventType = "task.updated"
	EventTaskDeleted TaskEventType = "task.deleted"
)

// TaskEvent is pushed to the owner's live board connections after a mutation.
// Task is nil for deletions.
type TaskEvent struct {
	Type   TaskEventType `json:"type"`
	TaskID string        `json:"taskId"`
	Task   *Task         `json:"task,omitempty"`
	At     time.Time     `json:"at"`
}
