package domain

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Title length bounds, counted in characters after trimming
const (
	TitleMinLength = 1
	TitleMaxLength = 32
)

// Task is owned by exactly one user. Description is never null: an absent
// description is stored and returned as "".
type Task struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueDate     *time.Time `db:"due_date" json:"dueDate"`
	Priority    Priority   `db:"priority" json:"priority"`
	Status      Status     `db:"status" json:"status"`
	UserID      string     `db:"user_id" json:"userId"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewTask is the validated input of a create operation. The owner is not part
// of it; it is injected from the resolved identity.
type NewTask struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    Priority
}

// TaskFilter holds optional list filters. Zero values mean the filter is not applied.
type TaskFilter struct {
	Status   Status
	Priority Priority
	Search   string
}

// TaskPatch is a partial update. Only fields with Set == true are written.
// DueDate set to a nil pointer clears the due date.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	DueDate     Optional[*time.Time]
	Priority    Optional[Priority]
	Status      Optional[Status]
}

// IsEmpty reports whether the patch carries no fields
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.DueDate.Set && !p.Priority.Set && !p.Status.Set
}

// Apply writes the present fields of p onto t
func (p TaskPatch) Apply(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
}
