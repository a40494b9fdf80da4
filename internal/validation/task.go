package validation

import (
	"strings"
	"time"

	"taskboard/internal/domain"
)

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=32"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Priority    string  `json:"priority" validate:"required,oneof=low medium high"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id. Every field is optional.
type UpdateTaskRequest struct {
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	DueDate     domain.Optional[string] `json:"dueDate"`
	Priority    domain.Optional[string] `json:"priority"`
	Status      domain.Optional[string] `json:"status"`
}

// TaskFilterQuery is the query string of GET /tasks
type TaskFilterQuery struct {
	Status   string `form:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority string `form:"priority" validate:"omitempty,oneof=low medium high"`
	Search   string `form:"search"`
}

// ChangeStatusRequest is the body of PATCH /tasks/:id/status
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=todo in_progress done"`
}

const (
	titleRules    = "min=1,max=32"
	priorityRules = "oneof=low medium high"
	statusRules   = "oneof=todo in_progress done"
)

// ValidateCreate checks a create request and returns the task to insert
func ValidateCreate(req CreateTaskRequest) (domain.NewTask, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validate.Struct(req); err != nil {
		return domain.NewTask{}, toValidationError(err)
	}

	out := domain.NewTask{
		Title:    req.Title,
		Priority: domain.Priority(req.Priority),
	}
	if req.Description != nil {
		out.Description = *req.Description
	}
	if req.DueDate != nil {
		due, err := ParseDueDate(*req.DueDate)
		if err != nil {
			return domain.NewTask{}, err
		}
		out.DueDate = &due
	}
	return out, nil
}

// ValidateUpdate checks an update request and strips fields that were not
// provided. Null title, description, priority or status count as absent;
// a null dueDate clears the due date. A patch that ends up empty is rejected
// with domain.ErrNoFieldsToUpdate.
func ValidateUpdate(req UpdateTaskRequest) (domain.TaskPatch, error) {
	var patch domain.TaskPatch

	if present(req.Title) {
		title := strings.TrimSpace(req.Title.Value)
		if err := validate.Var(title, titleRules); err != nil {
			return domain.TaskPatch{}, fieldError("title", err)
		}
		patch.Title = domain.Some(title)
	}

	if present(req.Description) {
		patch.Description = domain.Some(req.Description.Value)
	}

	if req.DueDate.Set {
		if req.DueDate.Null {
			patch.DueDate = domain.Some[*time.Time](nil)
		} else {
			due, err := ParseDueDate(req.DueDate.Value)
			if err != nil {
				return domain.TaskPatch{}, err
			}
			patch.DueDate = domain.Some(&due)
		}
	}

	if present(req.Priority) {
		if err := validate.Var(req.Priority.Value, priorityRules); err != nil {
			return domain.TaskPatch{}, fieldError("priority", err)
		}
		patch.Priority = domain.Some(domain.Priority(req.Priority.Value))
	}

	if present(req.Status) {
		if err := validate.Var(req.Status.Value, statusRules); err != nil {
			return domain.TaskPatch{}, fieldError("status", err)
		}
		patch.Status = domain.Some(domain.Status(req.Status.Value))
	}

	if patch.IsEmpty() {
		return domain.TaskPatch{}, domain.ErrNoFieldsToUpdate
	}
	return patch, nil
}

// ValidateFilter checks list query parameters. Empty values mean "no filter".
func ValidateFilter(q TaskFilterQuery) (domain.TaskFilter, error) {
	q.Status = strings.TrimSpace(q.Status)
	q.Priority = strings.TrimSpace(q.Priority)
	if err := validate.Struct(q); err != nil {
		return domain.TaskFilter{}, domain.NewValidationError("Invalid query params")
	}
	return domain.TaskFilter{
		Status:   domain.Status(q.Status),
		Priority: domain.Priority(q.Priority),
		Search:   strings.TrimSpace(q.Search),
	}, nil
}

// ValidateStatusChange checks the body of a status change
func ValidateStatusChange(req ChangeStatusRequest) (domain.Status, error) {
	if err := validate.Struct(req); err != nil {
		return "", toValidationError(err)
	}
	return domain.Status(req.Status), nil
}

func present[T any](o domain.Optional[T]) bool {
	return o.Set && !o.Null
}
