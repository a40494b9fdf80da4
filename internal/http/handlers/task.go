package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/http/middleware"
	"taskboard/internal/validation"

	"github.com/gin-gonic/gin"
)

// TaskService is the part of service.TaskService the handlers call
type TaskService interface {
	Create(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error)
	List(ctx context.Context, userID string, f domain.TaskFilter) ([]*domain.Task, error)
	GetOne(ctx context.Context, id, userID string) (*domain.Task, error)
	Update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error)
	ChangeStatus(ctx context.Context, id, userID string, status domain.Status) (*domain.Task, error)
	Delete(ctx context.Context, id, userID string) (string, error)
}

type TaskHandler struct {
	tasks TaskService
	log   *slog.Logger
}

func NewTaskHandler(tasks TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: loggerOrDefault(log)}
}

// Create handles POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req validation.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	in, err := validation.ValidateCreate(req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), userID, in)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// List handles GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var q validation.TaskFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, h.log, domain.NewValidationError("Invalid query params"))
		return
	}
	f, err := validation.ValidateFilter(q)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, f)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get handles GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	userID, id, ok := h.userAndTaskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetOne(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update handles PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID, id, ok := h.userAndTaskID(c)
	if !ok {
		return
	}

	var req validation.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	patch, err := validation.ValidateUpdate(req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, userID, patch)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ChangeStatus handles PATCH /tasks/:id/status
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	userID, id, ok := h.userAndTaskID(c)
	if !ok {
		return
	}

	var req validation.ChangeStatusRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.log, err)
		return
	}
	status, err := validation.ValidateStatusChange(req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	task, err := h.tasks.ChangeStatus(c.Request.Context(), id, userID, status)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, id, ok := h.userAndTaskID(c)
	if !ok {
		return
	}

	deleted, err := h.tasks.Delete(c.Request.Context(), id, userID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": deleted})
}

func (h *TaskHandler) userID(c *gin.Context) (string, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	return id.UserID, true
}

func (h *TaskHandler) userAndTaskID(c *gin.Context) (string, string, bool) {
	userID, ok := h.userID(c)
	if !ok {
		return "", "", false
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		writeError(c, h.log, &domain.MissingParameterError{Name: "Task ID"})
		return "", "", false
	}
	return userID, id, true
}
