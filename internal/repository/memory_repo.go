package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
)

// MemoryTaskRepository keeps tasks in process memory with the same scoping,
// filtering and ordering rules as TaskRepository. It backs STORE_DRIVER=memory
// and the service/handler tests.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks []*domain.Task // insertion order
	now   func() time.Time
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return NewMemoryTaskRepositoryWithClock(time.Now)
}

// NewMemoryTaskRepositoryWithClock lets tests control createdAt/updatedAt
func NewMemoryTaskRepositoryWithClock(now func() time.Time) *MemoryTaskRepository {
	return &MemoryTaskRepository{now: now}
}

func (r *MemoryTaskRepository) Create(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("Failed to create task", err)
	}

	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	now := r.now().UTC()
	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     dueDateValue(in.DueDate),
		Priority:    priority,
		Status:      domain.StatusTodo,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	r.tasks = append(r.tasks, t)
	r.mu.Unlock()

	return clone(t), nil
}

func (r *MemoryTaskRepository) List(ctx context.Context, userID string, f domain.TaskFilter) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("Failed to list tasks", err)
	}

	search := strings.ToLower(f.Search)

	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		res = append(res, clone(t))
	}
	return res, nil
}

func (r *MemoryTaskRepository) GetOne(ctx context.Context, id, userID string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("Failed to fetch task", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, t := r.find(id, userID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	return clone(t), nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error) {
	if p.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	if err := ctx.Err(); err != nil {
		return nil, storeError("Failed to update task", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, t := r.find(id, userID)
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	if p.DueDate.Set {
		p.DueDate.Value = dueDateValue(p.DueDate.Value)
	}
	p.Apply(t)
	t.UpdatedAt = r.now().UTC()
	return clone(t), nil
}

func (r *MemoryTaskRepository) Delete(ctx context.Context, id, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storeError("Failed to delete task", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i, t := r.find(id, userID)
	if t == nil {
		return "", domain.ErrTaskNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return t.ID, nil
}

// find must be called with r.mu held
func (r *MemoryTaskRepository) find(id, userID string) (int, *domain.Task) {
	u, err := uuid.Parse(id)
	if err != nil {
		return -1, nil
	}
	key := u.String()
	for i, t := range r.tasks {
		if t.ID == key && t.UserID == userID {
			return i, t
		}
	}
	return -1, nil
}

func clone(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}
