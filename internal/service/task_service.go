package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/logger"
)

const defaultStoreTimeout = 5 * time.Second

// TaskStore is implemented by repository.TaskRepository and
// repository.MemoryTaskRepository
type TaskStore interface {
	Create(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error)
	List(ctx context.Context, userID string, f domain.TaskFilter) ([]*domain.Task, error)
	GetOne(ctx context.Context, id, userID string) (*domain.Task, error)
	Update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id, userID string) (string, error)
}

// EventPublisher delivers task changes to the owner's live subscribers.
// Publish must not block.
type EventPublisher interface {
	Publish(userID string, ev domain.TaskEvent)
}

type TaskServiceConfig struct {
	StoreTimeout time.Duration
	Events       EventPublisher
	Logger       *slog.Logger
}

// TaskService runs every task operation against the store on behalf of one
// already-authenticated user. Inputs are expected to be validated.
type TaskService struct {
	store   TaskStore
	timeout time.Duration
	events  EventPublisher
	log     *slog.Logger
	now     func() time.Time
}

func NewTaskService(store TaskStore, cfg TaskServiceConfig) *TaskService {
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}
	return &TaskService{
		store:   store,
		timeout: cfg.StoreTimeout,
		events:  cfg.Events,
		log:     cfg.Logger,
		now:     time.Now,
	}
}

func (s *TaskService) Create(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	task, err := s.store.Create(ctx, userID, in)
	if err != nil {
		return nil, s.fail(opCreate, "Failed to create task", err)
	}

	s.succeed(opCreate)
	s.log.Info("Task created", "task_id", task.ID, "user_id", userID)
	s.publish(userID, domain.EventTaskCreated, task.ID, task)
	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, f domain.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tasks, err := s.store.List(ctx, userID, f)
	if err != nil {
		return nil, s.fail(opList, "Failed to list tasks", err)
	}

	s.succeed(opList)
	s.log.Debug("Tasks fetched", "user_id", userID, "count", len(tasks))
	return tasks, nil
}

func (s *TaskService) GetOne(ctx context.Context, id, userID string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	task, err := s.store.GetOne(ctx, id, userID)
	if err != nil {
		return nil, s.fail(opGet, "Failed to fetch task", err)
	}

	s.succeed(opGet)
	s.log.Debug("Task fetched", "task_id", id, "user_id", userID)
	return task, nil
}

// Update writes the present fields of p. An empty patch is rejected before
// the store is reached.
func (s *TaskService) Update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error) {
	if p.IsEmpty() {
		taskOps.WithLabelValues(opUpdate, resultInvalid).Inc()
		return nil, domain.ErrNoFieldsToUpdate
	}

	task, err := s.update(ctx, id, userID, p)
	if err != nil {
		return nil, s.fail(opUpdate, "Failed to update task", err)
	}

	s.succeed(opUpdate)
	s.log.Info("Task updated", "task_id", id, "user_id", userID)
	s.publish(userID, domain.EventTaskUpdated, task.ID, task)
	return task, nil
}

// ChangeStatus is an update whose patch carries only the status
func (s *TaskService) ChangeStatus(ctx context.Context, id, userID string, status domain.Status) (*domain.Task, error) {
	task, err := s.update(ctx, id, userID, domain.TaskPatch{Status: domain.Some(status)})
	if err != nil {
		return nil, s.fail(opChangeStatus, "Failed to update task", err)
	}

	s.succeed(opChangeStatus)
	s.log.Info("Task status changed", "task_id", id, "user_id", userID, "status", status)
	s.publish(userID, domain.EventTaskUpdated, task.ID, task)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.store.Delete(ctx, id, userID)
	if err != nil {
		return "", s.fail(opDelete, "Failed to delete task", err)
	}

	s.succeed(opDelete)
	s.log.Info("Task deleted", "task_id", deleted, "user_id", userID)
	s.publish(userID, domain.EventTaskDeleted, deleted, nil)
	return deleted, nil
}

func (s *TaskService) update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Update(ctx, id, userID, p)
}

// fail normalizes err into the domain taxonomy and records the outcome.
// Domain errors pass through; a bare deadline becomes a TimeoutError and
// anything else a PersistenceError for op.
func (s *TaskService) fail(operation, op string, err error) error {
	var (
		validation *domain.ValidationError
		notFound   *domain.NotFoundError
		timeout    *domain.TimeoutError
		persist    *domain.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		taskOps.WithLabelValues(operation, resultInvalid).Inc()
		return err
	case errors.As(err, &notFound):
		taskOps.WithLabelValues(operation, resultNotFound).Inc()
		return err
	case errors.As(err, &timeout):
	case errors.Is(err, context.DeadlineExceeded):
		err = &domain.TimeoutError{Op: op, Err: err}
	case errors.As(err, &persist):
	default:
		err = &domain.PersistenceError{Op: op, Err: err}
	}

	result := resultError
	if domain.IsTimeout(err) {
		result = resultTimeout
	}
	taskOps.WithLabelValues(operation, result).Inc()
	s.log.Error(op, "error", err)
	return err
}

func (s *TaskService) succeed(operation string) {
	taskOps.WithLabelValues(operation, resultOK).Inc()
}

func (s *TaskService) publish(userID string, typ domain.TaskEventType, taskID string, task *domain.Task) {
	if s.events == nil {
		return
	}
	s.events.Publish(userID, domain.TaskEvent{
		Type:   typ,
		TaskID: taskID,
		Task:   task,
		At:     s.now().UTC(),
	})
}
