package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	userID string
	event  domain.TaskEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *fakePublisher) Publish(userID string, ev domain.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{userID: userID, event: ev})
}

func (p *fakePublisher) all() []recordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]recordedEvent(nil), p.events...)
}

// stubStore lets a test script individual store calls
type stubStore struct {
	TaskStore
	update      func(ctx context.Context) (*domain.Task, error)
	list        func(ctx context.Context) ([]*domain.Task, error)
	updateCalls int
}

func (s *stubStore) Update(ctx context.Context, _, _ string, _ domain.TaskPatch) (*domain.Task, error) {
	s.updateCalls++
	return s.update(ctx)
}

func (s *stubStore) List(ctx context.Context, _ string, _ domain.TaskFilter) ([]*domain.Task, error) {
	return s.list(ctx)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store TaskStore, pub EventPublisher) *TaskService {
	return NewTaskService(store, TaskServiceConfig{
		StoreTimeout: time.Second,
		Events:       pub,
		Logger:       quietLogger(),
	})
}

func TestTaskService_CreateFetchUpdateDelete(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(repository.NewMemoryTaskRepository(), pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", domain.NewTask{Title: "Buy milk", Priority: domain.PriorityLow})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, created.Status)

	got, err := svc.GetOne(ctx, created.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	updated, err := svc.ChangeStatus(ctx, created.ID, "alice", domain.StatusDone)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, updated.Status)

	deleted, err := svc.Delete(ctx, created.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted)

	_, err = svc.GetOne(ctx, created.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	events := pub.all()
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventTaskCreated, events[0].event.Type)
	assert.Equal(t, domain.EventTaskUpdated, events[1].event.Type)
	assert.Equal(t, domain.EventTaskDeleted, events[2].event.Type)
	assert.Nil(t, events[2].event.Task)
	for _, e := range events {
		assert.Equal(t, "alice", e.userID)
		assert.Equal(t, created.ID, e.event.TaskID)
	}
}

func TestTaskService_EmptyUpdateNeverReachesStore(t *testing.T) {
	store := &stubStore{update: func(context.Context) (*domain.Task, error) {
		return &domain.Task{}, nil
	}}
	svc := newTestService(store, nil)

	_, err := svc.Update(context.Background(), "id", "alice", domain.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)
	assert.Zero(t, store.updateCalls)
}

func TestTaskService_ForeignTaskIsNotFoundAndSilent(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(repository.NewMemoryTaskRepository(), pub)
	ctx := context.Background()

	task, err := svc.Create(ctx, "alice", domain.NewTask{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, task.ID, "bob", domain.TaskPatch{Title: domain.Some("x")})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = svc.Delete(ctx, task.ID, "bob")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.Len(t, pub.all(), 1, "only the create is published")
}

func TestTaskService_StoreCallIsBounded(t *testing.T) {
	store := &stubStore{list: func(ctx context.Context) ([]*domain.Task, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewTaskService(store, TaskServiceConfig{StoreTimeout: 20 * time.Millisecond, Logger: quietLogger()})

	start := time.Now()
	_, err := svc.List(context.Background(), "alice", domain.TaskFilter{})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)

	var te *domain.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Failed to list tasks", te.Op)
}

func TestTaskService_DriverErrorBecomesPersistenceError(t *testing.T) {
	store := &stubStore{update: func(context.Context) (*domain.Task, error) {
		return nil, errors.New("connection reset")
	}}
	svc := newTestService(store, nil)

	_, err := svc.ChangeStatus(context.Background(), "id", "alice", domain.StatusDone)

	var pe *domain.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Failed to update task", pe.Op)
}

func TestTaskService_DomainErrorsPassThrough(t *testing.T) {
	store := &stubStore{update: func(context.Context) (*domain.Task, error) {
		return nil, &domain.TimeoutError{Op: "Failed to update task"}
	}}
	svc := newTestService(store, nil)

	_, err := svc.Update(context.Background(), "id", "alice", domain.TaskPatch{Title: domain.Some("x")})
	assert.True(t, domain.IsTimeout(err))
}

func TestTaskService_ListEmpty(t *testing.T) {
	svc := newTestService(repository.NewMemoryTaskRepository(), nil)

	tasks, err := svc.List(context.Background(), "nobody", domain.TaskFilter{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}
