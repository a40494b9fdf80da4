package repository

import (
	"context"
	"testing"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// taskStore is what both stores expose to the service layer
type taskStore interface {
	Create(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error)
	List(ctx context.Context, userID string, f domain.TaskFilter) ([]*domain.Task, error)
	GetOne(ctx context.Context, id, userID string) (*domain.Task, error)
	Update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, id, userID string) (string, error)
}

// runTaskStoreContract checks the behaviour every task store must share.
// newStore returns a fresh store plus two user ids that exist in it.
func runTaskStoreContract(t *testing.T, newStore func(t *testing.T) (taskStore, string, string)) {
	ctx := context.Background()

	t.Run("create applies defaults", func(t *testing.T) {
		s, alice, _ := newStore(t)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "Buy milk"})
		require.NoError(t, err)

		_, err = uuid.Parse(task.ID)
		assert.NoError(t, err)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, "", task.Description)
		assert.Nil(t, task.DueDate)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Equal(t, domain.StatusTodo, task.Status)
		assert.Equal(t, alice, task.UserID)
		assert.False(t, task.CreatedAt.IsZero())
		assert.Equal(t, task.CreatedAt, task.UpdatedAt)
	})

	t.Run("create keeps due date and priority", func(t *testing.T) {
		s, alice, _ := newStore(t)
		due := time.Date(2025, 12, 5, 9, 30, 0, 0, time.UTC)

		task, err := s.Create(ctx, alice, domain.NewTask{
			Title:       "Report",
			Description: "Q4 numbers",
			DueDate:     &due,
			Priority:    domain.PriorityHigh,
		})
		require.NoError(t, err)
		require.NotNil(t, task.DueDate)
		assert.True(t, due.Equal(*task.DueDate))
		assert.Equal(t, domain.PriorityHigh, task.Priority)
		assert.Equal(t, "Q4 numbers", task.Description)

		got, err := s.GetOne(ctx, task.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, task.ID, got.ID)
		require.NotNil(t, got.DueDate)
		assert.True(t, due.Equal(*got.DueDate))
	})

	t.Run("list is scoped to the owner in creation order", func(t *testing.T) {
		s, alice, bob := newStore(t)

		a1, err := s.Create(ctx, alice, domain.NewTask{Title: "first"})
		require.NoError(t, err)
		_, err = s.Create(ctx, bob, domain.NewTask{Title: "bob's"})
		require.NoError(t, err)
		a2, err := s.Create(ctx, alice, domain.NewTask{Title: "second"})
		require.NoError(t, err)

		tasks, err := s.List(ctx, alice, domain.TaskFilter{})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, a1.ID, tasks[0].ID)
		assert.Equal(t, a2.ID, tasks[1].ID)
		for _, task := range tasks {
			assert.Equal(t, alice, task.UserID)
		}
	})

	t.Run("list without matches is empty not nil", func(t *testing.T) {
		s, alice, _ := newStore(t)

		tasks, err := s.List(ctx, alice, domain.TaskFilter{})
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("list filters", func(t *testing.T) {
		s, alice, bob := newStore(t)

		_, err := s.Create(ctx, alice, domain.NewTask{Title: "Write report", Priority: domain.PriorityHigh})
		require.NoError(t, err)
		low, err := s.Create(ctx, alice, domain.NewTask{Title: "Walk", Description: "the REPORTer's dog", Priority: domain.PriorityLow})
		require.NoError(t, err)
		_, err = s.Create(ctx, alice, domain.NewTask{Title: "Sleep", Priority: domain.PriorityLow})
		require.NoError(t, err)
		_, err = s.Create(ctx, bob, domain.NewTask{Title: "report for bob", Priority: domain.PriorityHigh})
		require.NoError(t, err)

		_, err = s.Update(ctx, low.ID, alice, domain.TaskPatch{Status: domain.Some(domain.StatusDone)})
		require.NoError(t, err)

		byPriority, err := s.List(ctx, alice, domain.TaskFilter{Priority: domain.PriorityLow})
		require.NoError(t, err)
		assert.Len(t, byPriority, 2)

		byStatus, err := s.List(ctx, alice, domain.TaskFilter{Status: domain.StatusDone})
		require.NoError(t, err)
		require.Len(t, byStatus, 1)
		assert.Equal(t, low.ID, byStatus[0].ID)

		bySearch, err := s.List(ctx, alice, domain.TaskFilter{Search: "report"})
		require.NoError(t, err)
		assert.Len(t, bySearch, 2, "search matches title or description, case-insensitive")

		combined, err := s.List(ctx, alice, domain.TaskFilter{Search: "report", Priority: domain.PriorityLow, Status: domain.StatusDone})
		require.NoError(t, err)
		require.Len(t, combined, 1)
		assert.Equal(t, low.ID, combined[0].ID)

		none, err := s.List(ctx, alice, domain.TaskFilter{Search: "report", Status: domain.StatusInProgress})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("search is literal", func(t *testing.T) {
		s, alice, _ := newStore(t)

		_, err := s.Create(ctx, alice, domain.NewTask{Title: "50% off"})
		require.NoError(t, err)
		_, err = s.Create(ctx, alice, domain.NewTask{Title: "500 off"})
		require.NoError(t, err)

		tasks, err := s.List(ctx, alice, domain.TaskFilter{Search: "50%"})
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "50% off", tasks[0].Title)

		tasks, err = s.List(ctx, alice, domain.TaskFilter{Search: "_"})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("get foreign or unknown task is not found", func(t *testing.T) {
		s, alice, bob := newStore(t)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "mine"})
		require.NoError(t, err)

		_, err = s.GetOne(ctx, task.ID, bob)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		_, err = s.GetOne(ctx, uuid.NewString(), alice)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		_, err = s.GetOne(ctx, "not-a-uuid", alice)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("update writes only present fields", func(t *testing.T) {
		s, alice, _ := newStore(t)
		due := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "Old", Description: "keep me", DueDate: &due, Priority: domain.PriorityLow})
		require.NoError(t, err)

		updated, err := s.Update(ctx, task.ID, alice, domain.TaskPatch{Title: domain.Some("New")})
		require.NoError(t, err)
		assert.Equal(t, task.ID, updated.ID)
		assert.Equal(t, "New", updated.Title)
		assert.Equal(t, "keep me", updated.Description)
		assert.Equal(t, domain.PriorityLow, updated.Priority)
		assert.Equal(t, domain.StatusTodo, updated.Status)
		require.NotNil(t, updated.DueDate)
		assert.True(t, due.Equal(*updated.DueDate))
		assert.False(t, updated.UpdatedAt.Before(task.UpdatedAt))
		assert.Equal(t, task.CreatedAt, updated.CreatedAt)

		got, err := s.GetOne(ctx, task.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
	})

	t.Run("update clears due date and description", func(t *testing.T) {
		s, alice, _ := newStore(t)
		due := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "t", Description: "d", DueDate: &due})
		require.NoError(t, err)

		updated, err := s.Update(ctx, task.ID, alice, domain.TaskPatch{
			DueDate:     domain.Some[*time.Time](nil),
			Description: domain.Some(""),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.DueDate)
		assert.Equal(t, "", updated.Description)
	})

	t.Run("update status only", func(t *testing.T) {
		s, alice, _ := newStore(t)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "t"})
		require.NoError(t, err)

		updated, err := s.Update(ctx, task.ID, alice, domain.TaskPatch{Status: domain.Some(domain.StatusInProgress)})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
		assert.Equal(t, "t", updated.Title)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		s, alice, _ := newStore(t)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "t"})
		require.NoError(t, err)

		_, err = s.Update(ctx, task.ID, alice, domain.TaskPatch{})
		assert.ErrorIs(t, err, domain.ErrNoFieldsToUpdate)
	})

	t.Run("update of a foreign task leaves it untouched", func(t *testing.T) {
		s, alice, bob := newStore(t)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "mine"})
		require.NoError(t, err)

		_, err = s.Update(ctx, task.ID, bob, domain.TaskPatch{Title: domain.Some("stolen")})
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		got, err := s.GetOne(ctx, task.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, "mine", got.Title)
	})

	t.Run("delete", func(t *testing.T) {
		s, alice, bob := newStore(t)

		task, err := s.Create(ctx, alice, domain.NewTask{Title: "bye"})
		require.NoError(t, err)

		_, err = s.Delete(ctx, task.ID, bob)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		id, err := s.Delete(ctx, task.ID, alice)
		require.NoError(t, err)
		assert.Equal(t, task.ID, id)

		_, err = s.GetOne(ctx, task.ID, alice)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)

		_, err = s.Delete(ctx, task.ID, alice)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("cancelled context is a timeout", func(t *testing.T) {
		s, alice, _ := newStore(t)

		cctx, cancel := context.WithDeadline(ctx, time.Now().Add(-time.Second))
		defer cancel()

		_, err := s.List(cctx, alice, domain.TaskFilter{})
		require.Error(t, err)
		assert.True(t, domain.IsTimeout(err), "got %v", err)
	})
}
