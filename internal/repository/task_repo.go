package repository

import (
	"context"
	"errors"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TaskRepository scopes every statement to the owning user
type TaskRepository struct {
	db DBTX
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, userID string, in domain.NewTask) (*domain.Task, error) {
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, title, description, due_date, priority, status, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		pgUUID(uuid.New()), in.Title, in.Description, dueDateValue(in.DueDate), string(priority), string(domain.StatusTodo), userID,
	)

	t, err := scanTask(row)
	if err != nil {
		return nil, storeError("Failed to create task", err)
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context, userID string, f domain.TaskFilter) ([]*domain.Task, error) {
	query, args := buildListQuery(userID, f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeError("Failed to list tasks", err)
	}
	defer rows.Close()

	res := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, storeError("Failed to list tasks", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("Failed to list tasks", err)
	}
	return res, nil
}

func (r *TaskRepository) GetOne(ctx context.Context, id, userID string) (*domain.Task, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	row := r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, storeError("Failed to fetch task", err)
	}
	return t, nil
}

// Update applies the present fields of p in one statement. Zero matched rows
// means the task does not exist or is not owned by userID.
func (r *TaskRepository) Update(ctx context.Context, id, userID string, p domain.TaskPatch) (*domain.Task, error) {
	if p.IsEmpty() {
		return nil, domain.ErrNoFieldsToUpdate
	}
	taskID, ok := parseTaskID(id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	query, args := buildUpdateQuery(taskID, userID, p)
	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, storeError("Failed to update task", err)
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, userID string) (string, error) {
	taskID, ok := parseTaskID(id)
	if !ok {
		return "", domain.ErrTaskNotFound
	}

	var deleted pgtype.UUID
	err := r.db.QueryRow(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING id`,
		taskID, userID,
	).Scan(&deleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrTaskNotFound
	}
	if err != nil {
		return "", storeError("Failed to delete task", err)
	}
	return uuid.UUID(deleted.Bytes).String(), nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		id       pgtype.UUID
		due      pgtype.Timestamp
		priority string
		status   string
	)
	if err := row.Scan(&id, &t.Title, &t.Description, &due, &priority, &status, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.ID = uuid.UUID(id.Bytes).String()
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// storeError maps driver errors onto the domain taxonomy
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &domain.TimeoutError{Op: op, Err: err}
	}
	return &domain.PersistenceError{Op: op, Err: err}
}

// parseTaskID rejects ids that can not name a task, which keeps malformed ids
// on the not-found path instead of surfacing a cast error from Postgres.
func parseTaskID(id string) (pgtype.UUID, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, false
	}
	return pgUUID(u), true
}

func pgUUID(u uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: u, Valid: true}
}

// dueDateValue normalizes a due date before it is written
func dueDateValue(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
