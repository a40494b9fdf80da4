package repository

import (
	"fmt"
	"strings"

	"taskboard/internal/domain"
)

const taskColumns = `id, title, description, due_date, priority, status, user_id, created_at, updated_at`

// buildListQuery composes the list statement. The owner predicate is always
// the first term; every optional filter is AND-ed to it, and the search
// disjunction over title/description is one AND-ed term.
func buildListQuery(userID string, f domain.TaskFilter) (string, []any) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if f.Priority != "" {
		args = append(args, string(f.Priority))
		conditions = append(conditions, fmt.Sprintf("priority = $%d", len(args)))
	}

	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created_at, id`
	return query, args
}

// buildUpdateQuery composes a single UPDATE that writes only the present
// fields of the patch. Ownership is part of the WHERE clause, so a task owned
// by someone else is simply not matched. id and userID are $1 and $2.
func buildUpdateQuery(id any, userID string, p domain.TaskPatch) (string, []any) {
	args := []any{id, userID}
	var sets []string

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Title.Set {
		set("title", p.Title.Value)
	}
	if p.Description.Set {
		set("description", p.Description.Value)
	}
	if p.DueDate.Set {
		set("due_date", dueDateValue(p.DueDate.Value))
	}
	if p.Priority.Set {
		set("priority", string(p.Priority.Value))
	}
	if p.Status.Set {
		set("status", string(p.Status.Value))
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE tasks SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns
	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
