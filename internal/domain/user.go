package domain

import "time"

// User is the owner of tasks. Accounts are managed by the auth provider;
// this row only anchors the tasks foreign key.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
