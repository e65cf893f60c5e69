package domain

import "time"

// Task is a single to-do item owned by one chat user. ID is unique only
// within the owner: (UserID, ID) is the natural key, and ids are never
// renumbered after a deletion.
type Task struct {
	UserID      int64     `db:"user_id"`
	ID          int       `db:"id"`
	Description string    `db:"description"`
	Done        bool      `db:"done"`
	CreatedAt   time.Time `db:"created_at"`
}
