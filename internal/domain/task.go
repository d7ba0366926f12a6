package domain

import "time"

// Task is a personal to-do item. Owner plus title identify it.
// Не зависит от Gin, Postgres, Redis.
type Task struct {
	ID          int64
	UserID      int64
	Title       string
	Content     string
	IsCompleted bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
