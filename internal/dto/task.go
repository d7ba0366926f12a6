package dto

import "time"

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,max=120"`
	Content     string `json:"content" binding:"max=1000"`
	IsCompleted bool   `json:"isCompleted"`
}

// EditTaskRequest sets the completion flag; content is left as is when omitted.
type EditTaskRequest struct {
	IsCompleted *bool   `json:"isCompleted" binding:"required"`
	Content     *string `json:"content,omitempty" binding:"omitempty,max=1000"`
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"isCompleted"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ListTasksResponse struct {
	Message string         `json:"message"`
	Tasks   []TaskResponse `json:"tasks"`
}
