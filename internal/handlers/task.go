package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"Tasker/internal/auth"
	dom "Tasker/internal/domain"
	"Tasker/internal/dto"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// List godoc
// @Summary      List my tasks
// @Tags         todo
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /todo/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	id, _ := auth.IdentityFromContext(c)
	list, err := h.svc.List(c.Request.Context(), id.UserID)
	if err != nil {
		internalError(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{
		Message: "tasks of " + id.Username,
		Tasks:   tasksToResponses(list),
	})
}

// Create godoc
// @Summary      Create a task
// @Tags         todo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /todo/create [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Create(c.Request.Context(), auth.UserIDFromContext(c), req.Title, req.Content, req.IsCompleted)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrTaskExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			internalError(c, "create task", err)
		}
		return
	}
	c.JSON(http.StatusCreated, taskToResponse(t))
}

// Edit godoc
// @Summary      Edit a task
// @Description  Sets the completion flag of the task with the given title. Content is replaced only when sent.
// @Tags         todo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title  path      string               true  "Task title"
// @Param        body   body      dto.EditTaskRequest  true  "Changes"
// @Success      200    {object}  dto.TaskResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      401    {object}  dto.ErrorResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /todo/edit/{title} [patch]
func (h *TaskHandler) Edit(c *gin.Context) {
	var req dto.EditTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.svc.Edit(c.Request.Context(), auth.UserIDFromContext(c), c.Param("title"), *req.IsCompleted, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		default:
			internalError(c, "edit task", err)
		}
		return
	}
	c.JSON(http.StatusOK, taskToResponse(t))
}

// Delete godoc
// @Summary      Delete a task
// @Tags         todo
// @Security     BearerAuth
// @Param        title  path  string  true  "Task title"
// @Success      204
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /todo/delete/{title} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), c.Param("title"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		internalError(c, "delete task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func internalError(c *gin.Context, op string, err error) {
	slog.ErrorContext(c.Request.Context(), op+" failed", "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Content:     t.Content,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}
