package handlers

import (
	"errors"
	"net/http"
	"strconv"

	dom "Tasker/internal/domain"
	"Tasker/internal/dto"
	"Tasker/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin-only endpoints.
type AdminHandler struct {
	tasks *service.TaskService
	users *service.UserService
}

func NewAdminHandler(tasks *service.TaskService, users *service.UserService) *AdminHandler {
	return &AdminHandler{tasks: tasks, users: users}
}

// ListAll godoc
// @Summary      List tasks of all users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /user/todos [get]
func (h *AdminHandler) ListAll(c *gin.Context) {
	list, err := h.tasks.ListAll(c.Request.Context())
	if err != nil {
		internalError(c, "list all tasks", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTasksResponse{Message: "list of tasks", Tasks: tasksToResponses(list)})
}

// SetRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                 true  "User ID"
// @Param        body  body      dto.SetRoleRequest  true  "New role"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /user/users/{id}/role [patch]
func (h *AdminHandler) SetRole(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.SetRole(c.Request.Context(), id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			internalError(c, "set role", err)
		}
		return
	}
	c.JSON(http.StatusOK, userToResponse(u))
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}
