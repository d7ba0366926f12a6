package dto

import "time"

// LoginRequest is the JSON body for POST /user/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the access token.
type LoginResponse struct {
	Token string `json:"token"`
	Type  string `json:"type" example:"Bearer"`
}

// RegisterRequest is the JSON body for POST /user/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=120"`
	Password string `json:"password" binding:"required,min=4"`
}

// SetRoleRequest is the JSON body for PATCH /user/users/{id}/role.
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin" example:"admin"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}
