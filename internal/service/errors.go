package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")

	ErrNotFound   = errors.New("not found")
	ErrTaskExists = errors.New("task with this title already exists")
)
