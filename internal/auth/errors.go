package auth

import "errors"

var (
	ErrMissingSecret = errors.New("token secret is not configured")

	// Token verification failures. All of them end up as 401.
	ErrMissingToken     = errors.New("missing bearer token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token expired")

	// ErrForbiddenRole ends up as 403.
	ErrForbiddenRole = errors.New("insufficient role")
)

// ErrUnknownUser is returned by a RoleResolver when the token subject no longer exists.
var ErrUnknownUser = errors.New("unknown user")
