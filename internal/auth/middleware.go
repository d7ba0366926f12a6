package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextKeyIdentity = "identity"

// RoleResolver looks up the current role of a user.
// It returns an error wrapping ErrUnknownUser when the user does not exist.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID int64) (string, error)
}

// Gate builds the authentication and role middlewares.
type Gate struct {
	tokens   *TokenManager
	roles    RoleResolver
	onReject func(reason string)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithRejectHook registers fn to be called with a short reason on every rejected request.
func WithRejectHook(fn func(reason string)) GateOption {
	return func(g *Gate) { g.onReject = fn }
}

// NewGate returns a Gate. roles may be nil if RequireRole is never used.
func NewGate(tokens *TokenManager, roles RoleResolver, opts ...GateOption) *Gate {
	g := &Gate{tokens: tokens, roles: roles, onReject: func(string) {}}
	for _, o := range opts {
		o(g)
	}
	return g
}

// IdentityFromContext returns the identity set by RequireToken or RequireRole.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKeyIdentity)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// UserIDFromContext returns the current user ID. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	id, _ := IdentityFromContext(c)
	return id.UserID
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively and must be followed by a single space.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// RequireToken returns a middleware that verifies the bearer token and puts the
// identity in context. It trusts the signature alone and never consults the user store,
// so a user deleted after issuance stays authenticated until the secret changes.
func (g *Gate) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := g.authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that authenticates like RequireToken and then
// checks the user's current role against role (exact, case-sensitive match).
// The role is looked up per request, so role changes apply without re-issuing tokens.
func (g *Gate) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := g.authenticate(c)
		if !ok {
			return
		}
		current, err := g.roles.RoleOf(c.Request.Context(), id.UserID)
		if err != nil && !errors.Is(err, ErrUnknownUser) {
			slog.ErrorContext(c.Request.Context(), "role lookup failed", "user_id", id.UserID, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if err != nil || current != role {
			g.reject(c, http.StatusForbidden, "forbidden_role", ErrForbiddenRole)
			return
		}
		c.Next()
	}
}

func (g *Gate) authenticate(c *gin.Context) (Identity, bool) {
	token, err := BearerToken(c.GetHeader("Authorization"))
	if err != nil {
		g.reject(c, http.StatusUnauthorized, "missing_token", err)
		return Identity{}, false
	}
	id, err := g.tokens.Verify(token)
	if err != nil {
		g.reject(c, http.StatusUnauthorized, reasonOf(err), err)
		return Identity{}, false
	}
	c.Set(contextKeyIdentity, id)
	return id, true
}

func (g *Gate) reject(c *gin.Context, status int, reason string, err error) {
	slog.WarnContext(c.Request.Context(), "request rejected",
		"path", c.FullPath(),
		"reason", reason,
		"err", err,
	)
	g.onReject(reason)
	msg := "authorization required"
	switch {
	case status == http.StatusForbidden:
		msg = "forbidden"
	case !errors.Is(err, ErrMissingToken):
		msg = "invalid token"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	default:
		return "invalid_signature"
	}
}
