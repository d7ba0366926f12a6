package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"Tasker/internal/auth"
	dom "Tasker/internal/domain"
	"Tasker/internal/repo"
	"Tasker/internal/utils"
)

const (
	minPasswordLen    = 4
	maxUsernameLength = 120
)

// UserService handles registration, login and roles.
type UserService struct {
	repo   repo.UserRepo
	hasher auth.Hasher
	tokens *auth.TokenManager

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService returns a new UserService.
func NewUserService(r repo.UserRepo, h auth.Hasher, tokens *auth.TokenManager) *UserService {
	return &UserService{repo: r, hasher: h, tokens: tokens}
}

// Register creates a user with role "user". Uniqueness of username is left to the
// store's unique index, so concurrent duplicate registrations cannot both succeed.
func (s *UserService) Register(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return dom.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return dom.User{}, fmt.Errorf("%w: password is too long", ErrValidation)
		}
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, hash, dom.RoleUser)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Login checks credentials and issues an access token.
// Unknown usernames still pay for a bcrypt comparison so timing does not reveal them.
func (s *UserService) Login(ctx context.Context, username, password string) (string, dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if utils.IsNoRows(err) {
			s.hasher.Verify(password, s.dummy())
			return "", dom.User{}, ErrUserNotFound
		}
		return "", dom.User{}, fmt.Errorf("get user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return "", dom.User{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Username: u.Username})
	if err != nil {
		return "", dom.User{}, err
	}
	return token, u, nil
}

// RoleOf implements auth.RoleResolver.
func (s *UserService) RoleOf(ctx context.Context, userID int64) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if utils.IsNoRows(err) {
			return "", fmt.Errorf("%w: %w", ErrUserNotFound, auth.ErrUnknownUser)
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	return u.Role, nil
}

// SetRole changes a user's role. Existing tokens pick the change up on their next request.
func (s *UserService) SetRole(ctx context.Context, userID int64, role string) (dom.User, error) {
	if !dom.ValidRole(role) {
		return dom.User{}, ErrInvalidRole
	}
	u, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.User{}, ErrUserNotFound
		}
		return dom.User{}, fmt.Errorf("update role: %w", err)
	}
	return u, nil
}

// EnsureAdmin makes sure username exists with the admin role, creating it with
// password if missing. The password of an existing account is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	u, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if u.Role == dom.RoleAdmin {
			return u, nil
		}
		return s.SetRole(ctx, u.ID, dom.RoleAdmin)
	case !utils.IsNoRows(err):
		return dom.User{}, fmt.Errorf("get user: %w", err)
	}

	if err := validateCredentials(username, password); err != nil {
		return dom.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dom.User{}, err
	}
	u, err = s.repo.Create(ctx, username, hash, dom.RoleAdmin)
	if err != nil {
		return dom.User{}, fmt.Errorf("create admin: %w", err)
	}
	return u, nil
}

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}

func validateCredentials(username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username should not be empty", ErrValidation)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return fmt.Errorf("%w: username is too long", ErrValidation)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("%w: password should be at least %d symbols", ErrValidation, minPasswordLen)
	}
	return nil
}
