package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"Tasker/internal/cache"
	dom "Tasker/internal/domain"
	"Tasker/internal/repo"
	"Tasker/internal/utils"

	"golang.org/x/sync/singleflight"
)

const (
	maxTitleLength   = 120
	maxContentLength = 1000
)

type TaskService struct {
	repo          repo.TaskRepo
	cache         *cache.TaskCache
	sf            singleflight.Group
	onCacheLookup func(hit bool)
}

// TaskOption configures a TaskService.
type TaskOption func(*TaskService)

// WithCacheObserver registers fn to be called after every cache lookup.
func WithCacheObserver(fn func(hit bool)) TaskOption {
	return func(s *TaskService) { s.onCacheLookup = fn }
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache, opts ...TaskOption) *TaskService {
	s := &TaskService{repo: r, cache: c, onCacheLookup: func(bool) {}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns the tasks owned by userID.
func (s *TaskService) List(ctx context.Context, userID int64) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.ListByUser(ctx, userID)
	}
	v, err, _ := s.sf.Do(flightKey(userID), func() (interface{}, error) {
		// the result is shared by every waiting caller
		ctx := context.WithoutCancel(ctx)
		list, err := s.cache.GetList(ctx, userID)
		if err != nil {
			slog.WarnContext(ctx, "task cache read failed", "user_id", userID, "err", err)
		}
		if err == nil && list != nil {
			s.onCacheLookup(true)
			return list, nil
		}
		s.onCacheLookup(false)

		gen, genErr := s.cache.Generation(ctx, userID)
		list, err = s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if genErr != nil {
			return list, nil
		}
		if _, err := s.cache.SetList(ctx, userID, gen, list); err != nil {
			slog.WarnContext(ctx, "task cache write failed", "user_id", userID, "err", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

// ListAll returns every task of every user.
func (s *TaskService) ListAll(ctx context.Context) ([]dom.Task, error) {
	return s.repo.ListAll(ctx)
}

func (s *TaskService) Create(ctx context.Context, userID int64, title, content string, isCompleted bool) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if err := validateTask(title, &content); err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Create(ctx, dom.Task{
		UserID:      userID,
		Title:       title,
		Content:     content,
		IsCompleted: isCompleted,
	})
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Task{}, ErrTaskExists
		}
		return dom.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Edit sets the completion flag of the task titled title; content is replaced only if non-nil.
func (s *TaskService) Edit(ctx context.Context, userID int64, title string, isCompleted bool, content *string) (dom.Task, error) {
	title = strings.TrimSpace(title)
	if err := validateTask(title, content); err != nil {
		return dom.Task{}, err
	}
	t, err := s.repo.Update(ctx, userID, title, isCompleted, content)
	if err != nil {
		if utils.IsNoRows(err) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, fmt.Errorf("update task: %w", err)
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID int64, title string) error {
	title = strings.TrimSpace(title)
	if err := s.repo.Delete(ctx, userID, title); err != nil {
		if utils.IsNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	s.sf.Forget(flightKey(userID))
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		slog.WarnContext(ctx, "task cache invalidation failed", "user_id", userID, "err", err)
	}
}

func flightKey(userID int64) string {
	return "list:" + strconv.FormatInt(userID, 10)
}

func validateTask(title string, content *string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title is too long", ErrValidation)
	}
	if content != nil && utf8.RuneCountInString(*content) > maxContentLength {
		return fmt.Errorf("%w: content is too long", ErrValidation)
	}
	return nil
}
