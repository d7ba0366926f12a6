// Package repotest provides in-memory UserRepo and TaskRepo implementations for tests.
// They report duplicates and misses with the same errors Postgres would
// (*pgconn.PgError code 23505 and pgx.ErrNoRows).
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "Tasker/internal/domain"
	"Tasker/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	_ repo.UserRepo = (*Users)(nil)
	_ repo.TaskRepo = (*Tasks)(nil)
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

// Users is an in-memory repo.UserRepo.
type Users struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]dom.User
	// Err, if set, is returned by every call.
	Err error
}

func NewUsers() *Users {
	return &Users{byID: map[int64]dom.User{}}
}

func (r *Users) Create(_ context.Context, username, passwordHash, role string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	for _, u := range r.byID {
		if u.Username == username {
			return dom.User{}, uniqueViolation("users_username_key")
		}
	}
	r.nextID++
	u := dom.User{ID: r.nextID, Username: username, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now().UTC()}
	r.byID[u.ID] = u
	return u, nil
}

func (r *Users) GetByUsername(_ context.Context, username string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *Users) GetByID(_ context.Context, id int64) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *Users) UpdateRole(_ context.Context, id int64, role string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.User{}, r.Err
	}
	u, ok := r.byID[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	u.Role = role
	r.byID[id] = u
	return u, nil
}

// Delete removes a user. UserRepo has no such operation; tests use it to simulate
// an account disappearing after a token was issued.
func (r *Users) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Count returns the number of stored users.
func (r *Users) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

type taskKey struct {
	userID int64
	title  string
}

// Tasks is an in-memory repo.TaskRepo.
type Tasks struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[taskKey]dom.Task
	// Calls counts ListByUser invocations.
	Calls int
	Err   error
}

func NewTasks() *Tasks {
	return &Tasks{tasks: map[taskKey]dom.Task{}}
}

func (r *Tasks) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.Task{}, r.Err
	}
	k := taskKey{t.UserID, t.Title}
	if _, ok := r.tasks[k]; ok {
		return dom.Task{}, uniqueViolation("tasks_user_title_key")
	}
	r.nextID++
	now := time.Now().UTC()
	t.ID, t.CreatedAt, t.UpdatedAt = r.nextID, now, now
	r.tasks[k] = t
	return t, nil
}

func (r *Tasks) ListByUser(_ context.Context, userID int64) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(t dom.Task) bool { return t.UserID == userID }), nil
}

func (r *Tasks) ListAll(_ context.Context) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.filter(func(dom.Task) bool { return true }), nil
}

func (r *Tasks) Update(_ context.Context, userID int64, title string, isCompleted bool, content *string) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return dom.Task{}, r.Err
	}
	k := taskKey{userID, title}
	t, ok := r.tasks[k]
	if !ok {
		return dom.Task{}, pgx.ErrNoRows
	}
	t.IsCompleted = isCompleted
	if content != nil {
		t.Content = *content
	}
	t.UpdatedAt = time.Now().UTC()
	r.tasks[k] = t
	return t, nil
}

func (r *Tasks) Delete(_ context.Context, userID int64, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	k := taskKey{userID, title}
	if _, ok := r.tasks[k]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tasks, k)
	return nil
}

func (r *Tasks) filter(keep func(dom.Task) bool) []dom.Task {
	out := []dom.Task{}
	for _, t := range r.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
