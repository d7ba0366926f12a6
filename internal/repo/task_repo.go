package repo

import (
	"context"

	dom "Tasker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo provides task persistence. Tasks are addressed by (userID, title).
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]dom.Task, error)
	ListAll(ctx context.Context) ([]dom.Task, error)
	Update(ctx context.Context, userID int64, title string, isCompleted bool, content *string) (dom.Task, error)
	Delete(ctx context.Context, userID int64, title string) error
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, user_id, title, content, is_completed, created_at, updated_at`

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, content, is_completed)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, t.UserID, t.Title, t.Content, t.IsCompleted))
}

func (r *PGTaskRepo) ListByUser(ctx context.Context, userID int64) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at, id`
	return r.list(ctx, query, userID)
}

func (r *PGTaskRepo) ListAll(ctx context.Context) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY user_id, created_at, id`
	return r.list(ctx, query)
}

// Update sets the completion flag and, if content is non-nil, the content.
func (r *PGTaskRepo) Update(ctx context.Context, userID int64, title string, isCompleted bool, content *string) (dom.Task, error) {
	query := `
		UPDATE tasks SET is_completed = $3, content = COALESCE($4, content), updated_at = NOW()
		WHERE user_id = $1 AND title = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, userID, title, isCompleted, content))
}

// Delete removes the task or returns pgx.ErrNoRows if there was none.
func (r *PGTaskRepo) Delete(ctx context.Context, userID int64, title string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE user_id = $1 AND title = $2`, userID, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PGTaskRepo) list(ctx context.Context, query string, args ...any) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []dom.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Content, &t.IsCompleted, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
