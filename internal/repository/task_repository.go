package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type Task struct {
	ID          string
	ProjectID   string
	Title       string
	Description *string
	Status      string
	Priority    string
	AssigneeID  *string
	DueDate     *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StatusCount is one kanban column of the project dashboard.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByProjectID(ctx context.Context, projectID string) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateAssignee(ctx context.Context, id string, assigneeID *string) error
	Delete(ctx context.Context, id string) error

	// HasAccess reports whether the user is a member of the task's project.
	HasAccess(ctx context.Context, taskID, userID string) (bool, error)
	CountByStatus(ctx context.Context, projectID string) ([]*StatusCount, error)
}

type pgTaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

func (r *pgTaskRepository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (project_id, title, description, status, priority, assignee_id, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.DueDate, task.CreatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := `
		SELECT id, project_id, title, description, status, priority, assignee_id, due_date, created_by, created_at, updated_at
		FROM tasks WHERE id = $1
	`
	task := &Task{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status,
		&task.Priority, &task.AssigneeID, &task.DueDate, &task.CreatedBy,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *pgTaskRepository) FindByProjectID(ctx context.Context, projectID string) ([]*Task, error) {
	query := `
		SELECT id, project_id, title, description, status, priority, assignee_id, due_date, created_by, created_at, updated_at
		FROM tasks WHERE project_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task := &Task{}
		if err := rows.Scan(
			&task.ID, &task.ProjectID, &task.Title, &task.Description, &task.Status,
			&task.Priority, &task.AssigneeID, &task.DueDate, &task.CreatedBy,
			&task.CreatedAt, &task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *pgTaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks SET
			title = $2,
			description = $3,
			status = $4,
			priority = $5,
			assignee_id = $6,
			due_date = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, task.DueDate,
	).Scan(&task.UpdatedAt)
}

func (r *pgTaskRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE tasks SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

func (r *pgTaskRepository) UpdateAssignee(ctx context.Context, id string, assigneeID *string) error {
	query := `UPDATE tasks SET assignee_id = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, assigneeID)
	return err
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tasks WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *pgTaskRepository) HasAccess(ctx context.Context, taskID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks t
			JOIN project_users pu ON pu.project_id = t.project_id
			WHERE t.id = $1 AND pu.user_id = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, taskID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pgTaskRepository) CountByStatus(ctx context.Context, projectID string) ([]*StatusCount, error) {
	query := `
		SELECT status, COUNT(*)
		FROM tasks WHERE project_id = $1
		GROUP BY status
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*StatusCount
	for rows.Next() {
		c := &StatusCount{}
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
