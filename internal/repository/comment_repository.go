package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type Comment struct {
	ID        string
	TaskID    string
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
	Author    *User
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id string) error
}

type pgCommentRepository struct {
	db DB
}

func NewCommentRepository(db DB) CommentRepository {
	return &pgCommentRepository{db: db}
}

func (r *pgCommentRepository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (task_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		comment.TaskID, comment.UserID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

// FindByID returns the comment hydrated with its author.
func (r *pgCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, c.updated_at,
		       u.id, u.email, u.first_name, u.last_name, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1
	`
	comment := &Comment{Author: &User{}}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt,
		&comment.Author.ID, &comment.Author.Email, &comment.Author.FirstName,
		&comment.Author.LastName, &comment.Author.AvatarURL,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *pgCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, c.updated_at,
		       u.id, u.email, u.first_name, u.last_name, u.avatar_url
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.task_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		comment := &Comment{Author: &User{}}
		if err := rows.Scan(
			&comment.ID, &comment.TaskID, &comment.UserID, &comment.Content,
			&comment.CreatedAt, &comment.UpdatedAt,
			&comment.Author.ID, &comment.Author.Email, &comment.Author.FirstName,
			&comment.Author.LastName, &comment.Author.AvatarURL,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (r *pgCommentRepository) Update(ctx context.Context, comment *Comment) error {
	query := `
		UPDATE comments SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query, comment.ID, comment.Content).Scan(&comment.UpdatedAt)
}

func (r *pgCommentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM comments WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
