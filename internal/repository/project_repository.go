package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type Project struct {
	ID          string
	ProjectURL  string
	ProjectName string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ID        string
	ProjectID string
	UserID    string
	Role      string
	JoinedAt  time.Time
	User      *User
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindByURL(ctx context.Context, projectURL string) (*Project, error)
	FindByUserID(ctx context.Context, userID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error

	// Member operations
	AddMember(ctx context.Context, member *ProjectMember) error
	FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error)
	RemoveMember(ctx context.Context, projectID, userID string) error
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	IsMemberByEmail(ctx context.Context, projectID, email string) (bool, error)
}

type pgProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) ProjectRepository {
	return &pgProjectRepository{db: db}
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (project_url, project_name, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, query,
		project.ProjectURL, project.ProjectName, project.OwnerID,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, project_url, project_name, owner_id, created_at, updated_at
		FROM projects WHERE id = $1
	`
	return r.scanProject(r.db.QueryRow(ctx, query, id))
}

func (r *pgProjectRepository) FindByURL(ctx context.Context, projectURL string) (*Project, error) {
	query := `
		SELECT id, project_url, project_name, owner_id, created_at, updated_at
		FROM projects WHERE project_url = $1
	`
	return r.scanProject(r.db.QueryRow(ctx, query, projectURL))
}

func (r *pgProjectRepository) scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.ProjectURL, &p.ProjectName, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) FindByUserID(ctx context.Context, userID string) ([]*Project, error) {
	query := `
		SELECT p.id, p.project_url, p.project_name, p.owner_id, p.created_at, p.updated_at
		FROM projects p
		JOIN project_users pu ON pu.project_id = p.id
		WHERE pu.user_id = $1
		ORDER BY p.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(
			&p.ID, &p.ProjectURL, &p.ProjectName, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET project_name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.db.QueryRow(ctx, query, project.ID, project.ProjectName).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *pgProjectRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	query := `
		INSERT INTO project_users (project_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	return r.db.QueryRow(ctx, query,
		member.ProjectID, member.UserID, member.Role,
	).Scan(&member.ID, &member.JoinedAt)
}

func (r *pgProjectRepository) FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error) {
	query := `
		SELECT pu.id, pu.project_id, pu.user_id, pu.role, pu.joined_at,
		       u.id, u.email, u.first_name, u.last_name, u.avatar_url
		FROM project_users pu
		JOIN users u ON u.id = pu.user_id
		WHERE pu.project_id = $1
		ORDER BY pu.joined_at ASC
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*ProjectMember
	for rows.Next() {
		m := &ProjectMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.ProjectID, &m.UserID, &m.Role, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.FirstName, &m.User.LastName, &m.User.AvatarURL,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	query := `DELETE FROM project_users WHERE project_id = $1 AND user_id = $2`
	_, err := r.db.Exec(ctx, query, projectID, userID)
	return err
}

func (r *pgProjectRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM project_users WHERE project_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pgProjectRepository) IsMemberByEmail(ctx context.Context, projectID, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_users pu
			JOIN users u ON u.id = pu.user_id
			WHERE pu.project_id = $1 AND u.email = $2
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
