package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type Invitation struct {
	ID           string
	ProjectID    string
	InviteeEmail string
	InviterID    string
	Token        string
	Status       string // pending, accepted
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// InvitationDetails is the public verification view of a pending invitation.
type InvitationDetails struct {
	InviteeEmail string
	ProjectName  string
	InviterName  string
}

// AcceptedInvitation is what the acceptance transaction returns on success.
type AcceptedInvitation struct {
	InvitationID string
	ProjectID    string
	ProjectURL   string
	ProjectName  string
}

// Outcomes of the acceptance transaction that are not database failures.
var (
	ErrInvitationInvalid = errors.New("invitation is invalid or has expired")
	ErrEmailMismatch     = errors.New("invitation was sent to a different email address")
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *Invitation) error
	FindByID(ctx context.Context, id string) (*Invitation, error)
	FindDetailsByToken(ctx context.Context, token string) (*InvitationDetails, error)
	FindPendingByProject(ctx context.Context, projectID string) ([]*Invitation, error)
	ExistsPending(ctx context.Context, projectID, email string) (bool, error)
	AcceptByToken(ctx context.Context, token, userID, userEmail string) (*AcceptedInvitation, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
}

type pgInvitationRepository struct {
	db DB
}

func NewInvitationRepository(db DB) InvitationRepository {
	return &pgInvitationRepository{db: db}
}

// newInviteToken returns the hex encoding of 32 cryptographically random bytes.
func newInviteToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("invitation token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

func (r *pgInvitationRepository) Create(ctx context.Context, invitation *Invitation) error {
	invitation.Token = newInviteToken()
	if invitation.Status == "" {
		invitation.Status = "pending"
	}
	query := `
		INSERT INTO invitations (project_id, invitee_email, inviter_id, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		invitation.ProjectID, invitation.InviteeEmail, invitation.InviterID,
		invitation.Token, invitation.Status, invitation.ExpiresAt,
	).Scan(&invitation.ID, &invitation.CreatedAt)
}

func (r *pgInvitationRepository) FindByID(ctx context.Context, id string) (*Invitation, error) {
	query := `
		SELECT id, project_id, invitee_email, inviter_id, token, status, expires_at, created_at
		FROM invitations WHERE id = $1
	`
	invitation := &Invitation{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&invitation.ID, &invitation.ProjectID, &invitation.InviteeEmail, &invitation.InviterID,
		&invitation.Token, &invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// FindDetailsByToken returns nil for unknown, expired and already-accepted
// tokens alike; callers cannot distinguish the three.
func (r *pgInvitationRepository) FindDetailsByToken(ctx context.Context, token string) (*InvitationDetails, error) {
	query := `
		SELECT i.invitee_email, p.project_name, TRIM(u.first_name || ' ' || u.last_name)
		FROM invitations i
		JOIN projects p ON p.id = i.project_id
		JOIN users u ON u.id = i.inviter_id
		WHERE i.token = $1 AND i.status = 'pending' AND i.expires_at > NOW()
	`
	details := &InvitationDetails{}
	err := r.db.QueryRow(ctx, query, token).Scan(
		&details.InviteeEmail, &details.ProjectName, &details.InviterName,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *pgInvitationRepository) FindPendingByProject(ctx context.Context, projectID string) ([]*Invitation, error) {
	query := `
		SELECT id, project_id, invitee_email, inviter_id, token, status, expires_at, created_at
		FROM invitations WHERE project_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*Invitation
	for rows.Next() {
		invitation := &Invitation{}
		if err := rows.Scan(
			&invitation.ID, &invitation.ProjectID, &invitation.InviteeEmail, &invitation.InviterID,
			&invitation.Token, &invitation.Status, &invitation.ExpiresAt, &invitation.CreatedAt,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	return invitations, rows.Err()
}

func (r *pgInvitationRepository) ExistsPending(ctx context.Context, projectID, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invitations
			WHERE project_id = $1 AND invitee_email = $2 AND status = 'pending'
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// AcceptByToken runs the acceptance transaction: the membership insert and the
// invitation status flip either both persist or neither does. The conditional
// status update guarantees at most one acceptance succeeds per token, even
// under concurrent requests for the same invitation.
func (r *pgInvitationRepository) AcceptByToken(ctx context.Context, token, userID, userEmail string) (*AcceptedInvitation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	// No-op once the transaction has committed.
	defer tx.Rollback(ctx)

	query := `
		SELECT i.id, i.invitee_email, i.status, i.expires_at,
		       p.id, p.project_url, p.project_name
		FROM invitations i
		JOIN projects p ON p.id = i.project_id
		WHERE i.token = $1
	`
	var (
		inviteeEmail string
		status       string
		expiresAt    time.Time
	)
	accepted := &AcceptedInvitation{}
	err = tx.QueryRow(ctx, query, token).Scan(
		&accepted.InvitationID, &inviteeEmail, &status, &expiresAt,
		&accepted.ProjectID, &accepted.ProjectURL, &accepted.ProjectName,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrInvitationInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "pending" || expiresAt.Before(time.Now()) {
		return nil, ErrInvitationInvalid
	}
	if inviteeEmail != userEmail {
		return nil, ErrEmailMismatch
	}

	insert := `
		INSERT INTO project_users (project_id, user_id, role)
		VALUES ($1, $2, 'member')
		ON CONFLICT (project_id, user_id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, insert, accepted.ProjectID, userID); err != nil {
		return nil, err
	}

	update := `UPDATE invitations SET status = 'accepted' WHERE id = $1 AND status = 'pending'`
	tag, err := tx.Exec(ctx, update, accepted.InvitationID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// A concurrent request accepted this invitation first.
		return nil, ErrInvitationInvalid
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return accepted, nil
}

func (r *pgInvitationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM invitations WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *pgInvitationRepository) DeleteExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM invitations WHERE expires_at < NOW() AND status = 'pending'`
	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
