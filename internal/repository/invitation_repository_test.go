package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// invitationRow is the row the acceptance SELECT would return.
type invitationRow struct {
	invitationID string
	inviteeEmail string
	status       string
	expiresAt    time.Time
	projectID    string
	projectURL   string
	projectName  string
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// fakeTx records every statement issued inside the transaction.
type fakeTx struct {
	t          *testing.T
	statements *[]string
	row        *invitationRow
	updateTag  pgconn.CommandTag
	execErr    error
}

func (tx *fakeTx) record(s string) { *tx.statements = append(*tx.statements, s) }

func (tx *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	tx.record("SELECT")
	return &fakeRow{scan: func(dest ...any) error {
		if tx.row == nil {
			return pgx.ErrNoRows
		}
		*dest[0].(*string) = tx.row.invitationID
		*dest[1].(*string) = tx.row.inviteeEmail
		*dest[2].(*string) = tx.row.status
		*dest[3].(*time.Time) = tx.row.expiresAt
		*dest[4].(*string) = tx.row.projectID
		*dest[5].(*string) = tx.row.projectURL
		*dest[6].(*string) = tx.row.projectName
		return nil
	}}
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO project_users"):
		tx.record("INSERT")
		return pgconn.NewCommandTag("INSERT 0 1"), tx.execErr
	case strings.Contains(sql, "UPDATE invitations"):
		tx.record("UPDATE")
		return tx.updateTag, tx.execErr
	default:
		tx.t.Fatalf("unexpected statement in transaction: %s", sql)
		return pgconn.CommandTag{}, nil
	}
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.record("COMMIT")
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	tx.record("ROLLBACK")
	return nil
}

func (tx *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return tx, nil }
func (tx *fakeTx) Conn() *pgx.Conn                           { return nil }
func (tx *fakeTx) LargeObjects() pgx.LargeObjects            { return pgx.LargeObjects{} }

func (tx *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (tx *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (tx *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (tx *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

// fakeDB hands out the fake transaction and records the BEGIN.
type fakeDB struct {
	tx         *fakeTx
	statements []string
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	db.statements = append(db.statements, "BEGIN")
	db.tx.statements = &db.statements
	return db.tx, nil
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (db *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func newAcceptFixture(t *testing.T, row *invitationRow, updateTag pgconn.CommandTag) (*fakeDB, InvitationRepository) {
	db := &fakeDB{tx: &fakeTx{t: t, row: row, updateTag: updateTag}}
	return db, NewInvitationRepository(db)
}

func pendingRow() *invitationRow {
	return &invitationRow{
		invitationID: "inv-1",
		inviteeEmail: "dana@example.com",
		status:       "pending",
		expiresAt:    time.Now().Add(24 * time.Hour),
		projectID:    "proj-1",
		projectURL:   "website-redesign-a1b2c3",
		projectName:  "Website Redesign",
	}
}

func TestAcceptByToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success commits insert and update in order", func(t *testing.T) {
		db, repo := newAcceptFixture(t, pendingRow(), pgconn.NewCommandTag("UPDATE 1"))

		accepted, err := repo.AcceptByToken(ctx, "tok", "user-9", "dana@example.com")
		require.NoError(t, err)
		require.Equal(t, "inv-1", accepted.InvitationID)
		require.Equal(t, "proj-1", accepted.ProjectID)
		require.Equal(t, "website-redesign-a1b2c3", accepted.ProjectURL)
		require.Equal(t, "Website Redesign", accepted.ProjectName)

		// Deferred rollback still fires after commit but is a no-op then.
		require.Equal(t, []string{"BEGIN", "SELECT", "INSERT", "UPDATE", "COMMIT", "ROLLBACK"}, db.statements)
	})

	t.Run("unknown token rolls back after the select", func(t *testing.T) {
		db, repo := newAcceptFixture(t, nil, pgconn.NewCommandTag("UPDATE 1"))

		_, err := repo.AcceptByToken(ctx, "bad-tok", "user-9", "dana@example.com")
		require.ErrorIs(t, err, ErrInvitationInvalid)
		require.Equal(t, []string{"BEGIN", "SELECT", "ROLLBACK"}, db.statements)
	})

	t.Run("email mismatch never inserts membership", func(t *testing.T) {
		db, repo := newAcceptFixture(t, pendingRow(), pgconn.NewCommandTag("UPDATE 1"))

		_, err := repo.AcceptByToken(ctx, "tok", "user-9", "other@example.com")
		require.ErrorIs(t, err, ErrEmailMismatch)
		require.Equal(t, []string{"BEGIN", "SELECT", "ROLLBACK"}, db.statements)
	})

	t.Run("expired invitation is rejected", func(t *testing.T) {
		row := pendingRow()
		row.expiresAt = time.Now().Add(-time.Hour)
		db, repo := newAcceptFixture(t, row, pgconn.NewCommandTag("UPDATE 1"))

		_, err := repo.AcceptByToken(ctx, "tok", "user-9", "dana@example.com")
		require.ErrorIs(t, err, ErrInvitationInvalid)
		require.NotContains(t, db.statements, "INSERT")
	})

	t.Run("already accepted invitation is rejected", func(t *testing.T) {
		row := pendingRow()
		row.status = "accepted"
		db, repo := newAcceptFixture(t, row, pgconn.NewCommandTag("UPDATE 1"))

		_, err := repo.AcceptByToken(ctx, "tok", "user-9", "dana@example.com")
		require.ErrorIs(t, err, ErrInvitationInvalid)
		require.NotContains(t, db.statements, "INSERT")
	})

	t.Run("lost race on the conditional update rolls everything back", func(t *testing.T) {
		db, repo := newAcceptFixture(t, pendingRow(), pgconn.NewCommandTag("UPDATE 0"))

		_, err := repo.AcceptByToken(ctx, "tok", "user-9", "dana@example.com")
		require.ErrorIs(t, err, ErrInvitationInvalid)
		require.Equal(t, []string{"BEGIN", "SELECT", "INSERT", "UPDATE", "ROLLBACK"}, db.statements)
		require.NotContains(t, db.statements, "COMMIT")
	})
}

func TestNewInviteToken(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := newInviteToken()
		require.Len(t, token, 64)
		require.False(t, seen[token], "token generated twice")
		seen[token] = true
	}
}

func TestFindDetailsByToken_NoRow(t *testing.T) {
	t.Parallel()

	db := &fakeDB{tx: &fakeTx{}}
	repo := NewInvitationRepository(db)

	details, err := repo.FindDetailsByToken(context.Background(), "unknown")
	require.NoError(t, err)
	require.Nil(t, details)
}
