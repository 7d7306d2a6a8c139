package service

import (
	"context"
	"testing"
	"time"

	"github.com/EshwarReddy13/tassot-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAuthUserRepo struct {
	repository.UserRepository

	byEmail      *repository.User
	byID         *repository.User
	refreshToken *repository.RefreshToken

	createCalls  int
	savedRefresh *repository.RefreshToken
	deletedToken string
}

func (f *fakeAuthUserRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	return f.byEmail, nil
}

func (f *fakeAuthUserRepo) FindByID(ctx context.Context, id string) (*repository.User, error) {
	return f.byID, nil
}

func (f *fakeAuthUserRepo) Create(ctx context.Context, user *repository.User) error {
	f.createCalls++
	user.ID = "user-1"
	return nil
}

func (f *fakeAuthUserRepo) SaveRefreshToken(ctx context.Context, token *repository.RefreshToken) error {
	f.savedRefresh = token
	return nil
}

func (f *fakeAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	return f.refreshToken, nil
}

func (f *fakeAuthUserRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	f.deletedToken = token
	return nil
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("rejects short passwords", func(t *testing.T) {
		svc := NewAuthService(testConfig(), &fakeAuthUserRepo{})

		_, _, _, err := svc.Register(ctx, "Dana", "Reyes", "dana@example.com", "short")
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		repo := &fakeAuthUserRepo{byEmail: &repository.User{ID: "existing"}}
		svc := NewAuthService(testConfig(), repo)

		_, _, _, err := svc.Register(ctx, "Dana", "Reyes", "dana@example.com", "password123")
		require.ErrorIs(t, err, ErrUserExists)
		require.Zero(t, repo.createCalls)
	})

	t.Run("normalizes email and hashes the password", func(t *testing.T) {
		repo := &fakeAuthUserRepo{}
		svc := NewAuthService(testConfig(), repo)

		user, access, refresh, err := svc.Register(ctx, " Dana ", "Reyes", " Dana@Example.COM ", "password123")
		require.NoError(t, err)
		require.Equal(t, "dana@example.com", user.Email)
		require.Equal(t, "Dana", user.FirstName)
		require.NotEqual(t, "password123", user.PasswordHash)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		require.NotEmpty(t, access)
		require.NotEmpty(t, refresh)
		require.Equal(t, refresh, repo.savedRefresh.Token)

		// The access token carries the user's ID and email for the accept flow.
		token, err := jwt.Parse(access, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		require.Equal(t, "user-1", claims["sub"])
		require.Equal(t, "dana@example.com", claims["email"])
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &repository.User{ID: "user-1", Email: "dana@example.com", PasswordHash: string(hash)}

	t.Run("unknown email fails with invalid credentials", func(t *testing.T) {
		svc := NewAuthService(testConfig(), &fakeAuthUserRepo{})

		_, _, _, err := svc.Login(ctx, "nobody@example.com", "password123")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password fails with invalid credentials", func(t *testing.T) {
		svc := NewAuthService(testConfig(), &fakeAuthUserRepo{byEmail: user})

		_, _, _, err := svc.Login(ctx, "dana@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("correct password returns tokens", func(t *testing.T) {
		svc := NewAuthService(testConfig(), &fakeAuthUserRepo{byEmail: user})

		got, access, refresh, err := svc.Login(ctx, "Dana@Example.com", "password123")
		require.NoError(t, err)
		require.Equal(t, "user-1", got.ID)
		require.NotEmpty(t, access)
		require.NotEmpty(t, refresh)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("expired refresh token is rejected and deleted", func(t *testing.T) {
		repo := &fakeAuthUserRepo{refreshToken: &repository.RefreshToken{
			Token:     "old-token",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(-time.Hour),
		}}
		svc := NewAuthService(testConfig(), repo)

		_, _, err := svc.RefreshToken(ctx, "old-token")
		require.ErrorIs(t, err, ErrInvalidToken)
		require.Equal(t, "old-token", repo.deletedToken)
	})

	t.Run("valid refresh token is rotated", func(t *testing.T) {
		repo := &fakeAuthUserRepo{
			refreshToken: &repository.RefreshToken{
				Token:     "old-token",
				UserID:    "user-1",
				ExpiresAt: time.Now().Add(time.Hour),
			},
			byID: &repository.User{ID: "user-1", Email: "dana@example.com"},
		}
		svc := NewAuthService(testConfig(), repo)

		access, refresh, err := svc.RefreshToken(ctx, "old-token")
		require.NoError(t, err)
		require.NotEmpty(t, access)
		require.NotEmpty(t, refresh)
		require.NotEqual(t, "old-token", refresh)
		require.Equal(t, "old-token", repo.deletedToken)
	})
}
