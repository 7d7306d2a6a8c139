package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 24, cfg.JWTExpiry)
	require.Equal(t, 7, cfg.RefreshExpiry)
	require.Equal(t, 14, cfg.InvitationTTL)
	require.Equal(t, 587, cfg.SMTPPort)
	require.Equal(t, "http://localhost:5173", cfg.FrontendURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("INVITATION_TTL_DAYS", "30")
	t.Setenv("SMTP_USE_TLS", "true")

	cfg := Load()

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, 30, cfg.InvitationTTL)
	require.True(t, cfg.SMTPUseTLS)
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("JWT_EXPIRY", "not-a-number")

	cfg := Load()
	require.Equal(t, 24, cfg.JWTExpiry)
}
