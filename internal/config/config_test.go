package config

import (
	"testing"
	"time"

	"tutorchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("SERVER_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("NOTIFY_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "session_token", cfg.Auth.CookieName)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 8, cfg.Notify.Workers)
	assert.Equal(t, 256, cfg.Notify.QueueSize)
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestEscalationPolicy_OnlyRecordableSeverities(t *testing.T) {
	for sev, steps := range EscalationPolicy {
		assert.True(t, sev.Recordable(), "severity %s should not escalate", sev)
		assert.NotEmpty(t, steps)
		assert.Equal(t, models.ActionBan, steps[len(steps)-1], "escalation for %s must end in a ban", sev)
	}
	for action := range ActionDurations {
		assert.True(t, action.Restricts())
	}
}
