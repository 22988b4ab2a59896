package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")
	t.Setenv("UARCHIVE_AUTH_JWTSECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, "data/uarchive.db", cfg.Database.Path)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.True(t, cfg.Auth.RequireVoteAuth)
	assert.Equal(t, uint32(64*1024), cfg.Auth.Argon2.MemoryKiB)
	assert.Equal(t, uint8(2), cfg.Auth.Argon2.Parallelism)
	assert.Equal(t, 15*time.Minute, cfg.AttachmentURLTTL())
	assert.Empty(t, cfg.Auth.JWTSecret)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UARCHIVE_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("UARCHIVE_AUTH_TOKENTTLMINUTES", "30")
	t.Setenv("UARCHIVE_AUTH_REQUIREVOTEAUTH", "false")
	t.Setenv("UARCHIVE_STORAGE_BUCKET", "archive")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL())
	assert.False(t, cfg.Auth.RequireVoteAuth)
	assert.Equal(t, "archive", cfg.Storage.Bucket)
}

func TestLoadJWTSecretAlias(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UARCHIVE_AUTH_JWTSECRET", "")
	t.Setenv("JWT_SECRET", "legacy-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-secret", cfg.Auth.JWTSecret)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("UARCHIVE_AUTH_TOKENTTLMINUTES", "0")

	_, err := Load()
	require.Error(t, err)
}
