package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFresh(t *testing.T) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return LoadConfig()
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadFresh(t)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "redis", cfg.DocumentStore)
	assert.Equal(t, "redis", cfg.SessionStore)
	assert.Equal(t, MinSecretLength, cfg.SecretLength)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowOrigins)

	assert.Equal(t, uint32(3), cfg.Argon2.Time)
	assert.Equal(t, uint32(64*1024), cfg.Argon2.MemoryKB)
	assert.Equal(t, uint8(4), cfg.Argon2.Threads)

	assert.Equal(t, "auth", cfg.SessionConfig.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.SessionConfig.Duration)
	assert.False(t, cfg.SessionConfig.CookieSecure)

	assert.Equal(t, 0, cfg.RedisSettings.UsersDB)
	assert.Equal(t, 1, cfg.RedisSettings.SecretsDB)
	assert.Equal(t, 2, cfg.RedisSettings.SessionsDB)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DOCUMENT_STORE", "SQLite")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_SECRETS_DB", "5")

	cfg, err := loadFresh(t)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DocumentStore)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, 2*time.Hour, cfg.SessionConfig.Duration)
	assert.True(t, cfg.SessionConfig.CookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
	assert.Equal(t, 5, cfg.RedisSettings.SecretsDB)
}

func TestLoadConfig_SecretLengthClamped(t *testing.T) {
	t.Setenv("SECRET_LENGTH", "12")

	cfg, err := loadFresh(t)
	require.NoError(t, err)
	assert.Equal(t, MinSecretLength, cfg.SecretLength)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, errContains string
	}{
		{"UnknownDocumentStore", "DOCUMENT_STORE", "mongo", "unsupported DOCUMENT_STORE"},
		{"UnknownSessionStore", "SESSION_STORE", "sqlite", "unsupported SESSION_STORE"},
		{"ZeroTimeout", "REQUEST_TIMEOUT", "0s", "REQUEST_TIMEOUT"},
		{"ZeroThreads", "ARGON2_THREADS", "0", "ARGON2_THREADS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := loadFresh(t)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadConfig_UsersAndSecretsShareDatabase(t *testing.T) {
	t.Run("Redis", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE", "redis")
		t.Setenv("REDIS_SECRETS_DB", "0")
		_, err := loadFresh(t)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_USERS_DB and REDIS_SECRETS_DB must differ")
	})

	t.Run("SQLite", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE", "sqlite")
		t.Setenv("SQLITE_SECRETS_DSN", "file:users.db?_busy_timeout=5000")
		_, err := loadFresh(t)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SQLITE_USERS_DSN and SQLITE_SECRETS_DSN must differ")
	})

	t.Run("MemoryIgnoresSettings", func(t *testing.T) {
		t.Setenv("DOCUMENT_STORE", "memory")
		t.Setenv("REDIS_SECRETS_DB", "0")
		_, err := loadFresh(t)
		assert.NoError(t, err)
	})
}
