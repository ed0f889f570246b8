package mocks

import (
	"time"

	"github.com/tinyavocado/avocado-server/internal/config"
)

// CreateTestConfig returns a config with cheap Argon2 parameters and in-memory stores.
func CreateTestConfig() *config.Config {
	return &config.Config{
		Port:           "8080",
		AppEnv:         "test",
		LogLevel:       "disabled",
		JWTSecret:      "test-jwt-secret",
		DocumentStore:  "memory",
		SessionStore:   "memory",
		SecretLength:   config.MinSecretLength,
		RequestTimeout: 5 * time.Second,
		AllowOrigins:   []string{"*"},
		Argon2: config.Argon2Config{
			Time:     1,
			MemoryKB: 1024,
			Threads:  1,
			SaltLen:  16,
			KeyLen:   32,
		},
		SessionConfig: config.SessionConfig{
			CookieName: "auth",
			Duration:   24 * time.Hour,
		},
	}
}
