package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	// MinSecretLength is the shortest per-user secret the service will issue.
	MinSecretLength = 45

	defaultJWTSecret = "a_very_secret_key_change_me"
)

type SessionConfig struct {
	CookieName   string
	Duration     time.Duration
	CookieSecure bool
	CookieDomain string
}

type RedisSettings struct {
	Address    string
	Password   string
	UsersDB    int
	SecretsDB  int
	SessionsDB int
}

type SQLiteSettings struct {
	UsersDSN   string
	SecretsDSN string
}

// Argon2Config holds the Argon2id cost parameters used by the credential hasher.
type Argon2Config struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
	SaltLen  uint32
	KeyLen   uint32
}

type Config struct {
	// Server port
	Port      string
	AppEnv    string
	LogLevel  string
	JWTSecret string
	// redis | sqlite | memory
	DocumentStore string
	// redis | memory
	SessionStore   string
	SecretLength   int
	RequestTimeout time.Duration
	AllowOrigins   []string
	Argon2         Argon2Config
	SessionConfig  SessionConfig
	RedisSettings  RedisSettings
	SQLite         SQLiteSettings
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("DOCUMENT_STORE", "redis")
	viper.SetDefault("SESSION_STORE", "redis")
	viper.SetDefault("SECRET_LENGTH", MinSecretLength)
	viper.SetDefault("REQUEST_TIMEOUT", "10s")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")

	viper.SetDefault("ARGON2_TIME", 3)
	viper.SetDefault("ARGON2_MEMORY_KB", 64*1024)
	viper.SetDefault("ARGON2_THREADS", 4)

	viper.SetDefault("SESSION_COOKIE_NAME", "auth")
	viper.SetDefault("SESSION_DURATION", "24h")
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("COOKIE_DOMAIN", "")

	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("REDIS_USERS_DB", 0)
	viper.SetDefault("REDIS_SECRETS_DB", 1)
	viper.SetDefault("REDIS_SESSIONS_DB", 2)

	viper.SetDefault("SQLITE_USERS_DSN", "file:users.db?_busy_timeout=5000")
	viper.SetDefault("SQLITE_SECRETS_DSN", "file:roots.db?_busy_timeout=5000")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Info().Msg("Config file not found, using defaults and environment variables")
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if jwtSecret == defaultJWTSecret {
		log.Warn().Msg("Using default JWT secret. Set JWT_SECRET environment variable or in config file.")
	}

	secretLength := viper.GetInt("SECRET_LENGTH")
	if secretLength < MinSecretLength {
		log.Warn().Int("configured", secretLength).Int("min", MinSecretLength).Msg("SECRET_LENGTH below minimum, clamping")
		secretLength = MinSecretLength
	}

	documentStore := strings.ToLower(viper.GetString("DOCUMENT_STORE"))
	switch documentStore {
	case "redis", "sqlite", "memory":
	default:
		return nil, fmt.Errorf("unsupported DOCUMENT_STORE %q", documentStore)
	}

	// users and secrets must never share a database
	switch documentStore {
	case "redis":
		if viper.GetInt("REDIS_USERS_DB") == viper.GetInt("REDIS_SECRETS_DB") {
			return nil, fmt.Errorf("REDIS_USERS_DB and REDIS_SECRETS_DB must differ")
		}
	case "sqlite":
		if viper.GetString("SQLITE_USERS_DSN") == viper.GetString("SQLITE_SECRETS_DSN") {
			return nil, fmt.Errorf("SQLITE_USERS_DSN and SQLITE_SECRETS_DSN must differ")
		}
	}

	sessionStore := strings.ToLower(viper.GetString("SESSION_STORE"))
	switch sessionStore {
	case "redis", "memory":
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", sessionStore)
	}

	requestTimeout := viper.GetDuration("REQUEST_TIMEOUT")
	if requestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	sessionDuration := viper.GetDuration("SESSION_DURATION")
	if sessionDuration <= 0 {
		return nil, fmt.Errorf("SESSION_DURATION must be positive")
	}

	threads := viper.GetUint32("ARGON2_THREADS")
	if threads == 0 || threads > 255 {
		return nil, fmt.Errorf("ARGON2_THREADS must be between 1 and 255")
	}

	return &Config{
		Port:           viper.GetString("APP_PORT"),
		AppEnv:         viper.GetString("APP_ENV"),
		LogLevel:       viper.GetString("LOG_LEVEL"),
		JWTSecret:      jwtSecret,
		DocumentStore:  documentStore,
		SessionStore:   sessionStore,
		SecretLength:   secretLength,
		RequestTimeout: requestTimeout,
		AllowOrigins:   splitList(viper.GetString("CORS_ALLOW_ORIGINS")),
		Argon2: Argon2Config{
			Time:     viper.GetUint32("ARGON2_TIME"),
			MemoryKB: viper.GetUint32("ARGON2_MEMORY_KB"),
			Threads:  uint8(threads),
			SaltLen:  16,
			KeyLen:   32,
		},
		SessionConfig: SessionConfig{
			CookieName:   viper.GetString("SESSION_COOKIE_NAME"),
			Duration:     sessionDuration,
			CookieSecure: viper.GetBool("COOKIE_SECURE"),
			CookieDomain: viper.GetString("COOKIE_DOMAIN"),
		},
		RedisSettings: RedisSettings{
			Address:    viper.GetString("REDIS_ADDRESS"),
			Password:   viper.GetString("REDIS_PASSWORD"),
			UsersDB:    viper.GetInt("REDIS_USERS_DB"),
			SecretsDB:  viper.GetInt("REDIS_SECRETS_DB"),
			SessionsDB: viper.GetInt("REDIS_SESSIONS_DB"),
		},
		SQLite: SQLiteSettings{
			UsersDSN:   viper.GetString("SQLITE_USERS_DSN"),
			SecretsDSN: viper.GetString("SQLITE_SECRETS_DSN"),
		},
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
